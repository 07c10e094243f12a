package session

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"bite/internal/interaction"
	"bite/internal/system"
)

const readChunkSize = 4096

// Job is the runtime counterpart of an Interaction during execution: the
// child process, its PTY master (or pipes), per-stream reader goroutines,
// and a back-reference to the Interaction ID, per spec.md §3.
type Job struct {
	InteractionID int64

	cmds []*exec.Cmd

	ptyMaster *os.File // non-nil when the pipeline is a single PTY-backed foreground command

	stdinW io.WriteCloser

	background bool

	readersWG sync.WaitGroup
	done      chan struct{}
}

// wantsPTY decides PTY-vs-pipes allocation per spec.md §4.4 step 1: a
// single foreground command gets a PTY; multi-stage pipelines and
// background jobs use ordinary pipes.
func wantsPTY(pl Pipeline, background bool) bool {
	return !background && len(pl.Stages) == 1
}

// startJob allocates OS resources and starts the reader/waiter goroutines
// for one Pipeline, per spec.md §4.4's Job lifecycle.
func startJob(sess *Session, ia *interaction.Interaction, pl Pipeline, background bool, env []string) *Job {
	job := &Job{InteractionID: ia.ID, background: background, done: make(chan struct{})}

	if wantsPTY(pl, background) {
		if err := job.startPTY(sess, ia, pl.Stages[0], env); err != nil {
			sess.reportSpawnFailure(ia, err)
			return nil
		}
	} else {
		if err := job.startPiped(sess, ia, pl, env); err != nil {
			sess.reportSpawnFailure(ia, err)
			return nil
		}
	}

	if job.stdinW != nil {
		ia.SetReplyWriter(func(b []byte) {
			if _, err := job.stdinW.Write(b); err != nil {
				system.Logger.Debug("status report reply write failed", "interaction", ia.ID, "err", err)
			}
		})
	}

	sess.store.SetRunning(ia.ID, interaction.Running, 0)
	go job.wait(sess, ia)
	return job
}

func (j *Job) startPTY(sess *Session, ia *interaction.Interaction, sc SimpleCommand, env []string) error {
	if len(sc.Argv) == 0 {
		return errEmptyCommand
	}
	cmd := exec.Command(sc.Argv[0], sc.Argv[1:]...)
	cmd.Env = append(append([]string{}, env...), assignmentsToEnv(sc.Assignments)...)
	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	j.ptyMaster = f
	j.cmds = []*exec.Cmd{cmd}
	j.stdinW = f

	j.readersWG.Add(1)
	go j.readLoop(sess, ia.ID, interaction.StreamOutput, f)
	return nil
}

// startPiped connects multiple stages with ordinary os.Pipe()s, per
// spec.md §4.4 step 2, with one stderr reader per stage and one stdout
// reader for the last stage.
func (j *Job) startPiped(sess *Session, ia *interaction.Interaction, pl Pipeline, env []string) error {
	n := len(pl.Stages)
	cmds := make([]*exec.Cmd, n)
	for i, sc := range pl.Stages {
		if len(sc.Argv) == 0 {
			return errEmptyCommand
		}
		cmd := exec.Command(sc.Argv[0], sc.Argv[1:]...)
		cmd.Env = append(append([]string{}, env...), assignmentsToEnv(sc.Assignments)...)
		cmds[i] = cmd
	}
	var parentEnds []*os.File
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return err
		}
		cmds[i].Stdout = w
		cmds[i+1].Stdin = r
		parentEnds = append(parentEnds, r, w)
	}

	stdinPipe, err := cmds[0].StdinPipe()
	if err != nil && cmds[0].Stdin == nil {
		return err
	}
	if cmds[0].Stdin == nil {
		j.stdinW = stdinPipe
	}

	stdoutPipe, err := cmds[n-1].StdoutPipe()
	if err != nil {
		return err
	}
	stderrs := make([]io.ReadCloser, n)
	for i, cmd := range cmds {
		ep, err := cmd.StderrPipe()
		if err != nil {
			return err
		}
		stderrs[i] = ep
	}

	var pgid int
	for i, cmd := range cmds {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
		if err := cmd.Start(); err != nil {
			return err
		}
		if i == 0 {
			pgid = cmd.Process.Pid
		}
		if i > 0 {
			j.readersWG.Add(1)
			go j.readLoop(sess, ia.ID, interaction.StreamError, stderrs[i])
		}
	}
	// The children hold their own copies of the inter-stage pipe ends; the
	// parent's copies must go so each reading stage sees EOF.
	for _, f := range parentEnds {
		_ = f.Close()
	}
	j.readersWG.Add(1)
	go j.readLoop(sess, ia.ID, interaction.StreamError, stderrs[0])
	j.readersWG.Add(1)
	go j.readLoop(sess, ia.ID, interaction.StreamOutput, stdoutPipe)

	j.cmds = cmds
	return nil
}

func assignmentsToEnv(as []Assignment) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name + "=" + a.Value
	}
	return out
}

// readLoop is the per-stream reader goroutine of spec.md §4.4 step 3: read
// a chunk, append it to the Session, repeat until EOF.
func (j *Job) readLoop(sess *Session, id int64, stream interaction.Stream, r io.Reader) {
	defer j.readersWG.Done()
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			sess.appendBytes(id, stream, buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// wait is the waiter goroutine of spec.md §4.4 step 4: wait for every
// stage, then mark the Interaction Exited only once all readers have
// drained, matching the ordering guarantee in spec.md §5. With pipefail
// set, the reported code is the first non-zero stage's rather than the
// last stage's, per spec.md §4.4.
func (j *Job) wait(sess *Session, ia *interaction.Interaction) {
	pipefail := sess.Pipefail()
	code := 0
	firstFailure := 0
	sawFailure := false
	for _, cmd := range j.cmds {
		err := cmd.Wait()
		code = exitCodeFromError(cmd, err)
		if !sawFailure && code != 0 {
			firstFailure = code
			sawFailure = true
		}
	}
	if pipefail && sawFailure {
		code = firstFailure
	}
	j.readersWG.Wait()
	sess.setExited(ia.ID, code)
	sess.jobExited(j)
	close(j.done)
}

func exitCodeFromError(cmd *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return 128 + int(ws.Signal())
			}
			return ws.ExitStatus()
		}
	}
	system.Logger.Warn("job wait failed", "cmd", cmd.Path, "err", err)
	return 1
}

// WriteStdin routes bytes to the job's input, per spec.md §4.4 send_stdin.
func (j *Job) WriteStdin(data []byte) error {
	if j.stdinW == nil {
		return errNotRunning
	}
	_, err := j.stdinW.Write(data)
	return err
}

// Resize propagates a window size change to the job's PTY, if it has one.
func (j *Job) Resize(rows, cols int) {
	if j.ptyMaster == nil {
		return
	}
	_ = pty.Setsize(j.ptyMaster, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// SendSignal delivers a signal to the job's process group, per spec.md
// §4.4 send_signal.
func (j *Job) SendSignal(sig syscall.Signal) error {
	for _, cmd := range j.cmds {
		if cmd.Process == nil {
			continue
		}
		pgid, err := syscall.Getpgid(cmd.Process.Pid)
		if err != nil {
			pgid = cmd.Process.Pid
		}
		if err := syscall.Kill(-pgid, sig); err != nil {
			return err
		}
	}
	return nil
}
