package session

import (
	"errors"
	"os"
	"strings"
	"sync"
	"syscall"

	"bite/internal/interaction"
	"bite/internal/system"
)

var (
	errEmptyCommand = errors.New("session: empty command")
	errNotRunning   = errors.New("session: interaction is not running")
	errUnknownID    = errors.New("session: unknown interaction id")
)

// HistorySink receives a command's text on submission, the collaborator
// hook spec.md §3 names ("a history store, out of core scope").
type HistorySink interface {
	AddEntry(text string)
}

// Session owns the Interaction store and the Jobs collection, and is the
// single mutex root spec.md §5 requires: reader goroutines and the waiter
// goroutine acquire it only for the duration of one append/transition.
type Session struct {
	mu    sync.Mutex
	store *interaction.Store
	jobs  map[int64]*Job

	env      map[string]string
	cwd      string
	pipefail bool

	history HistorySink

	rows, cols int

	subscribers map[int64][]chan []byte
}

// New builds a Session sized rows x cols, seeding its environment from the
// process environment.
func New(rows, cols int, history HistorySink) *Session {
	sess := &Session{
		store: interaction.NewStore(rows, cols),
		jobs:  make(map[int64]*Job),
		env:   make(map[string]string),
		history: history,
		rows: rows, cols: cols,
	}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			sess.env[kv[:i]] = kv[i+1:]
		}
	}
	sess.env["TERM"] = "xterm-256color"
	if wd, err := os.Getwd(); err == nil {
		sess.cwd = wd
	}
	return sess
}

// SetPipefail toggles the pipefail flag used by pipeline exit-code
// computation (spec.md §4.4, §9 Open Question #1).
func (s *Session) SetPipefail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipefail = v
}

// Pipefail reports whether a pipeline's exit code is that of its first
// failing stage rather than only the last stage's code.
func (s *Session) Pipefail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipefail
}

func (s *Session) environSlice() []string {
	out := make([]string, 0, len(s.env))
	for k, v := range s.env {
		out = append(out, k+"="+v)
	}
	return out
}

// Submit parses command_text into a pipeline list, advances the current
// Interaction, and runs the pipelines on a goroutine, one Job per
// pipeline, per spec.md §4.4.
func (s *Session) Submit(commandText string) (int64, error) {
	cl, err := ParseCommandList(commandText)
	if err != nil {
		return 0, s.reportParseError(commandText, err)
	}

	s.mu.Lock()
	ia := s.store.Submit(commandText)
	env := s.environSlice()
	s.mu.Unlock()

	if s.history != nil && strings.TrimSpace(commandText) != "" {
		s.history.AddEntry(commandText)
	}

	if len(cl.Pipelines) == 0 {
		s.mu.Lock()
		s.store.SetRunning(ia.ID, interaction.Exited, 0)
		s.mu.Unlock()
		return ia.ID, nil
	}

	go s.run(ia.ID, cl, env)
	return ia.ID, nil
}

// run executes a CommandList's pipelines honoring `;`, `&&`, `||`, and `&`
// per spec.md §4.4's short-circuit rule: evaluation stops as soon as the
// boolean value is determined and later commands never spawn.
func (s *Session) run(id int64, cl *CommandList, env []string) {
	lastCode := 0
	skipRemaining := false
	for i, pl := range cl.Pipelines {
		reaction := cl.Reactions[i]
		if skipRemaining {
			// This pipeline is skipped because an earlier &&/|| in the same
			// and-or list already determined the outcome. The skip only
			// ends at a `;` or `&` boundary, which starts a fresh list.
			if reaction != ReactionAnd && reaction != ReactionOr {
				skipRemaining = false
			}
			continue
		}
		if len(pl.Stages) == 1 && isBuiltin(pl.Stages[0]) {
			lastCode = s.runBuiltin(id, pl.Stages[0])
		} else {
			lastCode = s.runPipeline(id, pl, reaction == ReactionBackground, env)
		}

		switch reaction {
		case ReactionAnd:
			if lastCode != 0 {
				skipRemaining = true
			}
		case ReactionOr:
			if lastCode == 0 {
				skipRemaining = true
			}
		}
	}

	s.mu.Lock()
	ia := s.store.Get(id)
	alreadyDone := ia == nil || ia.Running.Phase == interaction.Exited
	s.mu.Unlock()
	if !alreadyDone {
		s.mu.Lock()
		s.store.SetRunning(id, interaction.Exited, lastCode)
		s.mu.Unlock()
	}
}

// runPipeline spawns one Pipeline's Job and blocks until it exits (unless
// background), returning its exit code per the pipeline-exit-code rule of
// spec.md §4.4.
func (s *Session) runPipeline(id int64, pl Pipeline, background bool, env []string) int {
	s.mu.Lock()
	ia := s.store.Get(id)
	if ia == nil {
		s.mu.Unlock()
		return 1
	}
	job := startJob(s, ia, pl, background, env)
	if job != nil {
		s.jobs[id] = job
	}
	s.mu.Unlock()

	if job == nil {
		return 127
	}
	if background {
		return 0
	}
	<-job.done
	s.mu.Lock()
	defer s.mu.Unlock()
	ia2 := s.store.Get(id)
	if ia2 == nil {
		return 1
	}
	return ia2.Running.Code
}

// reportSpawnFailure assumes the caller already holds s.mu (it is only
// called from startJob, itself only called while runPipeline holds the
// lock across the whole allocate-and-register step).
func (s *Session) reportSpawnFailure(ia *interaction.Interaction, err error) {
	s.store.Append(ia.ID, interaction.StreamError, []byte("bite: failed to launch job: "+err.Error()+"\n"))
	s.store.SetRunning(ia.ID, interaction.Exited, 127)
	system.Logger.Error("spawn failed", "interaction", ia.ID, "err", err)
}

func (s *Session) reportParseError(commandText string, err error) error {
	s.mu.Lock()
	ia := s.store.Current()
	s.store.Append(ia.ID, interaction.StreamError, []byte("bite: parse error: "+err.Error()+"\n"))
	s.mu.Unlock()
	system.Logger.Warn("parse error", "command", commandText, "err", err)
	return err
}

// appendBytes is the reader-goroutine entry point: brief lock, append,
// release, per spec.md §5's shared-state discipline.
func (s *Session) appendBytes(id int64, stream interaction.Stream, data []byte) {
	s.mu.Lock()
	s.store.Append(id, stream, data)
	subs := append([]chan []byte{}, s.subscribers[id]...)
	s.mu.Unlock()
	for _, ch := range subs {
		cp := append([]byte(nil), data...)
		select {
		case ch <- cp:
		default:
		}
	}
}

// SubscribeRaw registers a channel that receives a copy of each raw byte
// chunk appended to Interaction id's streams, for a collaborator (the web
// attach point) that needs the unparsed wire bytes rather than materialized
// Lines. The channel buffers 64 chunks; a chunk that arrives while the
// buffer is full is dropped for that subscriber. The returned func
// unregisters the subscription.
func (s *Session) SubscribeRaw(id int64) (<-chan []byte, func()) {
	ch := make(chan []byte, 64)
	s.mu.Lock()
	if s.subscribers == nil {
		s.subscribers = make(map[int64][]chan []byte)
	}
	s.subscribers[id] = append(s.subscribers[id], ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.subscribers[id]
		for i, c := range list {
			if c == ch {
				s.subscribers[id] = append(list[:i], list[i+1:]...)
				break
			}
		}
		close(ch)
	}
	return ch, cancel
}

func (s *Session) jobExited(j *Job) {
	s.mu.Lock()
	delete(s.jobs, j.InteractionID)
	s.mu.Unlock()
}

// setExited transitions Interaction id to Exited under the Session lock,
// per spec.md §5's rule that the waiter thread, like every other reader,
// only ever touches the store while holding s.mu.
func (s *Session) setExited(id int64, code int) {
	s.mu.Lock()
	s.store.SetRunning(id, interaction.Exited, code)
	s.mu.Unlock()
}

// SendStdin routes bytes to the writer end of Job id. Fails if not Running,
// per spec.md §4.4.
func (s *Session) SendStdin(id int64, data []byte) error {
	s.mu.Lock()
	ia := s.store.Get(id)
	if ia == nil {
		s.mu.Unlock()
		return errUnknownID
	}
	job := s.jobs[id]
	notRunning := ia.Running.Phase != interaction.Running || job == nil
	s.mu.Unlock()
	if notRunning {
		return errNotRunning
	}
	return job.WriteStdin(data)
}

// SendSignal delivers a signal to the process group of Job id.
func (s *Session) SendSignal(id int64, sig syscall.Signal) error {
	s.mu.Lock()
	job := s.jobs[id]
	s.mu.Unlock()
	if job == nil {
		return errUnknownID
	}
	return job.SendSignal(sig)
}

// ExitCode returns None (ok=false) while Running, else Some(code).
func (s *Session) ExitCode(id int64) (code int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ia := s.store.Get(id)
	if ia == nil || ia.Running.Phase != interaction.Exited {
		return 0, false
	}
	return ia.Running.Code, true
}

// IterVisible returns the current visible line snapshot, per spec.md
// §4.3/§4.4's iter_lines/iter_visible contract, holding the Session lock
// for the duration of materialization.
func (s *Session) IterVisible(from, to int64) []interaction.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.IterLines(interaction.LineRange{FromID: from, ToID: to})
}

// Resize applies a new size to all screens and propagates SIGWINCH/
// TIOCSWINSZ to Jobs with a PTY, per spec.md §4.4.
func (s *Session) Resize(rows, cols int) {
	s.mu.Lock()
	s.rows, s.cols = rows, cols
	s.store.Resize(rows, cols)
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()
	for _, j := range jobs {
		j.Resize(rows, cols)
	}
}

// Interactions returns a snapshot of all interactions in submission order.
func (s *Session) Interactions() []*interaction.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*interaction.Interaction{}, s.store.All()...)
}

// CurrentID returns the ID of the Interaction currently composing text.
func (s *Session) CurrentID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Current().ID
}
