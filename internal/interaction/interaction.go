// Package interaction implements the interaction store described in
// spec.md §4.3: a collection of interactions, each pairing a command with
// three logical screens (prompt, output, error) and a running-state record.
package interaction

import (
	"time"

	"bite/internal/term"
	"bite/internal/vtparse"
)

// Stream identifies which of an Interaction's output screens a byte range
// belongs to.
type Stream uint8

const (
	StreamPrompt Stream = iota
	StreamOutput
	StreamError
)

// RunningState is Unstarted -> Running -> Exited(code), monotone.
type RunningState struct {
	Phase Phase
	Code  int
}

type Phase uint8

const (
	Unstarted Phase = iota
	Running
	Exited
)

// Visibility is the per-stream display policy.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
)

const defaultScrollback = 10000

// Interaction pairs a command with three Screens and a running-state
// record, per spec.md §3/§4.3.
type Interaction struct {
	ID        int64
	Command   string
	Created   time.Time
	Running   RunningState
	Prompt    *term.Screen
	Output    *term.Screen
	Error     *term.Screen
	outputVis Visibility
	errorVis  Visibility

	outputParser *vtparse.Parser
	errorParser  *vtparse.Parser
	outputDisp   *vtparse.Dispatcher
	errorDisp    *vtparse.Dispatcher

	tuiMode bool
}

func newScreen(rows, cols int) *term.Screen {
	return term.NewScreen(rows, cols, defaultScrollback)
}

func newInteraction(id int64, command string, rows, cols int) *Interaction {
	out := newScreen(rows, cols)
	errS := newScreen(rows, cols)
	ia := &Interaction{
		ID: id, Command: command, Created: time.Now(),
		Prompt: newScreen(1, cols), Output: out, Error: errS,
		outputParser: vtparse.NewParser(), errorParser: vtparse.NewParser(),
	}
	ia.outputDisp = vtparse.NewDispatcher(out)
	ia.errorDisp = vtparse.NewDispatcher(errS)
	return ia
}

// SetReplyWriter wires w as the destination for status-report replies (DSR,
// CPR) produced while dispatching this Interaction's output stream. w
// should route back to the Job's stdin; nil disables replies.
func (ia *Interaction) SetReplyWriter(w func([]byte)) {
	ia.outputDisp.Reply = w
}

// TUIMode reports whether this Interaction has been promoted to TUI mode
// (DECSET 1049 observed on its output stream), per spec.md §4.4.
func (ia *Interaction) TUIMode() bool { return ia.tuiMode }

// Visibility returns the display policy for a stream.
func (ia *Interaction) Visibility(s Stream) Visibility {
	switch s {
	case StreamError:
		return ia.errorVis
	default:
		return ia.outputVis
	}
}

// screenFor resolves which Screen+Parser+Dispatcher a stream feeds.
func (ia *Interaction) screenFor(s Stream) (*vtparse.Parser, *vtparse.Dispatcher) {
	switch s {
	case StreamError:
		return ia.errorParser, ia.errorDisp
	default:
		return ia.outputParser, ia.outputDisp
	}
}

// append feeds bytes into the parser attached to stream's screen. No-op for
// empty input, per spec.md §4.3.
func (ia *Interaction) append(s Stream, data []byte) {
	if len(data) == 0 {
		return
	}
	parser, disp := ia.screenFor(s)
	for _, a := range parser.Feed(data) {
		disp.Dispatch(a)
	}
	if !ia.tuiMode && disp.Screen.AltActive() {
		ia.tuiMode = true
	}
}
