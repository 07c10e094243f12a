// Package presenter hosts a Session inside a Bubble Tea program: it drives
// drawing from the Session's lazy line iteration, forwards keystrokes, and
// switches into full-pane rendering when an Interaction is promoted to TUI
// mode. This is spec.md §9's "Compose / History / Complete / Execute / TUI"
// tagged-union presenter, modelled here as an explicit Mode with its own
// transition rules rather than deep inheritance.
package presenter

// Mode is the presenter's current tagged state.
type Mode uint8

const (
	// ModeCompose: the user is typing a new command into the compose line.
	ModeCompose Mode = iota
	// ModeHistory: the user is scrolling through past interactions/history.
	ModeHistory
	// ModeComplete: entered by Tab. No completion candidates are computed
	// or shown; the next editing key returns to ModeCompose.
	ModeComplete
	// ModeExecute: a command was just submitted. Keystrokes still edit the
	// compose line and Enter submits a further command; keys reach the Job
	// only in ModeTUI.
	ModeExecute
	// ModeTUI: the current Interaction owns the whole frame; keystrokes are
	// forwarded transparently to its Job.
	ModeTUI
)

func (m Mode) String() string {
	switch m {
	case ModeCompose:
		return "compose"
	case ModeHistory:
		return "history"
	case ModeComplete:
		return "complete"
	case ModeExecute:
		return "execute"
	case ModeTUI:
		return "tui"
	default:
		return "unknown"
	}
}
