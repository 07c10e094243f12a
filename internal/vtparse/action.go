// Package vtparse implements the xterm/VT500-style control-sequence parser:
// a deterministic byte-stream state machine that classifies bytes into
// printable text, C0/C1 controls, and CSI/OSC/DCS sequences, emitting a
// sequence of Actions consumed by a Dispatcher.
package vtparse

// ActionKind tags the variant of an Action.
type ActionKind uint8

const (
	ActionPrint ActionKind = iota
	ActionExecute
	ActionCsi
	ActionOsc
	ActionDcs
	ActionEscDispatch
)

// OscTerminator records which byte sequence ended an OSC string.
type OscTerminator uint8

const (
	OscBel OscTerminator = iota
	OscSt
)

// Action is one classified unit of the byte stream, per spec.md §4.2.
type Action struct {
	Kind ActionKind

	// ActionPrint
	Rune rune

	// ActionExecute
	C0 byte

	// ActionCsi
	Private       byte // '?' or 0
	Params        [][]uint16
	Intermediates []byte
	Final         byte

	// ActionOsc
	OscParams []([]byte)
	OscEnd    OscTerminator

	// ActionDcs
	DcsData []byte

	// ActionEscDispatch reuses Intermediates and Final.
}
