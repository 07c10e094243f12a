package vtparse

import (
	"fmt"

	"bite/internal/term"
)

// C0 execute bytes named in spec.md §6.
const (
	c0Bel = 0x07
	c0Bs  = 0x08
	c0Ht  = 0x09
	c0Lf  = 0x0a
	c0Vt  = 0x0b
	c0Ff  = 0x0c
	c0Cr  = 0x0d
	c0So  = 0x0e
	c0Si  = 0x0f
)

// BellFunc is invoked for BEL (0x07); the presenter wires this to an
// audible/visual bell. Nil is a valid no-op.
type BellFunc func()

// Dispatcher maps parsed Actions onto Screen mutations, implementing the
// minimum control-sequence compatibility table of spec.md §6.
type Dispatcher struct {
	Screen *term.Screen
	Bell   BellFunc

	// OnOsc, if set, receives the semicolon-split payload of every OSC
	// sequence (title, palette, clipboard, ...). The Screen has no notion
	// of window title or clipboard, so those effects are surfaced here for
	// a collaborator (the presenter) to apply.
	OnOsc func(params [][]byte)

	// Reply, if set, receives bytes written back to the stream's source
	// (the Job's stdin) in answer to a status request such as DSR. Nil is
	// a valid no-op: the report is simply dropped.
	Reply func([]byte)
}

// NewDispatcher builds a Dispatcher targeting the given Screen.
func NewDispatcher(s *term.Screen) *Dispatcher {
	return &Dispatcher{Screen: s}
}

// Dispatch applies one Action to the target Screen.
func (d *Dispatcher) Dispatch(a Action) {
	switch a.Kind {
	case ActionPrint:
		d.Screen.PlaceChar(a.Rune)
	case ActionExecute:
		d.execute(a.C0)
	case ActionCsi:
		d.csi(a)
	case ActionEscDispatch:
		d.escDispatch(a)
	case ActionOsc:
		d.osc(a)
	case ActionDcs:
		// DCS payloads (DECUDK, Sixel, terminfo queries, ...) beyond the
		// documented minimum in spec.md §6 are intentionally consumed
		// silently, per spec.md §4.2 rule 2.
	}
}

func (d *Dispatcher) execute(b byte) {
	switch b {
	case c0Bel:
		if d.Bell != nil {
			d.Bell()
		}
	case c0Bs:
		d.Screen.MoveRelative(0, -1)
	case c0Ht:
		d.Screen.CursorForwardTab(1)
	case c0Lf, c0Vt, c0Ff:
		d.Screen.LineFeed()
	case c0Cr:
		d.Screen.CarriageReturn()
	case c0So, c0Si:
		// G0/G1 charset shifting is out of scope beyond default ASCII.
	}
}

func param(params [][]uint16, i int, def uint16) uint16 {
	if i >= len(params) || len(params[i]) == 0 {
		return def
	}
	return params[i][0]
}

func paramOrOne(params [][]uint16, i int) int {
	v := param(params, i, 0)
	if v == 0 {
		return 1
	}
	return int(v)
}

func (d *Dispatcher) csi(a Action) {
	if a.Private == '?' {
		d.csiPrivate(a)
		return
	}
	n := paramOrOne(a.Params, 0)
	if len(a.Intermediates) == 1 && a.Intermediates[0] == ' ' {
		// Space-intermediate final bytes are a disjoint set from the bare
		// finals below (SL/SR share '@'/'A' with ICH/CUU only by final
		// byte, not by sequence).
		switch a.Final {
		case '@':
			d.Screen.ScrollLeft(n)
		case 'A':
			d.Screen.ScrollRight(n)
		}
		return
	}
	switch a.Final {
	case 'A':
		d.Screen.MoveRelative(-n, 0)
	case 'B':
		d.Screen.MoveRelative(n, 0)
	case 'C':
		d.Screen.MoveRelative(0, n)
	case 'D':
		d.Screen.MoveRelative(0, -n)
	case 'E':
		d.Screen.MoveRelative(n, 0)
		d.Screen.CarriageReturn()
	case 'F':
		d.Screen.MoveRelative(-n, 0)
		d.Screen.CarriageReturn()
	case 'G':
		d.Screen.MoveCursor(d.Screen.Cursor().Row, n-1)
	case 'H', 'f':
		row := paramOrOne(a.Params, 0) - 1
		col := paramOrOne(a.Params, 1) - 1
		d.Screen.MoveCursor(row, col)
	case 'I':
		d.Screen.CursorForwardTab(n)
	case 'J':
		d.Screen.EraseDisplay(eraseRegionFromParam(param(a.Params, 0, 0)))
	case 'K':
		d.Screen.Erase(eraseRegionFromParam(param(a.Params, 0, 0)))
	case 'L':
		d.Screen.InsertLines(n)
	case 'M':
		d.Screen.DeleteLines(n)
	case 'P':
		d.Screen.DeleteChars(n)
	case '@':
		d.Screen.InsertChars(n)
	case 'S':
		d.Screen.ScrollUp(n)
	case 'T':
		d.Screen.ScrollDown(n)
	case 'X':
		d.Screen.EraseChars(n)
	case 'd':
		d.Screen.MoveCursor(n-1, d.Screen.Cursor().Col)
	case 'g':
		d.tbc(param(a.Params, 0, 0))
	case 'h':
		d.sm(a.Params, true)
	case 'l':
		d.sm(a.Params, false)
	case 'm':
		d.sgr(a.Params)
	case 'n':
		d.dsr(int(param(a.Params, 0, 0)))
	case 'r':
		top := paramOrOne(a.Params, 0) - 1
		bottom := int(param(a.Params, 1, uint16(d.Screen.Rows())))
		if bottom == 0 {
			bottom = d.Screen.Rows()
		}
		d.Screen.SetScrollRegion(top, bottom-1)
	case 's':
		d.Screen.SaveCursor()
	case 'u':
		d.Screen.RestoreCursor()
	}
}

// dsr answers a Device Status Report request (CSI n). Ps=5 asks for the
// terminal's general status; Ps=6 asks for the cursor position (CPR). Both
// answers go out via Reply, which the Job wires to its own stdin.
func (d *Dispatcher) dsr(ps int) {
	if d.Reply == nil {
		return
	}
	switch ps {
	case 5:
		d.Reply([]byte("\x1b[0n"))
	case 6:
		cur := d.Screen.Cursor()
		d.Reply([]byte(fmt.Sprintf("\x1b[%d;%dR", cur.Row+1, cur.Col+1)))
	}
}

func eraseRegionFromParam(p uint16) term.EraseRegion {
	switch p {
	case 1:
		return term.EraseToStart
	case 2:
		return term.EraseAll
	case 3:
		return term.EraseSaved
	default:
		return term.EraseToEnd
	}
}

func (d *Dispatcher) tbc(p uint16) {
	col := d.Screen.Cursor().Col
	if p == 3 {
		d.Screen.ClearAllTabStops()
	} else {
		d.Screen.ClearTabStop(col)
	}
}

// sm implements SM/RM (CSI h/l) for the ANSI mode subset spec.md §6 names.
func (d *Dispatcher) sm(params [][]uint16, set bool) {
	for _, p := range params {
		if len(p) == 0 {
			continue
		}
		switch p[0] {
		case 4:
			d.Screen.SetInsertMode(set)
		}
	}
}

// csiPrivate implements CSI ? … h/l, the DEC private modes of spec.md §6.
func (d *Dispatcher) csiPrivate(a Action) {
	set := a.Final == 'h'
	if a.Final != 'h' && a.Final != 'l' {
		return
	}
	for _, p := range a.Params {
		if len(p) == 0 {
			continue
		}
		switch p[0] {
		case 1:
			d.Screen.SetAppCursorKeys(set)
		case 3:
			// 132-column mode: presenter-level concern, screen size does
			// not self-resize from a mode toggle in this implementation.
		case 5:
			d.Screen.SetReverseVideo(set)
		case 6:
			d.Screen.SetOriginMode(set)
		case 7:
			d.Screen.SetWrapMode(set)
		case 12:
			// cursor blink: cosmetic, no Screen state needed beyond mode bit
		case 25:
			d.Screen.SetCursorVisible(set)
		case 1000:
			d.setMouseMode(set, term.MouseNormal)
		case 1002:
			d.setMouseMode(set, term.MouseButtonEvent)
		case 1003:
			d.setMouseMode(set, term.MouseAnyEvent)
		case 1006:
			d.Screen.SetMouseSGR(set)
		case 1049:
			if set {
				d.Screen.SaveCursor()
				d.Screen.SwitchBuffer(true)
			} else {
				d.Screen.SwitchBuffer(false)
				d.Screen.RestoreCursor()
			}
		case 2004:
			d.Screen.SetBracketedPaste(set)
		}
	}
}

func (d *Dispatcher) setMouseMode(set bool, m term.MouseMode) {
	if set {
		d.Screen.SetMouseMode(m)
	} else if d.Screen.MouseMode() == m {
		d.Screen.SetMouseMode(term.MouseOff)
	}
}

// sgr implements Select Graphic Rendition, the parameter set of spec.md §6.
func (d *Dispatcher) sgr(params [][]uint16) {
	if len(params) == 0 {
		d.Screen.ResetAttr()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		code := uint16(0)
		if len(p) > 0 {
			code = p[0]
		}
		switch {
		case code == 0:
			d.Screen.ResetAttr()
		case code == 1:
			d.Screen.SetAttr(term.AttrBold)
		case code == 2:
			d.Screen.SetAttr(term.AttrFaint)
		case code == 3:
			d.Screen.SetAttr(term.AttrItalic)
		case code == 4:
			d.Screen.SetAttr(term.AttrUnderline)
		case code == 5:
			d.Screen.SetAttr(term.AttrBlink)
		case code == 7:
			d.Screen.SetAttr(term.AttrInverse)
		case code == 8:
			d.Screen.SetAttr(term.AttrHidden)
		case code == 9:
			d.Screen.SetAttr(term.AttrStrikeout)
		case code == 21:
			d.Screen.ClearAttr(term.AttrBold)
		case code == 22:
			d.Screen.ClearAttr(term.AttrBold | term.AttrFaint)
		case code == 23:
			d.Screen.ClearAttr(term.AttrItalic)
		case code == 24:
			d.Screen.ClearAttr(term.AttrUnderline)
		case code == 25:
			d.Screen.ClearAttr(term.AttrBlink)
		case code == 27:
			d.Screen.ClearAttr(term.AttrInverse)
		case code == 28:
			d.Screen.ClearAttr(term.AttrHidden)
		case code == 29:
			d.Screen.ClearAttr(term.AttrStrikeout)
		case code >= 30 && code <= 37:
			d.Screen.SetFg(term.Palette16(uint8(code - 30)))
		case code == 38:
			consumed := d.extendedColor(params, i, true)
			i += consumed
		case code == 39:
			d.Screen.SetFg(term.DefaultColor)
		case code >= 40 && code <= 47:
			d.Screen.SetBg(term.Palette16(uint8(code - 40)))
		case code == 48:
			consumed := d.extendedColor(params, i, false)
			i += consumed
		case code == 49:
			d.Screen.SetBg(term.DefaultColor)
		case code >= 90 && code <= 97:
			d.Screen.SetFg(term.Palette16(uint8(code - 90 + 8)))
		case code >= 100 && code <= 107:
			d.Screen.SetBg(term.Palette16(uint8(code - 100 + 8)))
		}
	}
}

// extendedColor handles both colon-subparameter form (38:2:r:g:b, 38:5:idx,
// preserved as sub-lists on a single param) and semicolon-separated legacy
// form (38;2;r;g;b spread across consecutive top-level params). It returns
// how many extra top-level params it consumed in the legacy form.
func (d *Dispatcher) extendedColor(params [][]uint16, i int, fg bool) int {
	p := params[i]
	set := func(c term.Color) {
		if fg {
			d.Screen.SetFg(c)
		} else {
			d.Screen.SetBg(c)
		}
	}
	if len(p) >= 2 {
		switch p[1] {
		case 5:
			if len(p) >= 3 {
				set(term.Palette256(uint8(p[2])))
			}
			return 0
		case 2:
			if len(p) >= 5 {
				set(term.RGB(uint8(p[2]), uint8(p[3]), uint8(p[4])))
			}
			return 0
		}
		return 0
	}
	// legacy semicolon form: mode is the next top-level param
	if i+1 >= len(params) {
		return 0
	}
	mode := param(params, i+1, 0)
	switch mode {
	case 5:
		if i+2 < len(params) {
			set(term.Palette256(uint8(param(params, i+2, 0))))
			return 2
		}
		return 1
	case 2:
		if i+4 < len(params) {
			r := uint8(param(params, i+2, 0))
			g := uint8(param(params, i+3, 0))
			b := uint8(param(params, i+4, 0))
			set(term.RGB(r, g, b))
			return 4
		}
		return 1
	}
	return 0
}

// escDispatch implements the ESC-final dispatches of spec.md §6.
func (d *Dispatcher) escDispatch(a Action) {
	if len(a.Intermediates) > 0 {
		switch a.Intermediates[0] {
		case '#':
			// DECALN and friends: consumed silently, out of documented scope.
		}
		return
	}
	switch a.Final {
	case 'D':
		d.Screen.Index()
	case 'E':
		d.Screen.NextLine()
	case 'H':
		d.Screen.SetTabStop(d.Screen.Cursor().Col)
	case 'M':
		d.Screen.ReverseIndex()
	case '7':
		d.Screen.SaveCursor()
	case '8':
		d.Screen.RestoreCursor()
	case 'c':
		*d.Screen = *term.NewScreen(d.Screen.Rows(), d.Screen.Cols(), d.Screen.ScrollbackCap())
	case '=':
		d.Screen.SetAppKeypad(true)
	case '>':
		d.Screen.SetAppKeypad(false)
	}
}

// osc implements the minimum OSC set of spec.md §6. Title/palette/clipboard
// values are opaque to the Screen; the semicolon-split payload is handed to
// the OnOsc hook, if set, and is otherwise discarded. The Dispatcher keeps
// no record of past OSC payloads.
func (d *Dispatcher) osc(a Action) {
	if len(a.OscParams) == 0 {
		return
	}
	if d.OnOsc != nil {
		d.OnOsc(a.OscParams)
	}
}
