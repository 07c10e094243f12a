package term

import "github.com/mattn/go-runewidth"

// Cursor is the write position. Col may legally equal cols, denoting
// "pending wrap" per spec.md §3.
type Cursor struct {
	Row, Col int
}

// MouseMode tags which xterm mouse-tracking family is active.
type MouseMode uint8

const (
	MouseOff MouseMode = iota
	MouseX10
	MouseNormal // DECSET 1000
	MouseButtonEvent // DECSET 1002
	MouseAnyEvent    // DECSET 1003
)

// EraseRegion selects which part of a line/display an erase touches.
type EraseRegion uint8

const (
	EraseToEnd EraseRegion = iota
	EraseToStart
	EraseAll
	EraseSaved // ED 3: erase scrollback too
)

// modes bundles the boolean/enum modes spec.md §3 lists.
type modes struct {
	insert          bool
	wrap            bool
	origin          bool
	cursorVisible   bool
	appKeypad       bool
	appCursorKeys   bool
	bracketedPaste  bool
	mouseMode       MouseMode
	mouseSGR        bool
	reverseVideo    bool
	cursorBlink     bool
}

func defaultModes() modes {
	return modes{wrap: true, cursorVisible: true}
}

// savedState is the cursor/attribute/origin snapshot DECSC/DECRC and
// DECSET 1049 stash and restore.
type savedState struct {
	cursor Cursor
	attrs  Attr
	fg, bg Color
	origin bool
}

// buffer is one of the two screen surfaces (normal or alternate).
type buffer struct {
	lines      []Line
	scrollback []Line // unused (stays nil) for the alternate buffer
}

// Screen is the rectangular character matrix described in spec.md §3/§4.1.
type Screen struct {
	rows, cols int

	cur          Cursor
	pendingWrap  bool
	attrs        Attr
	fg, bg       Color

	top, bottom int // scroll region, inclusive, 0-based

	normal    buffer
	alternate buffer
	altActive bool

	savedNormal    *savedState
	savedAlternate *savedState

	scrollbackCap int
	tabStops      map[int]bool

	mode modes
}

// NewScreen builds a Screen of the given size with default modes.
func NewScreen(rows, cols int, scrollbackCap int) *Screen {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	s := &Screen{
		rows: rows, cols: cols,
		fg: DefaultColor, bg: DefaultColor,
		top: 0, bottom: rows - 1,
		scrollbackCap: scrollbackCap,
		tabStops:      defaultTabStops(cols),
		mode:          defaultModes(),
	}
	s.normal.lines = makeBlankLines(rows, cols, s.pen())
	s.alternate.lines = makeBlankLines(rows, cols, s.pen())
	return s
}

func defaultTabStops(cols int) map[int]bool {
	stops := make(map[int]bool)
	for c := 8; c < cols; c += 8 {
		stops[c] = true
	}
	return stops
}

func makeBlankLines(rows, cols int, pen Cell) []Line {
	lines := make([]Line, rows)
	for i := range lines {
		lines[i] = newLine(cols, pen)
	}
	return lines
}

// pen is the Cell that fresh blanks inherit: current bg/fg, no attrs, per
// background-color-erase semantics.
func (s *Screen) pen() Cell {
	return blankWith(s.fg, s.bg)
}

func (s *Screen) active() *buffer {
	if s.altActive {
		return &s.alternate
	}
	return &s.normal
}

// Rows returns the current row count.
func (s *Screen) Rows() int { return s.rows }

// Cols returns the current column count.
func (s *Screen) Cols() int { return s.cols }

// ScrollbackCap returns the scrollback line limit this Screen was built
// with, so a full reset (RIS) can rebuild a fresh Screen without losing it.
func (s *Screen) ScrollbackCap() int { return s.scrollbackCap }

// Cursor returns the current cursor position.
func (s *Screen) Cursor() Cursor { return s.cur }

// Mode accessors used by the parser dispatcher and the presenter.
func (s *Screen) SetInsertMode(v bool)        { s.mode.insert = v }
func (s *Screen) SetWrapMode(v bool)          { s.mode.wrap = v }
func (s *Screen) SetCursorVisible(v bool)     { s.mode.cursorVisible = v }
func (s *Screen) CursorVisible() bool         { return s.mode.cursorVisible }
func (s *Screen) SetAppKeypad(v bool)         { s.mode.appKeypad = v }
func (s *Screen) SetAppCursorKeys(v bool)     { s.mode.appCursorKeys = v }
func (s *Screen) AppCursorKeys() bool         { return s.mode.appCursorKeys }
func (s *Screen) SetBracketedPaste(v bool)    { s.mode.bracketedPaste = v }
func (s *Screen) BracketedPaste() bool        { return s.mode.bracketedPaste }
func (s *Screen) SetMouseMode(m MouseMode)    { s.mode.mouseMode = m }
func (s *Screen) MouseMode() MouseMode        { return s.mode.mouseMode }
func (s *Screen) SetMouseSGR(v bool)          { s.mode.mouseSGR = v }
func (s *Screen) MouseSGR() bool              { return s.mode.mouseSGR }
func (s *Screen) SetReverseVideo(v bool)      { s.mode.reverseVideo = v }

// SetOriginMode sets DEC origin mode. Per spec.md §4.1, changing it resets
// the cursor to the scroll region's top-left.
func (s *Screen) SetOriginMode(v bool) {
	s.mode.origin = v
	if v {
		s.MoveCursor(s.top, 0)
	} else {
		s.MoveCursor(0, 0)
	}
}

func (s *Screen) OriginMode() bool { return s.mode.origin }

// clampRow/clampCol enforce the addressable bounds, honoring origin mode.
func (s *Screen) clampRow(r int) int {
	lo, hi := 0, s.rows-1
	if s.mode.origin {
		lo, hi = s.top, s.bottom
	}
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

func (s *Screen) clampCol(c int) int {
	if c < 0 {
		return 0
	}
	if c > s.cols {
		return s.cols
	}
	return c
}

// MoveCursor moves to an absolute (row, col), interpreted relative to the
// scroll region when origin mode is active.
func (s *Screen) MoveCursor(r, c int) {
	if s.mode.origin {
		r += s.top
	}
	s.cur.Row = s.clampRow(r)
	s.cur.Col = s.clampCol(c)
	s.pendingWrap = false
}

// MoveRelative moves the cursor by a delta, clamping into bounds.
func (s *Screen) MoveRelative(dr, dc int) {
	row := s.cur.Row + dr
	col := s.cur.Col + dc
	lo, hi := 0, s.rows-1
	if s.mode.origin {
		lo, hi = s.top, s.bottom
	}
	if row < lo {
		row = lo
	}
	if row > hi {
		row = hi
	}
	s.cur.Row = row
	s.cur.Col = s.clampCol(col)
	s.pendingWrap = false
}

// SetAttr ORs attribute bits into the current pen.
func (s *Screen) SetAttr(a Attr) { s.attrs |= a }

// ResetAttr clears all attributes and colors back to default.
func (s *Screen) ResetAttr() {
	s.attrs = 0
	s.fg = DefaultColor
	s.bg = DefaultColor
}

// ClearAttr clears specific attribute bits (used by SGR 22/24/27/... resets).
func (s *Screen) ClearAttr(a Attr) { s.attrs &^= a }

// SetFg/SetBg set the current pen colors for subsequent writes.
func (s *Screen) SetFg(c Color) { s.fg = c }
func (s *Screen) SetBg(c Color) { s.bg = c }

func (s *Screen) currentPenCell(r rune) Cell {
	return Cell{Rune: r, Width: 1, Fg: s.fg, Bg: s.bg, Attrs: s.attrs}
}

// SetScrollRegion sets [top, bottom], clamped into [0, rows-1], and moves
// the cursor to the region's origin per xterm's DECSTBM behavior.
func (s *Screen) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom > s.rows-1 {
		bottom = s.rows - 1
	}
	if top >= bottom {
		top, bottom = 0, s.rows-1
	}
	s.top, s.bottom = top, bottom
	s.MoveCursor(0, 0)
}

// ScrollRegion returns the current scroll region bounds.
func (s *Screen) ScrollRegion() (top, bottom int) { return s.top, s.bottom }

// pushScrollback appends a line to the normal buffer's scrollback,
// trimming to the configured capacity.
func (s *Screen) pushScrollback(l Line) {
	if s.scrollbackCap <= 0 {
		return
	}
	sb := append(s.normal.scrollback, l)
	if len(sb) > s.scrollbackCap {
		sb = sb[len(sb)-s.scrollbackCap:]
	}
	s.normal.scrollback = sb
}

// ScrollUp scrolls the active scroll region up by n lines: lines
// [top..top+n) are removed, pushed to scrollback when the region spans the
// full screen of the normal buffer, remaining lines shift up, and n fresh
// blank lines appear at the bottom of the region.
func (s *Screen) ScrollUp(n int) {
	if n <= 0 {
		return
	}
	buf := s.active()
	regionHeight := s.bottom - s.top + 1
	if n > regionHeight {
		n = regionHeight
	}
	fullScreenNormal := !s.altActive && s.top == 0 && s.bottom == s.rows-1
	for i := 0; i < n; i++ {
		if fullScreenNormal {
			s.pushScrollback(buf.lines[s.top].clone())
		}
		copy(buf.lines[s.top:s.bottom], buf.lines[s.top+1:s.bottom+1])
		buf.lines[s.bottom] = newLine(s.cols, s.pen())
	}
}

// ScrollDown scrolls the active scroll region down by n lines: bottom lines
// are dropped, blank lines appear at the top of the region.
func (s *Screen) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	buf := s.active()
	regionHeight := s.bottom - s.top + 1
	if n > regionHeight {
		n = regionHeight
	}
	for i := 0; i < n; i++ {
		copy(buf.lines[s.top+1:s.bottom+1], buf.lines[s.top:s.bottom])
		buf.lines[s.top] = newLine(s.cols, s.pen())
	}
}

// lineFeed implements the line-feed rule of spec.md §4.1: scroll at the
// bottom of the region, otherwise move down one row. Column is untouched.
func (s *Screen) lineFeed() {
	if s.cur.Row == s.bottom {
		s.ScrollUp(1)
	} else if s.cur.Row < s.rows-1 {
		s.cur.Row++
	}
	s.pendingWrap = false
}

// CarriageReturn moves the cursor to column 0 of the current row.
func (s *Screen) CarriageReturn() {
	s.cur.Col = 0
	s.pendingWrap = false
}

// LineFeed is the public Execute(LF) hook used by the parser dispatcher.
func (s *Screen) LineFeed() { s.lineFeed() }

// ReverseIndex is ESC M (RI): move up one row, scrolling down at the top of
// the region.
func (s *Screen) ReverseIndex() {
	if s.cur.Row == s.top {
		s.ScrollDown(1)
	} else if s.cur.Row > 0 {
		s.cur.Row--
	}
	s.pendingWrap = false
}

// Index is ESC D (IND): same as line feed but never touches the column.
func (s *Screen) Index() { s.lineFeed() }

// NextLine is ESC E (NEL): index plus carriage return.
func (s *Screen) NextLine() {
	s.lineFeed()
	s.CarriageReturn()
}

// PlaceChar writes one grapheme's leading rune at the cursor, applying the
// insert/wrap semantics from spec.md §4.1. Wide runes occupy two cells; the
// caller is expected to feed exactly one rune per call (combining marks are
// out of scope, matching the "documented control sequences only" limit).
func (s *Screen) PlaceChar(r rune) {
	width := runewidth.RuneWidth(r)
	if width <= 0 {
		width = 1
	}
	if s.pendingWrap {
		if s.mode.wrap {
			s.active().lines[s.cur.Row].Wrapped = true
			s.lineFeed()
			s.cur.Col = 0
		} else {
			s.cur.Col = s.cols - width
			if s.cur.Col < 0 {
				s.cur.Col = 0
			}
		}
		s.pendingWrap = false
	}
	if s.cur.Col+width > s.cols {
		if s.mode.wrap {
			s.active().lines[s.cur.Row].Wrapped = true
			s.lineFeed()
			s.cur.Col = 0
		} else {
			s.cur.Col = s.cols - width
			if s.cur.Col < 0 {
				s.cur.Col = 0
			}
		}
	}

	line := &s.active().lines[s.cur.Row]
	if s.mode.insert {
		s.shiftRight(line, s.cur.Col, width)
	}

	cell := s.currentPenCell(r)
	cell.Width = uint8(width)
	line.Cells[s.cur.Col] = cell
	if width == 2 && s.cur.Col+1 < s.cols {
		cont := cell
		cont.Width = 0
		line.Cells[s.cur.Col+1] = cont
	}
	line.Dirty = true

	if s.cur.Col+width >= s.cols {
		s.cur.Col = s.cols
		s.pendingWrap = true
	} else {
		s.cur.Col += width
	}
}

// shiftRight makes room for `width` new cells at col by shifting the
// remainder of the line right, dropping cells that fall off the edge.
func (s *Screen) shiftRight(line *Line, col, width int) {
	n := len(line.Cells)
	if col >= n {
		return
	}
	end := n - width
	if end < col {
		end = col
	}
	copy(line.Cells[col+width:n], line.Cells[col:end])
	for i := col; i < col+width && i < n; i++ {
		line.Cells[i] = s.pen()
	}
}

// InsertChars shifts [col, cols-n) right by n, filling the gap with the pen
// blank, per ICH.
func (s *Screen) InsertChars(n int) {
	if n <= 0 {
		return
	}
	line := &s.active().lines[s.cur.Row]
	s.shiftRight(line, s.cur.Col, n)
	line.Dirty = true
}

// DeleteChars removes n cells at the cursor, shifting the remainder left and
// filling the vacated tail with the pen blank, per DCH.
func (s *Screen) DeleteChars(n int) {
	if n <= 0 {
		return
	}
	line := &s.active().lines[s.cur.Row]
	cols := len(line.Cells)
	if s.cur.Col >= cols {
		return
	}
	if n > cols-s.cur.Col {
		n = cols - s.cur.Col
	}
	copy(line.Cells[s.cur.Col:cols-n], line.Cells[s.cur.Col+n:cols])
	for i := cols - n; i < cols; i++ {
		line.Cells[i] = s.pen()
	}
	line.Dirty = true
}

// InsertLines inserts n blank lines at the cursor row within the scroll
// region, per IL, shifting lines below down and dropping ones that fall off
// the bottom of the region.
func (s *Screen) InsertLines(n int) {
	if n <= 0 || s.cur.Row < s.top || s.cur.Row > s.bottom {
		return
	}
	buf := s.active()
	regionHeight := s.bottom - s.cur.Row + 1
	if n > regionHeight {
		n = regionHeight
	}
	copy(buf.lines[s.cur.Row+n:s.bottom+1], buf.lines[s.cur.Row:s.bottom+1-n])
	for i := s.cur.Row; i < s.cur.Row+n; i++ {
		buf.lines[i] = newLine(s.cols, s.pen())
	}
}

// DeleteLines removes n lines at the cursor row within the scroll region,
// per DL, shifting lines below up and filling the vacated bottom with blanks.
func (s *Screen) DeleteLines(n int) {
	if n <= 0 || s.cur.Row < s.top || s.cur.Row > s.bottom {
		return
	}
	buf := s.active()
	regionHeight := s.bottom - s.cur.Row + 1
	if n > regionHeight {
		n = regionHeight
	}
	copy(buf.lines[s.cur.Row:s.bottom+1-n], buf.lines[s.cur.Row+n:s.bottom+1])
	for i := s.bottom - n + 1; i <= s.bottom; i++ {
		buf.lines[i] = newLine(s.cols, s.pen())
	}
}

// ScrollLeft implements SL: every line within the vertical scroll region
// shifts left by n columns, discarding the leftmost cells and filling the
// vacated columns at the right with the current pen.
func (s *Screen) ScrollLeft(n int) {
	if n <= 0 {
		return
	}
	if n > s.cols {
		n = s.cols
	}
	buf := s.active()
	pen := s.pen()
	for r := s.top; r <= s.bottom; r++ {
		line := &buf.lines[r]
		copy(line.Cells[:s.cols-n], line.Cells[n:])
		for i := s.cols - n; i < s.cols; i++ {
			line.Cells[i] = pen
		}
		line.Dirty = true
	}
}

// ScrollRight implements SR: every line within the vertical scroll region
// shifts right by n columns, discarding the rightmost cells and filling the
// vacated columns at the left with the current pen.
func (s *Screen) ScrollRight(n int) {
	if n <= 0 {
		return
	}
	if n > s.cols {
		n = s.cols
	}
	buf := s.active()
	pen := s.pen()
	for r := s.top; r <= s.bottom; r++ {
		line := &buf.lines[r]
		copy(line.Cells[n:], line.Cells[:s.cols-n])
		for i := 0; i < n; i++ {
			line.Cells[i] = pen
		}
		line.Dirty = true
	}
}

// Erase implements ED/EL: EraseToEnd/EraseToStart/EraseAll clear the row (EL
// callers) or the whole display (ED callers, see EraseDisplay). Freshly
// blanked cells inherit the current pen per background-color-erase.
func (s *Screen) Erase(region EraseRegion) {
	line := &s.active().lines[s.cur.Row]
	pen := s.pen()
	switch region {
	case EraseToEnd:
		for i := s.cur.Col; i < len(line.Cells); i++ {
			line.Cells[i] = pen
		}
	case EraseToStart:
		for i := 0; i <= s.cur.Col && i < len(line.Cells); i++ {
			line.Cells[i] = pen
		}
	case EraseAll, EraseSaved:
		for i := range line.Cells {
			line.Cells[i] = pen
		}
	}
	line.Dirty = true
}

// EraseChars implements ECH: blanks exactly n cells starting at the cursor,
// without moving it and without touching any cell beyond the nth. Bounded to
// the end of the row, unlike EraseToEnd.
func (s *Screen) EraseChars(n int) {
	line := &s.active().lines[s.cur.Row]
	pen := s.pen()
	end := s.cur.Col + n
	if end > len(line.Cells) {
		end = len(line.Cells)
	}
	for i := s.cur.Col; i < end; i++ {
		line.Cells[i] = pen
	}
	line.Dirty = true
}

// EraseDisplay implements ED across the whole active buffer.
func (s *Screen) EraseDisplay(region EraseRegion) {
	buf := s.active()
	pen := s.pen()
	switch region {
	case EraseToEnd:
		s.Erase(EraseToEnd)
		for r := s.cur.Row + 1; r < s.rows; r++ {
			for i := range buf.lines[r].Cells {
				buf.lines[r].Cells[i] = pen
			}
			buf.lines[r].Dirty = true
		}
	case EraseToStart:
		s.Erase(EraseToStart)
		for r := 0; r < s.cur.Row; r++ {
			for i := range buf.lines[r].Cells {
				buf.lines[r].Cells[i] = pen
			}
			buf.lines[r].Dirty = true
		}
	case EraseAll:
		for r := 0; r < s.rows; r++ {
			for i := range buf.lines[r].Cells {
				buf.lines[r].Cells[i] = pen
			}
			buf.lines[r].Dirty = true
		}
	case EraseSaved:
		if !s.altActive {
			s.normal.scrollback = nil
		}
	}
}

// SaveCursor stashes cursor position, attributes/colors, and origin mode
// (DECSC / part of DECSET 1049).
func (s *Screen) SaveCursor() {
	st := &savedState{cursor: s.cur, attrs: s.attrs, fg: s.fg, bg: s.bg, origin: s.mode.origin}
	if s.altActive {
		s.savedAlternate = st
	} else {
		s.savedNormal = st
	}
}

// RestoreCursor restores a previously saved state (DECRC), or resets to the
// origin if nothing was saved.
func (s *Screen) RestoreCursor() {
	var st *savedState
	if s.altActive {
		st = s.savedAlternate
	} else {
		st = s.savedNormal
	}
	if st == nil {
		s.cur = Cursor{}
		s.pendingWrap = false
		return
	}
	s.cur = st.cursor
	s.attrs = st.attrs
	s.fg = st.fg
	s.bg = st.bg
	s.mode.origin = st.origin
	s.pendingWrap = false
}

// SwitchBuffer toggles the alternate/normal buffer per DECSET 1049. Per
// spec.md §8 invariant 6, switching back restores the normal buffer
// cell-for-cell and never leaks scrollback.
func (s *Screen) SwitchBuffer(alternate bool) {
	if alternate == s.altActive {
		return
	}
	s.altActive = alternate
	if alternate {
		s.alternate.lines = makeBlankLines(s.rows, s.cols, s.pen())
	}
}

// AltActive reports whether the alternate buffer is currently displayed.
func (s *Screen) AltActive() bool { return s.altActive }

// Resize re-lays the screen at a new size per spec.md §4.1: shorter lines
// are padded, longer lines truncated; cursor and scroll region clamp; a
// resize to zero rows/cols is a silent no-op.
func (s *Screen) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	pen := s.pen()
	resizeBuf := func(buf *buffer) {
		if rows > len(buf.lines) {
			for i := len(buf.lines); i < rows; i++ {
				buf.lines = append(buf.lines, newLine(cols, pen))
			}
		} else if rows < len(buf.lines) {
			buf.lines = buf.lines[:rows]
		}
		for i := range buf.lines {
			buf.lines[i].resize(cols, pen)
		}
	}
	resizeBuf(&s.normal)
	resizeBuf(&s.alternate)

	if cols != s.cols {
		s.tabStops = defaultTabStops(cols)
	}
	s.rows, s.cols = rows, cols

	if s.top > rows-1 {
		s.top = 0
	}
	if s.bottom > rows-1 || s.bottom <= s.top {
		s.bottom = rows - 1
	}
	s.cur.Row = s.clampRow(s.cur.Row)
	s.cur.Col = s.clampCol(s.cur.Col)
	s.pendingWrap = false
}

// SetTabStop marks column c as a tab stop.
func (s *Screen) SetTabStop(c int) { s.tabStops[c] = true }

// ClearTabStop removes the tab stop at column c.
func (s *Screen) ClearTabStop(c int) { delete(s.tabStops, c) }

// ClearAllTabStops removes every tab stop (TBC with parameter 3).
func (s *Screen) ClearAllTabStops() { s.tabStops = make(map[int]bool) }

// CursorForwardTab moves the cursor to the next tab stop, or the last
// column if none remain, n times.
func (s *Screen) CursorForwardTab(n int) {
	for ; n > 0; n-- {
		next := s.cols - 1
		for c := s.cur.Col + 1; c < s.cols; c++ {
			if s.tabStops[c] {
				next = c
				break
			}
		}
		s.cur.Col = next
	}
}

// IterateVisibleLines returns a snapshot of the currently displayed lines
// top to bottom, materialized under the caller's lock per spec.md §9's
// "iterator contract" note (Session holds the lock for the call).
func (s *Screen) IterateVisibleLines() []Line {
	buf := s.active()
	out := make([]Line, len(buf.lines))
	for i, l := range buf.lines {
		out[i] = l.clone()
	}
	return out
}

// Scrollback returns a snapshot of the normal buffer's scrollback lines,
// oldest first. Empty for the alternate buffer.
func (s *Screen) Scrollback() []Line {
	out := make([]Line, len(s.normal.scrollback))
	for i, l := range s.normal.scrollback {
		out[i] = l.clone()
	}
	return out
}
