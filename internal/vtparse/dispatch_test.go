package vtparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bite/internal/term"
)

func run(t *testing.T, s *term.Screen, input string) {
	t.Helper()
	p := NewParser()
	d := NewDispatcher(s)
	for _, a := range p.Feed([]byte(input)) {
		d.Dispatch(a)
	}
}

// TestCursorUpThenChar covers S2: moving the cursor up and printing a
// character lands it at the expected cell without disturbing the row below.
func TestCursorUpThenChar(t *testing.T) {
	s := term.NewScreen(5, 10, 0)
	run(t, s, "abc\n\x1b[1Ax")
	lines := s.IterateVisibleLines()
	if lines[0].Cells[0].Rune != 'a' || lines[0].Cells[1].Rune != 'b' || lines[0].Cells[2].Rune != 'c' {
		t.Fatalf("row0 prefix disturbed: %+v", lines[0].Cells[:3])
	}
	if lines[0].Cells[3].Rune != 'x' {
		t.Fatalf("expected x at row0 col3, got %+v", lines[0].Cells[3])
	}
	if lines[1].Cells[0].Rune != ' ' {
		t.Fatalf("row1 should still be blank, got %+v", lines[1].Cells[0])
	}
}

// TestSgrBoldRed covers S3: CSI 1;31m sets bold + red foreground on
// subsequently printed cells, and a bare CSI 0m clears it.
func TestSgrBoldRed(t *testing.T) {
	s := term.NewScreen(2, 10, 0)
	run(t, s, "\x1b[1;31mR\x1b[0mG")
	line := s.IterateVisibleLines()[0]
	red := line.Cells[0]
	if !red.Attrs.Has(term.AttrBold) {
		t.Fatal("expected bold attribute")
	}
	if red.Fg.Kind != term.ColorPalette16 || red.Fg.Index != 1 {
		t.Fatalf("fg = %+v, want palette16 index 1", red.Fg)
	}
	green := line.Cells[1]
	if green.Attrs.Has(term.AttrBold) {
		t.Fatal("bold should have been reset")
	}
	if green.Fg.Kind != term.ColorDefault {
		t.Fatalf("fg after reset = %+v, want default", green.Fg)
	}
}

func TestAltScreenRoundTrip(t *testing.T) {
	s := term.NewScreen(3, 5, 100)
	run(t, s, "hello")
	before := s.IterateVisibleLines()

	run(t, s, "\x1b[?1049h")
	if !s.AltActive() {
		t.Fatal("expected alt buffer active after DECSET 1049")
	}
	run(t, s, "\x1b[2J\x1b[Hworld")

	run(t, s, "\x1b[?1049l")
	if s.AltActive() {
		t.Fatal("expected normal buffer restored after DECRST 1049")
	}
	after := s.IterateVisibleLines()
	for i := range before {
		for j := range before[i].Cells {
			if before[i].Cells[j] != after[i].Cells[j] {
				t.Fatalf("normal buffer diverged at (%d,%d)", i, j)
			}
		}
	}
}

func TestScrollRegionDECSTBM(t *testing.T) {
	s := term.NewScreen(6, 5, 0)
	run(t, s, "\x1b[2;5r") // region rows 2..5 (1-based) -> 1..4 0-based
	top, bottom := s.ScrollRegion()
	require.Equal(t, 1, top)
	require.Equal(t, 4, bottom)
}

func TestDeviceStatusReportCursorPosition(t *testing.T) {
	s := term.NewScreen(10, 20, 0)
	d := NewDispatcher(s)
	var replies [][]byte
	d.Reply = func(b []byte) { replies = append(replies, append([]byte{}, b...)) }

	p := NewParser()
	for _, a := range p.Feed([]byte("\x1b[3;5H")) {
		d.Dispatch(a)
	}
	for _, a := range p.Feed([]byte("\x1b[6n")) {
		d.Dispatch(a)
	}
	require.Len(t, replies, 1)
	require.Equal(t, "\x1b[3;5R", string(replies[0]))
}

func TestDeviceStatusReportNilReplyIsNoOp(t *testing.T) {
	s := term.NewScreen(3, 3, 0)
	run(t, s, "\x1b[6n")
}

// TestEraseCharsBounded covers ECH (CSI n X): exactly n cells are blanked
// starting at the cursor, and everything past the nth cell survives.
func TestEraseCharsBounded(t *testing.T) {
	s := term.NewScreen(1, 10, 0)
	run(t, s, "abcdefghij")
	run(t, s, "\x1b[H\x1b[3X") // home, then erase 3 chars from col 0
	line := s.IterateVisibleLines()[0]
	for i := 0; i < 3; i++ {
		require.Equal(t, ' ', line.Cells[i].Rune, "cell %d should be erased", i)
	}
	require.Equal(t, 'd', line.Cells[3].Rune)
	require.Equal(t, 'j', line.Cells[9].Rune)
}

// TestScrollLeftRight covers SL (CSI n SP @) and SR (CSI n SP A): the
// space-intermediate forms shift the screen contents horizontally rather
// than being mis-dispatched as ICH/CUU, which share the same final bytes.
func TestScrollLeftRight(t *testing.T) {
	s := term.NewScreen(1, 5, 0)
	run(t, s, "abcde")

	run(t, s, "\x1b[2 @") // SL 2: shift left, vacate the right two columns
	line := s.IterateVisibleLines()[0]
	require.Equal(t, "cde  ", cellsToString(line.Cells))
	require.Equal(t, 5, s.Cursor().Col, "SL must not move the cursor")

	run(t, s, "\x1b[H") // home
	run(t, s, "\x1b[2 A") // SR 2: shift right, vacate the left two columns
	line = s.IterateVisibleLines()[0]
	require.Equal(t, "  cde", cellsToString(line.Cells))
}

func cellsToString(cells []term.Cell) string {
	var b []byte
	for _, c := range cells {
		if c.IsContinuation() {
			continue
		}
		b = append(b, byte(c.Rune))
	}
	return string(b)
}

// TestRisPreservesScrollbackCapacity covers ESC c (RIS): the reset screen
// keeps its original scrollback capacity instead of losing it.
func TestRisPreservesScrollbackCapacity(t *testing.T) {
	s := term.NewScreen(2, 5, 50)
	run(t, s, "a\nb\nc\nd\ne")
	require.NotZero(t, s.ScrollbackCap())
	run(t, s, "\x1bc")
	require.Equal(t, 50, s.ScrollbackCap())
}

func TestExtendedColorRGBColon(t *testing.T) {
	s := term.NewScreen(1, 5, 0)
	run(t, s, "\x1b[38:2:10:20:30mX")
	c := s.IterateVisibleLines()[0].Cells[0].Fg
	if c.Kind != term.ColorRGB || c.R != 10 || c.G != 20 || c.B != 30 {
		t.Fatalf("fg = %+v", c)
	}
}
