package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewScreenSize(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	require.Equal(t, 24, s.Rows())
	require.Equal(t, 80, s.Cols())
	for _, l := range s.IterateVisibleLines() {
		require.Len(t, l.Cells, 80)
	}
}

func TestCursorContainment(t *testing.T) {
	s := NewScreen(5, 10, 0)
	s.MoveCursor(100, 100)
	if s.Cursor().Row != 4 || s.Cursor().Col != 10 {
		t.Fatalf("cursor %v not clamped to bounds", s.Cursor())
	}
	s.MoveCursor(-5, -5)
	if s.Cursor().Row != 0 || s.Cursor().Col != 0 {
		t.Fatalf("cursor %v not clamped to zero", s.Cursor())
	}
}

// TestScrollRegionIsolation covers S1: setting a scroll region and issuing
// IND must scroll only rows inside the region, leaving rows outside it
// untouched.
func TestScrollRegionIsolation(t *testing.T) {
	s := NewScreen(6, 10, 0)
	for r := 0; r < 6; r++ {
		s.MoveCursor(r, 0)
		s.PlaceChar(rune('a' + r))
	}
	s.SetScrollRegion(1, 4) // rows 1..4 inclusive, cursor moves to (1,0)... but origin false so MoveCursor(0,0)

	s.MoveCursor(4, 0) // bottom of region
	s.Index()          // IND at region bottom scrolls the region up by one

	lines := s.IterateVisibleLines()
	if lines[0].Cells[0].Rune != 'a' {
		t.Fatalf("row 0 outside region was touched: got %q", lines[0].Cells[0].Rune)
	}
	if lines[5].Cells[0].Rune != 'f' {
		t.Fatalf("row 5 outside region was touched: got %q", lines[5].Cells[0].Rune)
	}
	if lines[1].Cells[0].Rune != 'c' {
		t.Fatalf("row 1 after scroll: got %q, want 'c'", lines[1].Cells[0].Rune)
	}
}

// TestAltBufferIsolation covers S4: switching to the alternate buffer, then
// back, restores the normal buffer cell-for-cell and pushes nothing new to
// scrollback while in the alternate buffer.
func TestAltBufferIsolation(t *testing.T) {
	s := NewScreen(3, 5, 100)
	s.MoveCursor(0, 0)
	s.PlaceChar('x')

	before := s.IterateVisibleLines()

	s.SwitchBuffer(true)
	s.MoveCursor(0, 0)
	s.PlaceChar('z')
	if !s.AltActive() {
		t.Fatal("expected alt buffer active")
	}

	s.SwitchBuffer(false)
	after := s.IterateVisibleLines()

	for i := range before {
		for j := range before[i].Cells {
			if before[i].Cells[j] != after[i].Cells[j] {
				t.Fatalf("normal buffer not restored at (%d,%d): got %+v, want %+v",
					i, j, after[i].Cells[j], before[i].Cells[j])
			}
		}
	}
	if len(s.Scrollback()) != 0 {
		t.Fatalf("alt buffer activity leaked into scrollback: %d lines", len(s.Scrollback()))
	}
}

func TestWideGlyphOccupiesTwoCells(t *testing.T) {
	s := NewScreen(1, 10, 0)
	s.PlaceChar('世')
	line := s.IterateVisibleLines()[0]
	if line.Cells[0].Width != 2 {
		t.Fatalf("leading cell width = %d, want 2", line.Cells[0].Width)
	}
	if !line.Cells[1].IsContinuation() {
		t.Fatal("expected continuation cell after wide glyph")
	}
	if s.Cursor().Col != 2 {
		t.Fatalf("cursor col = %d, want 2", s.Cursor().Col)
	}
}

func TestPendingWrapDeferred(t *testing.T) {
	s := NewScreen(2, 3, 0)
	s.PlaceChar('a')
	s.PlaceChar('b')
	s.PlaceChar('c')
	if s.Cursor().Col != 3 {
		t.Fatalf("cursor col = %d, want 3 (pending wrap)", s.Cursor().Col)
	}
	if s.IterateVisibleLines()[1].Cells[0].Rune != 0 && s.IterateVisibleLines()[1].Cells[0].Rune != ' ' {
		t.Fatal("wrap should not have committed before the next printable character")
	}
	s.PlaceChar('d')
	lines := s.IterateVisibleLines()
	if lines[1].Cells[0].Rune != 'd' {
		t.Fatalf("wrapped char landed at %q, want 'd'", lines[1].Cells[0].Rune)
	}
	if !lines[0].Wrapped {
		t.Fatal("source line should be marked Wrapped")
	}
}

func TestResizePadsAndTruncates(t *testing.T) {
	s := NewScreen(2, 4, 0)
	s.MoveCursor(0, 0)
	s.PlaceChar('a')
	s.Resize(2, 2)
	if s.Cols() != 2 {
		t.Fatalf("cols after shrink = %d, want 2", s.Cols())
	}
	if s.IterateVisibleLines()[0].Cells[0].Rune != 'a' {
		t.Fatal("truncate destroyed surviving cell")
	}
	s.Resize(4, 6)
	if s.Rows() != 4 || s.Cols() != 6 {
		t.Fatalf("grew to %dx%d, want 4x6", s.Rows(), s.Cols())
	}
	if s.IterateVisibleLines()[0].Cells[0].Rune != 'a' {
		t.Fatal("grow destroyed surviving cell")
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	s := NewScreen(5, 5, 0)
	s.MoveCursor(2, 2)
	s.SetAttr(AttrBold)
	s.SaveCursor()
	s.MoveCursor(0, 0)
	s.ResetAttr()
	s.RestoreCursor()
	require.Equal(t, Cursor{Row: 2, Col: 2}, s.Cursor())
	require.True(t, s.attrs.Has(AttrBold))
}

func TestScrollbackCapacity(t *testing.T) {
	s := NewScreen(1, 3, 2)
	for i := 0; i < 5; i++ {
		s.PlaceChar(rune('0' + i))
		s.LineFeed()
	}
	if len(s.Scrollback()) > 2 {
		t.Fatalf("scrollback has %d lines, want at most 2", len(s.Scrollback()))
	}
}
