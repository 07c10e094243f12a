// Package term implements the xterm-compatible screen state machine: a
// rectangular matrix of Cells with attributes, scroll region, alternate
// buffer, and saved-cursor state.
package term

// ColorKind tags which representation a Color uses.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorPalette16
	ColorPalette256
	ColorRGB
)

// Color is a tagged union over the four ways xterm lets a cell pick a
// foreground or background color.
type Color struct {
	Kind    ColorKind
	Index   uint8 // valid for ColorPalette16 / ColorPalette256
	R, G, B uint8 // valid for ColorRGB
}

// DefaultColor is the zero value: terminal-default foreground/background.
var DefaultColor = Color{Kind: ColorDefault}

// Palette16 builds a Color referring to one of the 16 ANSI colors.
func Palette16(i uint8) Color { return Color{Kind: ColorPalette16, Index: i} }

// Palette256 builds a Color referring to the 256-color cube/grayscale table.
func Palette256(i uint8) Color { return Color{Kind: ColorPalette256, Index: i} }

// RGB builds a direct-color Color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Attr is a bitset of the SGR-settable rendition attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrHidden
	AttrStrikeout
	AttrProtected
)

// Has reports whether all bits of other are set in a.
func (a Attr) Has(other Attr) bool { return a&other == other }

// Cell is one glyph slot: a Unicode scalar, its display width, colors, and
// attributes. A continuation cell (the right half of a wide glyph) carries
// the same Rune as its leader and a Width of 0.
type Cell struct {
	Rune  rune
	Width uint8
	Fg    Color
	Bg    Color
	Attrs Attr
}

// BlankCell is (space, default fg, default bg, no attrs) per the spec's
// definition of a blank cell.
var BlankCell = Cell{Rune: ' ', Width: 1, Fg: DefaultColor, Bg: DefaultColor}

// blankWith returns a blank cell that inherits fg/bg from the given pen,
// used for background-color erase.
func blankWith(fg, bg Color) Cell {
	return Cell{Rune: ' ', Width: 1, Fg: fg, Bg: bg}
}

// IsContinuation reports whether c is the right half of a wide glyph.
func (c Cell) IsContinuation() bool { return c.Width == 0 }
