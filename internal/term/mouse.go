package term

import "fmt"

// EncodeMouseEvent formats a mouse click for the wire, following xterm's
// documented X10 and SGR (1006) extended encodings. Which format to use is
// chosen by the caller from the Screen's active MouseMode/MouseSGR flags;
// this function does not consult mode state itself, since input encoding is
// a presenter concern (see DESIGN.md's Open Question #3 decision).
func EncodeMouseEvent(button, col, row int, sgr bool, release bool) []byte {
	if sgr {
		final := byte('M')
		if release {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", button, col+1, row+1, final))
	}
	cb := button + 32
	if release {
		cb = 3 + 32
	}
	return []byte{0x1b, '[', 'M', byte(cb), byte(col + 1 + 32), byte(row + 1 + 32)}
}
