package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeMouseEventSGR(t *testing.T) {
	got := EncodeMouseEvent(0, 4, 9, true, false)
	require.Equal(t, "\x1b[<0;5;10M", string(got))
}

func TestEncodeMouseEventSGRRelease(t *testing.T) {
	got := EncodeMouseEvent(0, 4, 9, true, true)
	require.Equal(t, "\x1b[<0;5;10m", string(got))
}

func TestEncodeMouseEventX10(t *testing.T) {
	got := EncodeMouseEvent(0, 0, 0, false, false)
	want := []byte{0x1b, '[', 'M', byte(0 + 32), byte(1 + 32), byte(1 + 32)}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
