package vtparse

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func actionsFor(t *testing.T, input []byte) []Action {
	t.Helper()
	p := NewParser()
	return p.Feed(input)
}

func TestPrintPlainASCII(t *testing.T) {
	acts := actionsFor(t, []byte("hi"))
	if len(acts) != 2 || acts[0].Kind != ActionPrint || acts[0].Rune != 'h' || acts[1].Rune != 'i' {
		t.Fatalf("got %+v", acts)
	}
}

func TestExecuteC0(t *testing.T) {
	acts := actionsFor(t, []byte{0x07})
	if len(acts) != 1 || acts[0].Kind != ActionExecute || acts[0].C0 != 0x07 {
		t.Fatalf("got %+v", acts)
	}
}

func TestCsiSimple(t *testing.T) {
	// ESC [ 3 1 m  (SGR set foreground red)
	acts := actionsFor(t, []byte("\x1b[31m"))
	require.Len(t, acts, 1)
	require.Equal(t, ActionCsi, acts[0].Kind)
	require.Equal(t, byte('m'), acts[0].Final)
	require.Equal(t, [][]uint16{{31}}, acts[0].Params)
}

func TestCsiSubparameters(t *testing.T) {
	// ESC [ 3 8 : 2 : 1 0 : 2 0 : 3 0 m  (direct-color foreground)
	acts := actionsFor(t, []byte("\x1b[38:2:10:20:30m"))
	if len(acts) != 1 {
		t.Fatalf("got %+v", acts)
	}
	want := [][]uint16{{38, 2, 10, 20, 30}}
	if !reflect.DeepEqual(acts[0].Params, want) {
		t.Fatalf("params = %v, want %v", acts[0].Params, want)
	}
}

func TestCsiPrivateMode(t *testing.T) {
	// ESC [ ? 1 0 4 9 h  (DECSET alt screen)
	acts := actionsFor(t, []byte("\x1b[?1049h"))
	if len(acts) != 1 || acts[0].Private != '?' || acts[0].Final != 'h' {
		t.Fatalf("got %+v", acts)
	}
	want := [][]uint16{{1049}}
	if !reflect.DeepEqual(acts[0].Params, want) {
		t.Fatalf("params = %v, want %v", acts[0].Params, want)
	}
}

func TestOscTerminatedByBel(t *testing.T) {
	acts := actionsFor(t, []byte("\x1b]0;title\x07"))
	if len(acts) != 1 || acts[0].Kind != ActionOsc {
		t.Fatalf("got %+v", acts)
	}
	want := [][]byte{[]byte("0"), []byte("title")}
	if !reflect.DeepEqual(acts[0].OscParams, want) {
		t.Fatalf("osc params = %q, want %q", acts[0].OscParams, want)
	}
}

func TestOscTerminatedByEscBackslash(t *testing.T) {
	acts := actionsFor(t, []byte("\x1b]0;title\x1b\\"))
	if len(acts) != 1 || acts[0].Kind != ActionOsc {
		t.Fatalf("got %+v", acts)
	}
}

func TestEscInsideOscAbandonsAndRestarts(t *testing.T) {
	// An ESC that is not followed by '\' inside an OSC string abandons the
	// pending OSC and starts a fresh escape sequence from that byte.
	acts := actionsFor(t, []byte("\x1b]0;title\x1bc"))
	if len(acts) != 1 || acts[0].Kind != ActionEscDispatch || acts[0].Final != 'c' {
		t.Fatalf("got %+v", acts)
	}
}

func TestEscDispatch(t *testing.T) {
	acts := actionsFor(t, []byte("\x1bD")) // IND
	if len(acts) != 1 || acts[0].Kind != ActionEscDispatch || acts[0].Final != 'D' {
		t.Fatalf("got %+v", acts)
	}
}

// TestUtf8ResumableAcrossChunks ensures a multi-byte rune split across
// arbitrary Feed boundaries still decodes to one Print action.
func TestUtf8ResumableAcrossChunks(t *testing.T) {
	full := []byte("世")
	if len(full) != 3 {
		t.Fatalf("test rune is not 3 bytes: %d", len(full))
	}
	for split := 1; split < len(full); split++ {
		p := NewParser()
		acts := p.Feed(full[:split])
		acts = append(acts, p.Feed(full[split:])...)
		if len(acts) != 1 || acts[0].Kind != ActionPrint || acts[0].Rune != '世' {
			t.Fatalf("split at %d: got %+v", split, acts)
		}
	}
}

func TestUtf8InvalidContinuationEmitsReplacementAndResyncs(t *testing.T) {
	// 0xC2 starts a 2-byte sequence but is followed by an ASCII byte, not a
	// valid continuation: expect a replacement char, then the ASCII byte
	// reprocessed normally.
	acts := actionsFor(t, []byte{0xC2, 'x'})
	if len(acts) != 2 {
		t.Fatalf("got %+v", acts)
	}
	if acts[0].Kind != ActionPrint || acts[0].Rune != 0xFFFD {
		t.Fatalf("first action = %+v, want replacement char", acts[0])
	}
	if acts[1].Kind != ActionPrint || acts[1].Rune != 'x' {
		t.Fatalf("second action = %+v, want 'x'", acts[1])
	}
}

// TestParserDeterminism feeds the same bytes through one call vs. many
// single-byte calls and expects identical Actions either way.
func TestParserDeterminism(t *testing.T) {
	input := []byte("\x1b[1;31mHello\x1b[0m\x1b]0;t\x07World\r\n")

	p1 := NewParser()
	whole := p1.Feed(input)

	p2 := NewParser()
	var chunked []Action
	for _, b := range input {
		chunked = append(chunked, p2.Feed([]byte{b})...)
	}

	require.True(t, reflect.DeepEqual(whole, chunked), "chunked parse diverged from whole parse:\nwhole=%+v\nchunked=%+v", whole, chunked)
}

func TestDcsPassthrough(t *testing.T) {
	acts := actionsFor(t, []byte("\x1bP1$rHello\x1b\\"))
	if len(acts) != 1 || acts[0].Kind != ActionDcs {
		t.Fatalf("got %+v", acts)
	}
	if !bytes.Equal(acts[0].DcsData, []byte("Hello")) {
		t.Fatalf("dcs data = %q", acts[0].DcsData)
	}
}
