package input

import (
	"bytes"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		want     Key
		consumed int
	}{
		{"zoom in", []byte("+"), KeyZoomIn, 1},
		{"zoom out", []byte("-"), KeyZoomOut, 1},
		{"reset", []byte("="), KeyReset, 1},
		{"reload", []byte(" "), KeyReload, 1},
		{"quit", []byte("q"), KeyQuit, 1},
		{"quit upper", []byte("Q"), KeyQuit, 1},
		{"ctrl-c", []byte{0x03}, KeyQuit, 1},
		{"up", []byte{0x1b, '[', 'A'}, KeyUp, 3},
		{"down", []byte{0x1b, '[', 'B'}, KeyDown, 3},
		{"right", []byte{0x1b, '[', 'C'}, KeyRight, 3},
		{"left", []byte{0x1b, '[', 'D'}, KeyLeft, 3},
		{"ss3 up", []byte{0x1b, 'O', 'A'}, KeyUp, 3},
		{"partial escape", []byte{0x1b, '['}, KeyNone, 0},
		{"lone escape then char", []byte{0x1b, 'x', 'x'}, KeyNone, 1},
		{"unbound key", []byte("z"), KeyNone, 1},
		{"unbound csi", []byte{0x1b, '[', 'H'}, KeyNone, 3},
		{"empty", nil, KeyNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, consumed := decode(tt.buf)
			if got != tt.want || consumed != tt.consumed {
				t.Errorf("decode(%v) = %v, %d; want %v, %d", tt.buf, got, consumed, tt.want, tt.consumed)
			}
		})
	}
}

func TestDecodeStream(t *testing.T) {
	// A burst of keys must decode in order, keeping the tail of a split
	// escape sequence for the next read.
	stream := bytes.Join([][]byte{
		[]byte("+"),
		{0x1b, '[', 'C'},
		[]byte("-"),
		{0x1b, '[', 'A'},
		[]byte("q"),
	}, nil)

	var got []Key
	for len(stream) > 0 {
		key, consumed := decode(stream)
		if consumed == 0 {
			t.Fatal("decode stalled on complete stream")
		}
		stream = stream[consumed:]
		if key != KeyNone {
			got = append(got, key)
		}
	}

	want := []Key{KeyZoomIn, KeyRight, KeyZoomOut, KeyUp, KeyQuit}
	if len(got) != len(want) {
		t.Fatalf("decoded %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d = %v, want %v", i, got[i], want[i])
		}
	}
}
