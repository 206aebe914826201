// Package input delivers keyboard events to the interactive viewer. The
// terminal backend is optional: when stdin is not a terminal the viewer
// falls back to a single render pass, so headless runs stay deterministic.
package input

// Key is a decoded keyboard action.
type Key int

const (
	KeyNone Key = iota
	KeyZoomIn
	KeyZoomOut
	KeyReset
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyReload
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyZoomIn:
		return "zoom-in"
	case KeyZoomOut:
		return "zoom-out"
	case KeyReset:
		return "reset"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyReload:
		return "reload"
	case KeyQuit:
		return "quit"
	}
	return "none"
}

const esc = 0x1b

// decode consumes one key from the head of buf. It returns the decoded key
// (KeyNone for bytes with no binding) and the number of bytes consumed;
// consumed is 0 when buf holds an incomplete escape sequence.
func decode(buf []byte) (Key, int) {
	if len(buf) == 0 {
		return KeyNone, 0
	}

	if buf[0] == esc {
		if len(buf) < 3 {
			return KeyNone, 0
		}
		// CSI and SS3 cursor sequences: ESC [ A..D, ESC O A..D.
		if buf[1] == '[' || buf[1] == 'O' {
			switch buf[2] {
			case 'A':
				return KeyUp, 3
			case 'B':
				return KeyDown, 3
			case 'C':
				return KeyRight, 3
			case 'D':
				return KeyLeft, 3
			}
			return KeyNone, 3
		}
		return KeyNone, 1
	}

	switch buf[0] {
	case '+':
		return KeyZoomIn, 1
	case '-':
		return KeyZoomOut, 1
	case '=':
		return KeyReset, 1
	case ' ':
		return KeyReload, 1
	case 'q', 'Q', 0x03: // ^C quits too; raw mode disables the signal
		return KeyQuit, 1
	}
	return KeyNone, 1
}
