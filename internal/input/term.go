package input

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrNotATerminal is returned by NewTerminal when stdin cannot deliver raw
// keyboard input.
var ErrNotATerminal = errors.New("stdin is not a terminal")

// Terminal reads raw keyboard input from stdin and delivers decoded keys on
// a channel. The terminal is switched to raw mode for the lifetime of the
// source and restored on Close.
type Terminal struct {
	fd     int
	state  *term.State
	keys   chan Key
	logger *slog.Logger
	once   sync.Once
}

// NewTerminal puts stdin into raw mode and starts the read loop.
func NewTerminal(logger *slog.Logger) (*Terminal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotATerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	t := &Terminal{
		fd:     fd,
		state:  state,
		keys:   make(chan Key, 8),
		logger: logger,
	}
	go t.readLoop()
	return t, nil
}

// Keys returns the decoded key stream. The channel is closed when stdin
// reaches EOF or fails.
func (t *Terminal) Keys() <-chan Key {
	return t.keys
}

// Close restores the terminal state.
func (t *Terminal) Close() error {
	var err error
	t.once.Do(func() {
		err = term.Restore(t.fd, t.state)
	})
	return err
}

func (t *Terminal) readLoop() {
	defer close(t.keys)

	var pending []byte
	buf := make([]byte, 32)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for len(pending) > 0 {
				key, consumed := decode(pending)
				if consumed == 0 {
					break // incomplete escape sequence
				}
				pending = pending[consumed:]
				if key == KeyNone {
					continue
				}
				t.keys <- key
				if key == KeyQuit {
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, os.ErrClosed) {
				t.logger.Debug("keyboard read stopped", "error", err)
			}
			return
		}
	}
}
