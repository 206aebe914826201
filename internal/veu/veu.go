// Package veu exposes the video engine unit used for raw image resizing,
// rotation and colorspace conversion. Callers configure source and
// destination surfaces and drive the unit through either the one-shot
// Resize/Rotate operations or the Setup/Start/Wait triple used for scaled
// blits into a display back buffer.
//
// The unit processes one operation at a time: an operation must complete
// (Wait) before the next is submitted. All sessions are single-threaded.
package veu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/veukit/veuctl/internal/pix"
)

// Rotation selects the rotation applied by Rotate.
type Rotation int

const (
	RotNone Rotation = iota
	Rot90            // 90 degrees clockwise
)

func (r Rotation) String() string {
	switch r {
	case RotNone:
		return "None"
	case Rot90:
		return "90 degrees clockwise"
	}
	return "<unknown rotation>"
}

// Rect is a destination selection within a surface.
type Rect struct {
	X, Y, W, H int
}

var (
	// ErrTransform wraps failures reported by the transform engine.
	// Historically these return codes were dropped on the floor; they are
	// surfaced here so callers can count and log them.
	ErrTransform = errors.New("hardware transform failed")

	// ErrGeometry reports invalid or degenerate surface geometry, such as
	// a zero-area blit rectangle or mismatched rotation dimensions.
	ErrGeometry = errors.New("invalid transform geometry")
)

// Session is an open handle on the transform engine.
type Session interface {
	// Resize scales src into dst, converting pixel format as needed.
	Resize(src, dst *pix.Surface) error

	// Rotate rotates src into dst. Rotation and rescaling are mutually
	// exclusive: dst dimensions must be the swapped src dimensions.
	Rotate(src, dst *pix.Surface, rot Rotation) error

	// Setup prepares a scaled blit of src into the sel rectangle of dst.
	// A nil sel selects the whole destination surface.
	Setup(src, dst *pix.Surface, sel *Rect) error
	// Start submits the prepared operation.
	Start() error
	// Wait blocks until the submitted operation completes.
	Wait() error

	Close() error
}

// Open opens a session on the transform engine. The in-process software
// engine is used; it implements the same surface and submit/wait contract
// as the hardware unit.
func Open(logger *slog.Logger) (Session, error) {
	return openSoft(logger)
}

func validSurface(s *pix.Surface) error {
	if s == nil {
		return fmt.Errorf("%w: nil surface", ErrGeometry)
	}
	if s.W <= 0 || s.H <= 0 {
		return fmt.Errorf("%w: surface size %dx%d", ErrGeometry, s.W, s.H)
	}
	n, err := s.Size()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	if len(s.Data) < n {
		return fmt.Errorf("%w: surface buffer %d bytes, need %d", ErrGeometry, len(s.Data), n)
	}
	return nil
}
