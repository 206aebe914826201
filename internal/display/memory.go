package display

import "github.com/veukit/veuctl/internal/pix"

// Memory is an in-RAM display. Flip swaps the two buffers.
type Memory struct {
	w, h  int
	bufs  [2]*pix.Surface
	front int
}

// NewMemory creates a headless display of the given size.
func NewMemory(w, h int) *Memory {
	m := &Memory{w: w, h: h}
	for i := range m.bufs {
		m.bufs[i] = &pix.Surface{
			Format: pix.RGB565,
			W:      w,
			H:      h,
			Data:   make([]byte, w*h*2),
		}
	}
	return m
}

// Back returns the back buffer surface.
func (m *Memory) Back() *pix.Surface {
	return m.bufs[1-m.front]
}

// Front returns the visible surface. Used by tests to inspect what a Flip
// published.
func (m *Memory) Front() *pix.Surface {
	return m.bufs[m.front]
}

func (m *Memory) Width() int  { return m.w }
func (m *Memory) Height() int { return m.h }

// Flip swaps front and back buffers.
func (m *Memory) Flip() error {
	m.front = 1 - m.front
	return nil
}

func (m *Memory) Close() error { return nil }
