// Package display abstracts the RGB565 output surface the viewer renders
// into. The framebuffer backend drives a real panel on Linux; the memory
// backend provides the same double-buffered contract for headless runs and
// tests, so the render loop never needs to know which one it has.
package display

import "github.com/veukit/veuctl/internal/pix"

// Display is a double-buffered RGB565 output.
type Display interface {
	// Back returns the back buffer surface. The surface is invalidated
	// by Flip.
	Back() *pix.Surface
	Width() int
	Height() int
	// Flip makes the back buffer visible.
	Flip() error
	Close() error
}
