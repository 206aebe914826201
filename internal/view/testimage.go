package view

import (
	"encoding/binary"

	"github.com/veukit/veuctl/internal/pix"
)

// RGB565 fill colors for the built-in test image.
const (
	colorBlack = 0x0000
	colorRed   = 0xF800
	colorGreen = 0x07E0
	colorBlue  = 0x001F
)

// drawTestImage paints the built-in picture used when no input file is
// given: a black background with a blue and a red rectangle side by side.
func drawTestImage(s *pix.Surface) {
	fillRect(s, 0, 0, s.W, s.H, colorBlack)
	fillRect(s, s.W/4, s.H/4, s.W/4, s.H/2, colorBlue)
	fillRect(s, s.W/2, s.H/4, s.W/4, s.H/2, colorRed)
}

func fillRect(s *pix.Surface, x, y, w, h int, color uint16) {
	for dy := y; dy < y+h; dy++ {
		for dx := x; dx < x+w; dx++ {
			off := (dy*s.W + dx) * 2
			binary.LittleEndian.PutUint16(s.Data[off:], color)
		}
	}
}
