package veu

import (
	"encoding/binary"

	"github.com/veukit/veuctl/internal/pix"
)

// Pixel access goes through 8-bit RGB so any format can convert to any
// other. YCbCr uses BT.601 studio range with fixed-point integer
// arithmetic; packed formats are little-endian, RGB32 stored as XRGB.

func readRGB(s *pix.Surface, x, y int) (r, g, b uint8) {
	switch s.Format {
	case pix.RGB565:
		v := binary.LittleEndian.Uint16(s.Data[2*(y*s.W+x):])
		r = uint8(v>>11) << 3
		g = uint8(v>>5) << 2
		b = uint8(v) << 3
		// Replicate high bits so full white stays full white.
		r |= r >> 5
		g |= g >> 6
		b |= b >> 5
		return r, g, b
	case pix.RGB24:
		i := 3 * (y*s.W + x)
		return s.Data[i], s.Data[i+1], s.Data[i+2]
	case pix.RGB32:
		i := 4 * (y*s.W + x)
		return s.Data[i+2], s.Data[i+1], s.Data[i]
	case pix.NV12, pix.NV16:
		luma := s.Luma()
		chroma := s.Chroma()
		cy := y
		if s.Format == pix.NV12 {
			cy = y / 2
		}
		ci := cy*s.W + (x &^ 1)
		return ycbcrToRGB(luma[y*s.W+x], chroma[ci], chroma[ci+1])
	}
	return 0, 0, 0
}

func writeRGB(s *pix.Surface, x, y int, r, g, b uint8) {
	switch s.Format {
	case pix.RGB565:
		v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
		binary.LittleEndian.PutUint16(s.Data[2*(y*s.W+x):], v)
	case pix.RGB24:
		i := 3 * (y*s.W + x)
		s.Data[i], s.Data[i+1], s.Data[i+2] = r, g, b
	case pix.RGB32:
		i := 4 * (y*s.W + x)
		s.Data[i], s.Data[i+1], s.Data[i+2], s.Data[i+3] = b, g, r, 0
	case pix.NV12, pix.NV16:
		luma := s.Luma()
		chroma := s.Chroma()
		luma[y*s.W+x] = rgbToLuma(r, g, b)
		if x&1 != 0 {
			return
		}
		if s.Format == pix.NV12 && y&1 != 0 {
			return
		}
		cy := y
		if s.Format == pix.NV12 {
			cy = y / 2
		}
		cb, cr := rgbToChroma(r, g, b)
		ci := cy*s.W + x
		chroma[ci], chroma[ci+1] = cb, cr
	}
}

// BT.601 forward coefficients. For 0-255 RGB input, Y lands in [16,235] and
// CbCr in [16,240], so no clamping is needed on this path.
func rgbToLuma(r, g, b uint8) uint8 {
	return uint8((66*int(r)+129*int(g)+25*int(b)+128)>>8 + 16)
}

func rgbToChroma(r, g, b uint8) (cb, cr uint8) {
	cb = uint8((-38*int(r)-74*int(g)+112*int(b)+128)>>8 + 128)
	cr = uint8((112*int(r)-94*int(g)-18*int(b)+128)>>8 + 128)
	return cb, cr
}

func ycbcrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	c := 298 * (int(y) - 16)
	d := int(cb) - 128
	e := int(cr) - 128
	r = clamp8((c + 409*e + 128) >> 8)
	g = clamp8((c - 100*d - 208*e + 128) >> 8)
	b = clamp8((c + 516*d + 128) >> 8)
	return r, g, b
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
