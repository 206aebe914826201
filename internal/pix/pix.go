// Package pix defines the raw pixel formats handled by the VEU demo tools,
// frame geometry helpers, and the filename/size heuristics used to fill in
// unspecified parameters.
package pix

import (
	"errors"
	"fmt"
)

// Format identifies a raw pixel layout supported by the VEU.
type Format int

const (
	FormatUnknown Format = iota
	RGB565               // 16-bit packed RGB
	RGB24                // 24-bit packed RGB
	RGB32                // 32-bit packed RGB with padding byte
	NV12                 // planar Y + interleaved CbCr, 4:2:0 subsampled
	NV16                 // planar Y + interleaved CbCr, 4:2:2 subsampled
)

// ErrUnknownFormat is returned for geometry operations on FormatUnknown.
var ErrUnknownFormat = errors.New("unknown pixel format")

// String returns the canonical colorspace name, matching the names accepted
// on the command line.
func (f Format) String() string {
	for _, e := range extensions {
		if e.format == f {
			return e.name
		}
	}
	return "<unknown>"
}

// Planar reports whether the format carries a separate chroma plane.
func (f Format) Planar() bool {
	return f == NV12 || f == NV16
}

// FrameBytes returns the exact byte size of one frame of f at w×h.
func FrameBytes(f Format, w, h int) (int, error) {
	switch f {
	case RGB32:
		return w * h * 4, nil
	case RGB24:
		return w * h * 3, nil
	case RGB565, NV16:
		return w * h * 2, nil
	case NV12:
		return w * h * 3 / 2, nil
	}
	return 0, fmt.Errorf("%w (%d)", ErrUnknownFormat, f)
}

// Surface describes a raw image: its pixel format, dimensions, and the frame
// data. For planar formats the luma plane is immediately followed by the
// chroma plane with no padding. A Surface is populated once during
// configuration resolution and not mutated afterwards.
type Surface struct {
	Format Format
	W, H   int
	Data   []byte
}

// Size returns the byte size of one frame of the surface.
func (s *Surface) Size() (int, error) {
	return FrameBytes(s.Format, s.W, s.H)
}

// Luma returns the luma plane for planar formats, or the whole packed frame.
func (s *Surface) Luma() []byte {
	if s.Format.Planar() {
		return s.Data[:s.W*s.H]
	}
	return s.Data
}

// Chroma returns the chroma plane, or nil for packed RGB formats.
func (s *Surface) Chroma() []byte {
	if !s.Format.Planar() {
		return nil
	}
	return s.Data[s.W*s.H:]
}
