package pix

import (
	"path/filepath"
	"strings"
)

// extensions maps colorspace names and filename extensions to formats.
// Matching is a case-insensitive prefix match, first entry wins, so order
// matters: "RGB565" must be tried before the bare "rgb" extension.
var extensions = []struct {
	name   string
	format Format
}{
	{"RGB565", RGB565},
	{"rgb", RGB565},
	{"RGB888", RGB24},
	{"888", RGB24},
	{"RGBx888", RGB32},
	{"x888", RGB32},
	{"YCbCr420", NV12},
	{"420", NV12},
	{"yuv", NV12},
	{"NV12", NV12},
	{"YCbCr422", NV16},
	{"422", NV16},
	{"NV16", NV16},
}

// Preset is a named frame size used for guessing and reporting.
type Preset struct {
	Name string
	W, H int
}

// Presets lists the well-known frame sizes.
var Presets = []Preset{
	{"QCIF", 176, 144},
	{"CIF", 352, 288},
	{"QVGA", 320, 240},
	{"VGA", 640, 480},
	{"D1", 720, 480},
	{"720p", 1280, 720},
}

// ParseFormat resolves a colorspace name or filename extension to a Format.
func ParseFormat(arg string) (Format, bool) {
	if arg == "" {
		return FormatUnknown, false
	}
	for _, e := range extensions {
		if len(arg) >= len(e.name) && strings.EqualFold(arg[:len(e.name)], e.name) {
			return e.format, true
		}
	}
	return FormatUnknown, false
}

// ParseSize resolves a preset name ("qcif", "720p", ...) to a width/height.
func ParseSize(arg string) (w, h int, ok bool) {
	if arg == "" {
		return 0, 0, false
	}
	for _, p := range Presets {
		if len(arg) >= len(p.Name) && strings.EqualFold(arg[:len(p.Name)], p.Name) {
			return p.W, p.H, true
		}
	}
	return 0, 0, false
}

// PresetName returns the preset name for w×h, or "" when the size is not a
// well-known one. Used for reporting only.
func PresetName(w, h int) string {
	for _, p := range Presets {
		if w == p.W && h == p.H {
			return p.Name
		}
	}
	return ""
}

// GuessFormat infers a format from a filename extension. Returns
// FormatUnknown for stdin/stdout ("-"), missing extensions, and extensions
// not in the table.
func GuessFormat(filename string) Format {
	if filename == "" || filename == "-" {
		return FormatUnknown
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		return FormatUnknown
	}
	f, _ := ParseFormat(ext[1:])
	return f
}

// GuessSize matches a file length against the preset table. A preset is
// selected only when the length is exactly one frame of f at that size.
func GuessSize(f Format, fileLen int64) (w, h int, ok bool) {
	for _, p := range Presets {
		n, err := FrameBytes(f, p.W, p.H)
		if err != nil {
			return 0, 0, false
		}
		if fileLen == int64(n) {
			return p.W, p.H, true
		}
	}
	return 0, 0, false
}
