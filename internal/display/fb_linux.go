//go:build linux

package display

import (
	"github.com/veukit/veuctl/internal/pix"
	"github.com/veukit/veuctl/pkg/fbdev"
)

// framebuffer adapts pkg/fbdev to the Display interface.
type framebuffer struct {
	dev *fbdev.Device
}

// OpenFramebuffer opens the framebuffer device at path.
func OpenFramebuffer(path string) (Display, error) {
	dev, err := fbdev.Open(path)
	if err != nil {
		return nil, err
	}
	return &framebuffer{dev: dev}, nil
}

func (f *framebuffer) Back() *pix.Surface {
	return &pix.Surface{
		Format: pix.RGB565,
		W:      f.dev.Width(),
		H:      f.dev.Height(),
		Data:   f.dev.Back(),
	}
}

func (f *framebuffer) Width() int   { return f.dev.Width() }
func (f *framebuffer) Height() int  { return f.dev.Height() }
func (f *framebuffer) Flip() error  { return f.dev.Flip() }
func (f *framebuffer) Close() error { return f.dev.Close() }
