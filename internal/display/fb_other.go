//go:build !linux

package display

import "errors"

// OpenFramebuffer is only available on Linux.
func OpenFramebuffer(path string) (Display, error) {
	return nil, errors.New("framebuffer display requires linux")
}
