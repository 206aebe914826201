//go:build linux

// Package fbdev provides raw access to the Linux framebuffer device for
// RGB565 panels. It mmaps the video memory and uses display panning for
// tear-free flips when the driver exposes enough virtual resolution,
// falling back to a shadow buffer copy otherwise.
package fbdev

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Device is an open framebuffer.
type Device struct {
	fd      int
	vinfo   varScreenInfo
	finfo   fixScreenInfo
	mem     []byte
	shadow  []byte
	panning bool
	frame   int // bytes per visible frame
}

// Open opens and maps the framebuffer at path (typically /dev/fb0).
// Only 16bpp RGB565 framebuffers are supported.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer %s: %w", path, err)
	}

	d := &Device{fd: fd}
	if err := ioctlPtr(fd, fbioGetFScreenInfo, &d.finfo); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("FBIOGET_FSCREENINFO: %w", err)
	}
	if err := ioctlPtr(fd, fbioGetVScreenInfo, &d.vinfo); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("FBIOGET_VSCREENINFO: %w", err)
	}

	if d.vinfo.bitsPerPixel != 16 {
		unix.Close(fd)
		return nil, fmt.Errorf("framebuffer depth %d bpp, only 16 bpp RGB565 is supported", d.vinfo.bitsPerPixel)
	}
	if int(d.finfo.lineLength) != int(d.vinfo.xres)*2 {
		unix.Close(fd)
		return nil, fmt.Errorf("padded framebuffer lines unsupported (line length %d, width %d)",
			d.finfo.lineLength, d.vinfo.xres)
	}

	d.mem, err = unix.Mmap(fd, 0, int(d.finfo.smemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to map framebuffer memory: %w", err)
	}

	d.frame = int(d.vinfo.yres) * int(d.finfo.lineLength)
	d.panning = d.vinfo.yresVirtual >= 2*d.vinfo.yres && int(d.finfo.smemLen) >= 2*d.frame
	if !d.panning {
		d.shadow = make([]byte, d.frame)
	}
	return d, nil
}

// Width returns the visible width in pixels.
func (d *Device) Width() int { return int(d.vinfo.xres) }

// Height returns the visible height in pixels.
func (d *Device) Height() int { return int(d.vinfo.yres) }

// Back returns the current back buffer. The slice is invalidated by Flip.
func (d *Device) Back() []byte {
	if !d.panning {
		return d.shadow
	}
	if d.vinfo.yOffset == 0 {
		return d.mem[d.frame : 2*d.frame]
	}
	return d.mem[:d.frame]
}

// Flip makes the back buffer visible.
func (d *Device) Flip() error {
	if !d.panning {
		copy(d.mem[:d.frame], d.shadow)
		return nil
	}
	if d.vinfo.yOffset == 0 {
		d.vinfo.yOffset = d.vinfo.yres
	} else {
		d.vinfo.yOffset = 0
	}
	if err := ioctlPtr(d.fd, fbioPanDisplay, &d.vinfo); err != nil {
		return fmt.Errorf("FBIOPAN_DISPLAY: %w", err)
	}
	return nil
}

// Close unmaps the device and closes it.
func (d *Device) Close() error {
	var first error
	if d.mem != nil {
		if err := unix.Munmap(d.mem); err != nil {
			first = err
		}
		d.mem = nil
	}
	if err := unix.Close(d.fd); err != nil && first == nil {
		first = err
	}
	return first
}
