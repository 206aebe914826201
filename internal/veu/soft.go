package veu

import (
	"fmt"
	"log/slog"

	"github.com/veukit/veuctl/internal/pix"
)

// soft is the in-process transform engine. It reproduces the VEU's
// nearest-neighbour scaling, 90-degree rotation and RGB/YCbCr conversion on
// the CPU, and mimics the unit's submit/wait behavior: Start kicks the
// prepared operation off and Wait collects its status.
type soft struct {
	logger  *slog.Logger
	op      func() error
	pending chan error
}

func openSoft(logger *slog.Logger) (*soft, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &soft{logger: logger}, nil
}

func (e *soft) Resize(src, dst *pix.Surface) error {
	if err := validSurface(src); err != nil {
		return err
	}
	if err := validSurface(dst); err != nil {
		return err
	}
	if err := blit(src, dst, Rect{0, 0, dst.W, dst.H}); err != nil {
		return fmt.Errorf("%w: resize %dx%d %s to %dx%d %s: %v",
			ErrTransform, src.W, src.H, src.Format, dst.W, dst.H, dst.Format, err)
	}
	return nil
}

func (e *soft) Rotate(src, dst *pix.Surface, rot Rotation) error {
	if rot == RotNone {
		return e.Resize(src, dst)
	}
	if err := validSurface(src); err != nil {
		return err
	}
	if err := validSurface(dst); err != nil {
		return err
	}
	// The unit cannot rotate and rescale in one pass.
	if dst.W != src.H || dst.H != src.W {
		return fmt.Errorf("%w: rotate needs %dx%d destination, got %dx%d",
			ErrGeometry, src.H, src.W, dst.W, dst.H)
	}

	for y := 0; y < dst.H; y++ {
		for x := 0; x < dst.W; x++ {
			r, g, b := readRGB(src, y, src.H-1-x)
			writeRGB(dst, x, y, r, g, b)
		}
	}
	return nil
}

func (e *soft) Setup(src, dst *pix.Surface, sel *Rect) error {
	if e.op != nil || e.pending != nil {
		return fmt.Errorf("%w: operation already prepared", ErrTransform)
	}
	if err := validSurface(src); err != nil {
		return err
	}
	if err := validSurface(dst); err != nil {
		return err
	}
	r := Rect{0, 0, dst.W, dst.H}
	if sel != nil {
		r = *sel
	}
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("%w: blit selection %dx%d", ErrGeometry, r.W, r.H)
	}

	e.op = func() error { return blit(src, dst, r) }
	return nil
}

func (e *soft) Start() error {
	if e.op == nil {
		return fmt.Errorf("%w: no operation prepared", ErrTransform)
	}
	op := e.op
	e.op = nil
	e.pending = make(chan error, 1)
	go func(done chan<- error) {
		done <- op()
	}(e.pending)
	return nil
}

func (e *soft) Wait() error {
	if e.pending == nil {
		return fmt.Errorf("%w: no operation in flight", ErrTransform)
	}
	err := <-e.pending
	e.pending = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransform, err)
	}
	return nil
}

func (e *soft) Close() error {
	if e.pending != nil {
		// Drain an operation left in flight so its goroutine can exit.
		<-e.pending
		e.pending = nil
	}
	e.op = nil
	return nil
}

// blit scales src into the sel rectangle of dst, clipping sel against the
// destination bounds. Frames of identical geometry and format are copied
// verbatim.
func blit(src, dst *pix.Surface, sel Rect) error {
	if sel.W <= 0 || sel.H <= 0 {
		return fmt.Errorf("selection %dx%d is empty", sel.W, sel.H)
	}

	if src.Format == dst.Format &&
		sel.X == 0 && sel.Y == 0 &&
		sel.W == dst.W && sel.H == dst.H &&
		src.W == dst.W && src.H == dst.H {
		n, _ := src.Size()
		copy(dst.Data[:n], src.Data[:n])
		return nil
	}

	x0 := max(sel.X, 0)
	y0 := max(sel.Y, 0)
	x1 := min(sel.X+sel.W, dst.W)
	y1 := min(sel.Y+sel.H, dst.H)

	for dy := y0; dy < y1; dy++ {
		sy := (dy - sel.Y) * src.H / sel.H
		for dx := x0; dx < x1; dx++ {
			sx := (dx - sel.X) * src.W / sel.W
			r, g, b := readRGB(src, sx, sy)
			writeRGB(dst, dx, dy, r, g, b)
		}
	}
	return nil
}
