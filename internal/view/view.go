// Package view implements the interactive pipeline: one source frame is
// scaled through the transform engine into the display back buffer, with
// keyboard-driven zoom and pan between renders. Without a key source the
// loop degrades to a single deterministic render, which keeps headless runs
// and tests simple.
package view

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/veukit/veuctl/internal/display"
	"github.com/veukit/veuctl/internal/dmabuf"
	"github.com/veukit/veuctl/internal/input"
	"github.com/veukit/veuctl/internal/metrics"
	"github.com/veukit/veuctl/internal/pix"
	"github.com/veukit/veuctl/internal/veu"
)

// State is the zoom/pan state driven by the keyboard. Zoom and pan are
// deliberately unclamped: degenerate scale factors are handled at render
// time, not hidden here.
type State struct {
	Zoom       float64
	PanX, PanY int
}

// NewState returns the initial state: unity zoom, no pan.
func NewState() State {
	return State{Zoom: 1.0}
}

// Reset restores the initial state.
func (s *State) Reset() {
	s.Zoom = 1.0
	s.PanX, s.PanY = 0, 0
}

// Apply updates the state for one key press.
func (s *State) Apply(k input.Key) (quit, reload bool) {
	switch k {
	case input.KeyZoomIn:
		s.Zoom += 0.01
	case input.KeyZoomOut:
		s.Zoom -= 0.01
	case input.KeyReset:
		s.Reset()
	case input.KeyUp:
		s.PanY--
	case input.KeyDown:
		s.PanY++
	case input.KeyLeft:
		s.PanX--
	case input.KeyRight:
		s.PanX++
	case input.KeyReload:
		reload = true
	case input.KeyQuit:
		quit = true
	}
	return quit, reload
}

// Config describes one viewer run.
type Config struct {
	InPath string // "" synthesizes a test image
	In     pix.Surface
}

// Resolve fills unset fields. With no input file the synthetic image
// defaults to QVGA RGB565; with a file the usual extension and file-size
// heuristics apply.
func (c *Config) Resolve() error {
	if c.InPath == "" {
		if c.In.W == 0 && c.In.H == 0 {
			c.In.W, c.In.H = 320, 240
		}
		c.In.Format = pix.RGB565
		return nil
	}

	if c.In.Format == pix.FormatUnknown {
		c.In.Format = pix.GuessFormat(c.InPath)
	}
	if c.In.W == 0 && c.In.H == 0 {
		if fi, err := os.Stat(c.InPath); err == nil {
			if w, h, ok := pix.GuessSize(c.In.Format, fi.Size()); ok {
				c.In.W, c.In.H = w, h
			}
		}
	}

	var errs []error
	if c.In.Format == pix.FormatUnknown {
		errs = append(errs, errors.New("input colorspace unspecified"))
	}
	if c.In.W == 0 {
		errs = append(errs, errors.New("input width unspecified"))
	}
	if c.In.H == 0 {
		errs = append(errs, errors.New("input height unspecified"))
	}
	return errors.Join(errs...)
}

// Run drives the render loop until the key channel delivers a quit, the
// channel closes, or a re-read hits end of file. A nil key channel renders
// exactly once.
func (c *Config) Run(sess veu.Session, disp display.Display, alloc dmabuf.Allocator, keys <-chan input.Key, logger *slog.Logger) error {
	size, err := c.In.Size()
	if err != nil {
		return fmt.Errorf("input frame size: %w", err)
	}
	buf, err := alloc.Alloc(size, dmabuf.DefaultAlign)
	if err != nil {
		return fmt.Errorf("source buffer: %w", err)
	}
	defer alloc.Free(buf)

	src := c.In
	src.Data = buf.Bytes()

	var in *os.File
	if c.InPath != "" {
		in, err = os.Open(c.InPath)
		if err != nil {
			return fmt.Errorf("unable to open input file %s: %w", c.InPath, err)
		}
		defer in.Close()
	} else {
		drawTestImage(&src)
	}

	state := NewState()
	readArmed := in != nil
	for {
		if readArmed {
			readArmed = false
			if _, rerr := io.ReadFull(in, src.Data); rerr != nil {
				if rerr == io.EOF {
					break
				}
				// Keep rendering whatever data is in the buffer.
				logger.Error("error reading input file", "path", c.InPath, "error", rerr)
			}
		}

		c.render(sess, disp, &state, &src, logger)

		if keys == nil {
			return nil
		}
		k, ok := <-keys
		if !ok {
			return nil
		}
		logger.Debug("key", "key", k.String())
		quit, reload := state.Apply(k)
		if quit {
			return nil
		}
		if reload && in != nil {
			readArmed = true
		}
	}
	return nil
}

// render draws one frame: clear, scaled blit at the pan offset, flip.
func (c *Config) render(sess veu.Session, disp display.Display, state *State, src *pix.Surface, logger *slog.Logger) {
	back := disp.Back()
	clear(back.Data)

	w := int(float64(src.W) * state.Zoom)
	h := int(float64(src.H) * state.Zoom)
	if w <= 0 || h <= 0 {
		logger.Debug("skipping blit of degenerate rectangle", "w", w, "h", h, "zoom", state.Zoom)
	} else {
		sel := veu.Rect{X: state.PanX, Y: state.PanY, W: w, H: h}
		if err := runBlit(sess, src, back, &sel); err != nil {
			logger.Error("transform failed", "error", err)
			metrics.TransformErrors.Inc()
		}
	}

	if err := disp.Flip(); err != nil {
		logger.Error("display flip failed", "error", err)
	}
}

func runBlit(sess veu.Session, src, dst *pix.Surface, sel *veu.Rect) error {
	if err := sess.Setup(src, dst, sel); err != nil {
		return err
	}
	if err := sess.Start(); err != nil {
		return err
	}
	return sess.Wait()
}
