// Package convert implements the batch pipeline: read raw frames from a
// file or stream, push them through the transform engine, and write the
// result out. All knobs live in an explicit Config; the package keeps no
// state between runs.
package convert

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/veukit/veuctl/internal/dmabuf"
	"github.com/veukit/veuctl/internal/events"
	"github.com/veukit/veuctl/internal/metrics"
	"github.com/veukit/veuctl/internal/pix"
	"github.com/veukit/veuctl/internal/veu"
)

// Config describes one conversion run. In and Out carry format and
// geometry; unset fields are filled in by Resolve.
type Config struct {
	InPath  string // "-" for stdin
	OutPath string // "" discards output, "-" for stdout
	In, Out pix.Surface
	Rotate  bool

	// Progress enables a progress bar on stderr when the input is a
	// regular file.
	Progress bool

	// Bus, when set, receives a FrameProcessedEvent per frame.
	Bus *events.Bus
}

// Resolve fills unset configuration fields from filename and file-size
// heuristics, then checks that everything needed is known. Explicit values
// are never overwritten. All missing fields are reported in one error so
// the user sees the full list before the run aborts.
func (c *Config) Resolve() error {
	if c.In.Format == pix.FormatUnknown {
		c.In.Format = pix.GuessFormat(c.InPath)
	}
	if c.Out.Format == pix.FormatUnknown {
		c.Out.Format = pix.GuessFormat(c.OutPath)
	}
	// No conversion by default.
	if c.Out.Format == pix.FormatUnknown {
		c.Out.Format = c.In.Format
	}

	if c.In.W == 0 && c.In.H == 0 && c.InPath != "" && c.InPath != "-" {
		if fi, err := os.Stat(c.InPath); err == nil {
			if w, h, ok := pix.GuessSize(c.In.Format, fi.Size()); ok {
				c.In.W, c.In.H = w, h
			}
		}
	}

	// No rescaling by default; rotation swaps the destination dimensions.
	if c.Out.W == 0 && c.Out.H == 0 {
		if c.Rotate {
			c.Out.W, c.Out.H = c.In.H, c.In.W
		} else {
			c.Out.W, c.Out.H = c.In.W, c.In.H
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
	if c.Out.Format == pix.FormatUnknown {
		errs = append(errs, errors.New("output colorspace unspecified"))
	}
	if c.Out.W == 0 {
		errs = append(errs, errors.New("output width unspecified"))
	}
	if c.Out.H == 0 {
		errs = append(errs, errors.New("output height unspecified"))
	}
	return errors.Join(errs...)
}

// Run executes the conversion loop and returns the number of frames
// processed. Resource failures (buffers, files) are fatal; per-frame read,
// write and transform errors are logged and counted but do not stop the
// loop.
func (c *Config) Run(sess veu.Session, alloc dmabuf.Allocator, logger *slog.Logger) (int, error) {
	inSize, err := c.In.Size()
	if err != nil {
		return 0, fmt.Errorf("input frame size: %w", err)
	}
	outSize, err := c.Out.Size()
	if err != nil {
		return 0, fmt.Errorf("output frame size: %w", err)
	}

	srcBuf, err := alloc.Alloc(inSize, dmabuf.DefaultAlign)
	if err != nil {
		return 0, fmt.Errorf("source buffer: %w", err)
	}
	defer alloc.Free(srcBuf)
	dstBuf, err := alloc.Alloc(outSize, dmabuf.DefaultAlign)
	if err != nil {
		return 0, fmt.Errorf("destination buffer: %w", err)
	}
	defer alloc.Free(dstBuf)

	src := c.In
	src.Data = srcBuf.Bytes()
	dst := c.Out
	dst.Data = dstBuf.Bytes()

	in, inClose, err := openInput(c.InPath)
	if err != nil {
		return 0, err
	}
	defer inClose()

	out, outFlush, err := openOutput(c.OutPath)
	if err != nil {
		return 0, err
	}
	defer outFlush()

	bar := c.progressBar(inSize)

	frames := 0
	for {
		n, rerr := io.ReadFull(in, src.Data)
		if rerr == io.EOF {
			break
		}
		if errors.Is(rerr, io.ErrUnexpectedEOF) {
			// A short read at end of stream is a trailing partial frame,
			// not an error: stop quietly without counting it.
			logger.Debug("discarding partial trailing frame", "path", c.InPath, "bytes", n)
			break
		}
		if rerr != nil {
			// Failed read mid-stream: skip the frame but keep trying; the
			// stream may recover or hit a clean EOF.
			logger.Error("error reading input", "path", c.InPath, "frame", frames, "error", rerr)
			metrics.ReadErrors.Inc()
			continue
		}

		start := time.Now()
		var terr error
		if c.Rotate {
			terr = sess.Rotate(&src, &dst, veu.Rot90)
		} else {
			terr = sess.Resize(&src, &dst)
		}
		metrics.TransformDuration.Observe(time.Since(start).Seconds())
		if terr != nil {
			logger.Error("transform failed", "frame", frames, "error", terr)
			metrics.TransformErrors.Inc()
		}

		if out != nil {
			if n, werr := out.Write(dst.Data); werr != nil || n != outSize {
				logger.Error("error writing output", "path", c.OutPath, "frame", frames,
					"written", n, "expected", outSize, "error", werr)
				metrics.WriteErrors.Inc()
			}
		}

		frames++
		metrics.FramesProcessed.Inc()
		if bar != nil {
			_ = bar.Add(1)
		}
		if c.Bus != nil {
			c.Bus.Publish(events.FrameProcessedEvent{Frame: frames, Bytes: outSize})
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return frames, nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open input file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open output file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

// progressBar builds a frame-count progress bar when the input size is
// known up front. Stderr keeps it out of piped output.
func (c *Config) progressBar(frameSize int) *progressbar.ProgressBar {
	if !c.Progress || c.InPath == "" || c.InPath == "-" {
		return nil
	}
	fi, err := os.Stat(c.InPath)
	if err != nil || !fi.Mode().IsRegular() || frameSize <= 0 {
		return nil
	}
	total := fi.Size() / int64(frameSize)
	if total <= 0 {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
