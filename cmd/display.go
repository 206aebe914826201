package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veukit/veuctl/internal/config"
	"github.com/veukit/veuctl/internal/display"
	"github.com/veukit/veuctl/internal/dmabuf"
	"github.com/veukit/veuctl/internal/events"
	"github.com/veukit/veuctl/internal/input"
	"github.com/veukit/veuctl/internal/logging"
	"github.com/veukit/veuctl/internal/pix"
	"github.com/veukit/veuctl/internal/veu"
	"github.com/veukit/veuctl/internal/view"
)

// CreateDisplayCmd creates the display command.
func CreateDisplayCmd() *cobra.Command {
	var (
		inFormat string
		inSize   string
		fbPath   string
		headless bool
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "display [infile]",
		Short: "Show a raw video frame on the framebuffer with zoom and pan",
		Long: `Displays a raw video frame scaled to the framebuffer. Without an input ` +
			`file a built-in test image is shown. Keys: +/- zoom, arrows pan, ` +
			`= resets, space advances to the next frame in the file, q quits.`,
		Args: cobra.RangeArgs(0, 1),
		Run: func(_ *cobra.Command, args []string) {
			logger := logging.GetLogger("display")

			cfg := &view.Config{}
			if len(args) == 1 {
				cfg.InPath = args[0]
			}
			parseSurface(&cfg.In, inFormat, inSize, "input")

			if err := cfg.Resolve(); err != nil {
				logger.Error("Incomplete display parameters", "error", err)
				os.Exit(1)
			}
			printSurface("Input", &cfg.In)

			disp, err := openDisplay(fbPath, headless, &cfg.In)
			if err != nil {
				logger.Error("Failed to open display", "error", err)
				os.Exit(1)
			}
			defer disp.Close()
			fmt.Printf("Display:\t%dx%d\n", disp.Width(), disp.Height())

			sess, err := veu.Open(logging.GetLogger("veu"))
			if err != nil {
				logger.Error("Failed to open transform engine", "error", err)
				os.Exit(1)
			}
			defer sess.Close()

			bus := events.New()
			keys := wireKeys(bus, headless, logger)

			if watch && cfg.InPath != "" {
				watcher := config.NewFileWatcher(
					cfg.InPath,
					func(path string) (string, error) { return path, nil },
					logger,
					config.WithDebounce[string](300*time.Millisecond),
				)
				watcher.OnReload(func(path string) {
					bus.Publish(events.SourceChangedEvent{Path: path})
				})
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Failed to watch input file, reload on change disabled", "error", startErr)
				} else {
					defer func() { _ = watcher.Stop() }()
				}
			}

			alloc := dmabuf.New()
			if err := cfg.Run(sess, disp, alloc, keys, logger); err != nil {
				logger.Error("Display loop failed", "error", err)
				os.Exit(1)
			}
			if closeErr := alloc.Close(); closeErr != nil {
				logger.Warn("Buffer allocator reported leaks", "error", closeErr)
			}
		},
	}

	cmd.Flags().StringVarP(&inFormat, "input-colorspace", "c", "",
		"Input colorspace (RGB565, RGB888, RGBx888, YCbCr420, YCbCr422)")
	cmd.Flags().StringVarP(&inSize, "input-size", "s", "",
		"Input size (qcif, cif, qvga, vga, d1, 720p)")
	cmd.Flags().StringVar(&fbPath, "fb", "/dev/fb0", "Framebuffer device")
	cmd.Flags().BoolVar(&headless, "headless", false, "Render one frame to an in-memory display and exit")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the frame when the input file changes")

	return cmd
}

// openDisplay picks the output surface: the framebuffer normally, an
// in-memory display sized to the source in headless mode.
func openDisplay(fbPath string, headless bool, in *pix.Surface) (display.Display, error) {
	if headless {
		return display.NewMemory(in.W, in.H), nil
	}
	return display.OpenFramebuffer(fbPath)
}

// wireKeys connects terminal input to the event bus and returns the key
// channel the render loop consumes. Everything flows through the bus so
// file-watch reloads and key presses arrive on the same channel. Returns
// nil (render once and exit) in headless mode or without a terminal.
func wireKeys(bus *events.Bus, headless bool, logger logging.Logger) <-chan input.Key {
	if headless {
		return nil
	}

	term, err := input.NewTerminal(logging.GetLogger("input"))
	if err != nil {
		if errors.Is(err, input.ErrNotATerminal) {
			logger.Warn("No terminal on stdin, rendering a single frame")
		} else {
			logger.Warn("Failed to set up terminal input", "error", err)
		}
		return nil
	}

	keys := make(chan input.Key, 16)
	unsubKeys := bus.Subscribe(func(ev events.KeyPressedEvent) {
		keys <- ev.Key
	})
	unsubSource := bus.Subscribe(func(ev events.SourceChangedEvent) {
		logger.Info("Input file changed, reloading", "path", ev.Path)
		keys <- input.KeyReload
	})

	go func() {
		defer term.Close()
		for k := range term.Keys() {
			bus.Publish(events.KeyPressedEvent{Key: k})
		}
		// Dispatch is asynchronous: a delivery can still be in flight after
		// the last Publish returns, so the channel is never closed. Stop
		// forwarding, then send a final quit directly in case the terminal
		// stream ended without one (stdin EOF).
		unsubKeys()
		unsubSource()
		keys <- input.KeyQuit
	}()
	return keys
}
