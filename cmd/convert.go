package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veukit/veuctl/internal/convert"
	"github.com/veukit/veuctl/internal/dmabuf"
	"github.com/veukit/veuctl/internal/events"
	"github.com/veukit/veuctl/internal/logging"
	"github.com/veukit/veuctl/internal/metrics"
	"github.com/veukit/veuctl/internal/pix"
	"github.com/veukit/veuctl/internal/veu"
)

// CreateConvertCmd creates the convert command.
func CreateConvertCmd() *cobra.Command {
	var (
		inFormat    string
		inSize      string
		outFormat   string
		outSize     string
		outPath     string
		rotate      bool
		noProgress  bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "convert <infile> [outfile]",
		Short: "Convert raw video frames between colorspaces and sizes",
		Long: `Reads raw video frames from a file (or stdin when the name is "-"), ` +
			`runs each frame through the scaler and writes the result out. ` +
			`Colorspace and size are guessed from the file extension and length where possible; ` +
			`unknown parameters must be given explicitly.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(_ *cobra.Command, args []string) {
			logger := logging.GetLogger("convert")

			cfg := &convert.Config{
				InPath:   args[0],
				OutPath:  outPath,
				Rotate:   rotate,
				Progress: !noProgress,
			}
			if len(args) == 2 {
				cfg.OutPath = args[1]
			}

			parseSurface(&cfg.In, inFormat, inSize, "input")
			parseSurface(&cfg.Out, outFormat, outSize, "output")

			if err := cfg.Resolve(); err != nil {
				logger.Error("Incomplete conversion parameters", "error", err)
				os.Exit(1)
			}

			printSurface("Input", &cfg.In)
			printSurface("Output", &cfg.Out)
			if rotate {
				fmt.Printf("Rotation:\t%s\n", veu.Rot90)
			}

			if metricsAddr != "" {
				metrics.Serve(metricsAddr, logging.GetLogger("metrics"))
			}

			bus := events.New()
			bus.Subscribe(func(ev events.FrameProcessedEvent) {
				logger.Debug("Frame processed", "frame", ev.Frame, "bytes", ev.Bytes)
			})
			cfg.Bus = bus

			sess, err := veu.Open(logging.GetLogger("veu"))
			if err != nil {
				logger.Error("Failed to open transform engine", "error", err)
				os.Exit(1)
			}
			defer sess.Close()

			alloc := dmabuf.New()
			frames, err := cfg.Run(sess, alloc, logger)
			if err != nil {
				logger.Error("Conversion failed", "error", err)
				os.Exit(1)
			}
			if closeErr := alloc.Close(); closeErr != nil {
				logger.Warn("Buffer allocator reported leaks", "error", closeErr)
			}

			fmt.Printf("Frames:\t\t%d\n", frames)
		},
	}

	cmd.Flags().StringVarP(&inFormat, "input-colorspace", "c", "",
		"Input colorspace (RGB565, RGB888, RGBx888, YCbCr420, YCbCr422)")
	cmd.Flags().StringVarP(&inSize, "input-size", "s", "",
		"Input size (qcif, cif, qvga, vga, d1, 720p)")
	cmd.Flags().StringVarP(&outFormat, "output-colorspace", "C", "", "Output colorspace")
	cmd.Flags().StringVarP(&outSize, "output-size", "S", "", "Output size")
	cmd.Flags().StringVarP(&outPath, "output", "o", "",
		"Output file (\"-\" for stdout; output is discarded when unset and no outfile argument is given)")
	cmd.Flags().BoolVarP(&rotate, "rotate", "r", false, "Rotate the image 90 degrees clockwise")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

// parseSurface applies the colorspace and size flags to a surface,
// exiting with a usage error on malformed values. Empty flags leave the
// surface untouched for the guessing logic.
func parseSurface(s *pix.Surface, format, size, which string) {
	if format != "" {
		f, ok := pix.ParseFormat(format)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown %s colorspace %q\n", which, format)
			os.Exit(1)
		}
		s.Format = f
	}
	if size != "" {
		w, h, ok := pix.ParseSize(size)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown %s size %q\n", which, size)
			os.Exit(1)
		}
		s.W, s.H = w, h
	}
}

// printSurface prints one side of the conversion the way the scaler
// reports geometry, with the preset name when the size matches one.
func printSurface(label string, s *pix.Surface) {
	fmt.Printf("%s colorspace:\t%s\n", label, s.Format)
	if name := pix.PresetName(s.W, s.H); name != "" {
		fmt.Printf("%s size:\t%dx%d (%s)\n", label, s.W, s.H, name)
	} else {
		fmt.Printf("%s size:\t%dx%d\n", label, s.W, s.H)
	}
}
