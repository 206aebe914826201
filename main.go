package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/veukit/veuctl/cmd"
	"github.com/veukit/veuctl/internal/config"
	"github.com/veukit/veuctl/internal/logging"
	"github.com/veukit/veuctl/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingConvert string `help:"Converter logging level" toml:"logging.convert" env:"LOGGING_CONVERT"`
	LoggingDisplay string `help:"Display logging level" toml:"logging.display" env:"LOGGING_DISPLAY"`
	LoggingVeu     string `help:"Transform engine logging level" toml:"logging.veu" env:"LOGGING_VEU"`
	LoggingInput   string `help:"Keyboard input logging level" toml:"logging.input" env:"LOGGING_INPUT"`
}

func main() {
	opts := &Options{}

	root := &cobra.Command{
		Use:     "veuctl",
		Short:   "Raw video frame conversion and display tools",
		Long:    `veuctl converts raw video frames between colorspaces and sizes, and shows frames on the framebuffer with interactive zoom and pan.`,
		Version: version.String(),
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			// Load configuration with CLI > env > TOML precedence
			if loadErr := config.LoadConfig(opts, c); loadErr != nil {
				slog.Warn("Failed to load config", "error", loadErr)
			}

			logging.Initialize(logging.Config{
				Level:  opts.LoggingLevel,
				Format: opts.LoggingFormat,
				Modules: map[string]string{
					"convert": opts.LoggingConvert,
					"display": opts.LoggingDisplay,
					"veu":     opts.LoggingVeu,
					"input":   opts.LoggingInput,
				},
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.Config, "config", "", "Path to configuration file")
	pf.StringVar(&opts.LoggingLevel, "logging-level", "info", "Global logging level (debug, info, warn, error)")
	pf.StringVar(&opts.LoggingFormat, "logging-format", "text", "Logging format (text, json)")
	pf.StringVar(&opts.LoggingConvert, "logging-convert", "info", "Converter logging level")
	pf.StringVar(&opts.LoggingDisplay, "logging-display", "info", "Display logging level")
	pf.StringVar(&opts.LoggingVeu, "logging-veu", "info", "Transform engine logging level")
	pf.StringVar(&opts.LoggingInput, "logging-input", "info", "Keyboard input logging level")

	root.AddCommand(cmd.CreateConvertCmd())
	root.AddCommand(cmd.CreateDisplayCmd())
	root.AddCommand(cmd.CreateVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
