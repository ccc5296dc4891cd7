// Package cli implements the fishbone command-line interface.
//
// # Commands
//
//   - render: tree file → SVG, JSON, DOT, PDF or PNG in one step
//   - layout: tree file → resolved layout document
//   - visualize: layout document → rendered outputs
//   - watch: run the simulation live in the terminal
//   - serve: HTTP render service
//   - cache: inspect or clear the local result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the CLI value and is attached to command contexts.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/buildinfo"
	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/core/style"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "fishbone"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fishbone lays out cause-and-effect diagrams",
		Long:         `Fishbone turns a cause tree into an Ishikawa diagram: a horizontal spine ending at the effect, alternating ribs above and below it, and sub-causes branching off each rib.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(cc), nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/fishbone/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by commands that run the simulation.
type layoutFlags struct {
	styles string
}

func (f *layoutFlags) register(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: fishbone (default), nodelink")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height in pixels")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "distance kept from the frame edge")
	cmd.Flags().Float64Var(&opts.Charge, "charge", opts.Charge, "many-body strength (negative repels)")
	cmd.Flags().BoolVar(&opts.NoCharge, "no-charge", false, "disable many-body repulsion")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for initial jiggle")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", opts.MaxTicks, "upper bound on simulation steps")
	cmd.Flags().StringVar(&f.styles, "styles", "", "TOML style file (default: built-in palette)")
}

// apply loads the style file, if any, into opts.
func (f *layoutFlags) apply(opts *pipeline.Options) error {
	if f.styles == "" {
		return nil
	}
	cfg, err := style.LoadFile(f.styles)
	if err != nil {
		return err
	}
	opts.Styles = &cfg
	return nil
}

// renderFlags are the flags shared by commands that write artifacts.
type renderFlags struct {
	formats string
	output  string
}

func (f *renderFlags) register(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, dot, pdf, png (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.Background, "background", "", "document background colour")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "embed hover and drag styling in SVG output")
}

// setCLIDefaults applies pipeline defaults before flags are registered so
// that --help shows them.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Logger = nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
