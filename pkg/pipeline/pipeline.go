// Package pipeline provides the load → layout → render pipeline for
// fishbone diagrams.
//
// The CLI commands and the HTTP service share this package so that every
// entry point applies the same defaults, validation and caching.
//
// # Stages
//
//  1. Load: read a cause tree from JSON or YAML
//  2. Layout: build the arena graph and run the force simulation to rest
//  3. Render: turn the settled frame into SVG, JSON, DOT, PDF or PNG
//
// Layout and render results are cached under content-derived keys; see
// [github.com/matzehuels/fishbone/pkg/cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	t, err := runner.LoadFile(ctx, "causes.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, t, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/force"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/render/scene"
	"github.com/matzehuels/fishbone/pkg/core/style"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultWidth    = float64(layout.DefaultWidth)
	DefaultHeight   = float64(layout.DefaultHeight)
	DefaultMargin   = float64(layout.DefaultMargin)
	DefaultCharge   = force.DefaultCharge
	DefaultMaxTicks = layout.DefaultMaxTick
	DefaultSeed     = uint64(42)
	DefaultScale    = 2.0
)

// Visualization types.
const (
	// VizTypeFishbone renders the simulated frame directly.
	VizTypeFishbone = "fishbone"
	// VizTypeNodelink hands the settled positions to Graphviz neato.
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeFishbone

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeFishbone: true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is JSON-serialisable so the HTTP
// service accepts the same options as the CLI.
type Options struct {
	// Layout options
	VizType  string        `json:"viz_type,omitempty"`
	Width    float64       `json:"width,omitempty"`
	Height   float64       `json:"height,omitempty"`
	Margin   float64       `json:"margin,omitempty"`
	Charge   float64       `json:"charge,omitempty"`
	NoCharge bool          `json:"no_charge,omitempty"`
	Seed     uint64        `json:"seed,omitempty"`
	MaxTicks int           `json:"max_ticks,omitempty"`
	Styles   *style.Config `json:"styles,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Background  string   `json:"background,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives stage progress. Defaults to a discard logger.
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Tree      *tree.Tree
	TreeHash  string
	Graph     *fishbone.Graph
	Frame     layout.Frame
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	ConnectorCount int
	LinkCount      int
	Ticks          int
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidViz,
			"invalid viz_type: %q (must be one of: %s)", vizType, strings.Join(sortedKeys(ValidVizTypes), ", "))
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills zero layout options with defaults.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Charge == 0 && !o.NoCharge {
		o.Charge = DefaultCharge
	}
	if o.NoCharge {
		o.Charge = 0
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults fills zero render options with defaults.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and validates the result.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := errors.ValidateViewport(o.Width, o.Height); err != nil {
		return err
	}
	if err := errors.ValidateMargin(o.Margin, o.Width, o.Height); err != nil {
		return err
	}
	if o.MaxTicks < 0 {
		return errors.Validation("max_ticks must not be negative, got %d", o.MaxTicks)
	}
	if o.Styles != nil {
		return o.Styles.Validate()
	}
	return nil
}

// ValidateForRender applies all defaults and validates render options.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.Validation("scale must be positive, got %g", o.Scale)
	}
	return nil
}

// StyleConfig returns the configured styles or the defaults.
func (o *Options) StyleConfig() style.Config {
	if o.Styles != nil {
		return *o.Styles
	}
	return style.Defaults()
}

// StylesHash identifies the style configuration in cache keys.
func (o *Options) StylesHash() string {
	data, _ := json.Marshal(o.StyleConfig())
	return cache.Hash(data)[:16]
}

// IsNodelink reports whether the Graphviz renderer is selected.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Margin:     o.Margin,
		Charge:     o.Charge,
		Seed:       o.Seed,
		MaxTicks:   o.MaxTicks,
		StylesHash: o.StylesHash(),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		VizType:    o.VizType,
		Format:     format,
		Background: o.Background,
		StylesHash: o.StylesHash(),
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	if format == FormatSVG {
		opts.Interactive = o.Interactive
	}
	return opts
}

// MarkerID derives a stable arrow marker id from a tree hash so that
// identical inputs render byte-identical documents.
func MarkerID(treeHash string) string {
	if len(treeHash) > 12 {
		treeHash = treeHash[:12]
	}
	return "arrow-" + treeHash
}

// sceneOptions returns the scene options for a run over treeHash.
func sceneOptions(treeHash string) []scene.Option {
	if treeHash == "" {
		return nil
	}
	return []scene.Option{scene.WithMarkerID(MarkerID(treeHash))}
}
