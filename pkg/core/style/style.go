package style

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/fishbone/pkg/errors"
)

// DefaultBackground fills node backgrounds whose style leaves it unset.
const DefaultBackground = "#00b3f6"

// LineStyle styles the links of one depth.
type LineStyle struct {
	Color         string  `toml:"color" json:"color"`
	StrokeWidthPx float64 `toml:"stroke_width_px" json:"stroke_width_px"`
}

// NodeStyle styles the labels of one depth.
type NodeStyle struct {
	Color           string  `toml:"color" json:"color"`
	FontSizeEm      float64 `toml:"font_size_em" json:"font_size_em"`
	BackgroundColor string  `toml:"background_color,omitempty" json:"background_color,omitempty"`
	BorderRadius    float64 `toml:"border_radius,omitempty" json:"border_radius,omitempty"`
	Padding         float64 `toml:"padding,omitempty" json:"padding,omitempty"`
}

// Background returns the background colour, falling back to DefaultBackground.
func (s NodeStyle) Background() string {
	if s.BackgroundColor == "" {
		return DefaultBackground
	}
	return s.BackgroundColor
}

// Config is the complete styling of a diagram.
type Config struct {
	Lines []LineStyle `toml:"lines" json:"lines"`
	Nodes []NodeStyle `toml:"nodes" json:"nodes"`
}

// Defaults returns the stock palette: three blue line weights and five
// label sizes.
func Defaults() Config {
	return Config{
		Lines: []LineStyle{
			{Color: "#00b3f6", StrokeWidthPx: 2},
			{Color: "#00b3f6", StrokeWidthPx: 1},
			{Color: "#00b3f6", StrokeWidthPx: 0.5},
		},
		Nodes: []NodeStyle{
			{Color: "white", FontSizeEm: 2},
			{Color: "white", FontSizeEm: 1.5},
			{Color: "black", FontSizeEm: 1},
			{Color: "#00b3f6", FontSizeEm: 0.8},
			{Color: "#aaa", FontSizeEm: 0.8},
		},
	}
}

// Validate checks that both tables are non-empty and that sizes are positive.
func (c Config) Validate() error {
	if len(c.Lines) == 0 {
		return errors.Configuration("line style table must have at least one entry")
	}
	if len(c.Nodes) == 0 {
		return errors.Configuration("node style table must have at least one entry")
	}
	for i, l := range c.Lines {
		if l.StrokeWidthPx <= 0 {
			return errors.Configuration("lines[%d]: stroke_width_px must be positive", i)
		}
	}
	for i, n := range c.Nodes {
		if n.FontSizeEm <= 0 {
			return errors.Configuration("nodes[%d]: font_size_em must be positive", i)
		}
	}
	return nil
}

// Resolved is a validated Config with clamped lookups.
type Resolved struct {
	Lines Table[LineStyle]
	Nodes Table[NodeStyle]
}

// Resolve validates c and builds its lookup tables.
func (c Config) Resolve() (Resolved, error) {
	if err := c.Validate(); err != nil {
		return Resolved{}, err
	}
	lines, err := NewTable(c.Lines)
	if err != nil {
		return Resolved{}, err
	}
	nodes, err := NewTable(c.Nodes)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Lines: lines, Nodes: nodes}, nil
}

// Line returns the line style for a link depth.
func (r Resolved) Line(depth int) LineStyle { return r.Lines.At(depth) }

// Node returns the node style for a node depth.
func (r Resolved) Node(depth int) NodeStyle { return r.Nodes.At(depth) }

// Decode reads a TOML style document. Tables missing from the document are
// taken from Defaults; tables present but empty are rejected by Validate.
func Decode(r io.Reader) (Config, error) {
	var raw struct {
		Lines *[]LineStyle `toml:"lines"`
		Nodes *[]NodeStyle `toml:"nodes"`
	}
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfiguration, err, "decode styles")
	}

	cfg := Defaults()
	if raw.Lines != nil {
		cfg.Lines = *raw.Lines
	}
	if raw.Nodes != nil {
		cfg.Nodes = *raw.Nodes
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a TOML style document from path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
