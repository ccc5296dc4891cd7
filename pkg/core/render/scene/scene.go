// Package scene converts a resolved layout frame into a renderer-agnostic
// draw list.
//
// [Build] is a pure function: the same frame, styles and options always
// produce the same [Scene]. Sinks in the sibling sink package turn scenes
// into SVG, JSON or Graphviz documents.
package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/style"
)

// BasePx is the pixel size of 1em used to convert em offsets.
const BasePx = 16

// Scene is a complete drawing.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Marker Marker  `json:"marker"`
	Lines  []Line  `json:"lines"`
	Nodes  []Mark  `json:"nodes"`
}

// Marker is the arrowhead attached to arrow links.
type Marker struct {
	ID          string  `json:"id"`
	Size        float64 `json:"size"`
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Line is one drawn link.
type Line struct {
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Depth       int     `json:"depth"`
	Class       string  `json:"class"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Arrow       bool    `json:"arrow,omitempty"`
}

// ShapeKind selects the background geometry of a label.
type ShapeKind string

const (
	ShapeCircle ShapeKind = "circle"
	ShapeRect   ShapeKind = "rect"
)

// Shape is a label background, relative to the node position.
type Shape struct {
	Kind        ShapeKind `json:"kind"`
	Class       string    `json:"class"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"`
	R           float64   `json:"r,omitempty"`
	Rx          float64   `json:"rx,omitempty"`
	Fill        string    `json:"fill"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
}

// Text is a label, anchored at the node position.
type Text struct {
	Content    string  `json:"content"`
	Class      string  `json:"class"`
	Anchor     string  `json:"anchor"`
	DY         string  `json:"dy"`
	FontSizeEm float64 `json:"font_size_em"`
	Color      string  `json:"color"`
}

// Mark is one drawn node.
type Mark struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Depth      int     `json:"depth"`
	Class      string  `json:"class"`
	Pinned     bool    `json:"pinned,omitempty"`
	Background *Shape  `json:"background,omitempty"`
	Text       Text    `json:"text"`
}

// Option configures Build.
type Option func(*options)

type options struct {
	markerID string
}

// WithMarkerID fixes the arrow marker id. By default every scene gets a
// fresh "arrow-<uuid>" id so several diagrams can share one HTML page.
func WithMarkerID(id string) Option {
	return func(o *options) { o.markerID = id }
}

// Build draws frame with styles.
func Build(f layout.Frame, styles style.Resolved, opts ...Option) Scene {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.markerID == "" {
		o.markerID = "arrow-" + uuid.NewString()
	}

	g := f.Graph
	s := Scene{
		Width:  f.Viewport.Width,
		Height: f.Viewport.Height,
		Marker: Marker{
			ID:          o.markerID,
			Size:        20,
			Radius:      10,
			Fill:        "rgba(255, 255, 255, 0.5)",
			Stroke:      "#ffbd00",
			StrokeWidth: 3,
		},
		Lines: make([]Line, 0, len(g.Links)),
		Nodes: make([]Mark, 0, len(g.Nodes)),
	}

	for _, l := range g.Links {
		src, tgt := f.Position(l.Source), f.Position(l.Target)
		ls := styles.Line(l.Depth)
		s.Lines = append(s.Lines, Line{
			X1: src.X, Y1: src.Y, X2: tgt.X, Y2: tgt.Y,
			Depth:       l.Depth,
			Class:       fmt.Sprintf("link link-%d", l.Depth),
			Stroke:      ls.Color,
			StrokeWidth: ls.StrokeWidthPx,
			Arrow:       l.Arrow,
		})
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Tail {
			continue
		}
		s.Nodes = append(s.Nodes, mark(n, f, styles.Node(n.Depth)))
	}
	return s
}

func mark(n *fishbone.Node, f layout.Frame, ns style.NodeStyle) Mark {
	p := f.Nodes[n.ID]
	pinned := f.Pinned[n.ID]

	class := "node"
	if n.Root {
		class += " root"
	}
	if pinned {
		class += " fixed"
	}

	text := Text{
		Content:    n.Name,
		Class:      fmt.Sprintf("label-%d", n.Depth),
		Anchor:     textAnchor(n),
		DY:         textDY(n),
		FontSizeEm: ns.FontSizeEm,
		Color:      ns.Color,
	}
	return Mark{
		ID:         int(n.ID),
		X:          p.X,
		Y:          p.Y,
		Depth:      n.Depth,
		Class:      class,
		Pinned:     pinned,
		Background: background(n, LabelBox(n, f.Labels[n.ID], ns), ns),
		Text:       text,
	}
}
