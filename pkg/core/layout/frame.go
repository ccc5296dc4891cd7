package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
)

// Viewport is the drawing area in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the viewport.
func (v Viewport) Center() r2.Vec { return r2.Vec{X: v.Width / 2, Y: v.Height / 2} }

// Clamp limits p to [0, Width] x [0, Height].
func (v Viewport) Clamp(p r2.Vec) r2.Vec {
	return r2.Vec{X: clamp(p.X, 0, v.Width), Y: clamp(p.Y, 0, v.Height)}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// LabelSize is the measured extent of a node label. Ascent and Descent are
// relative to the text baseline.
type LabelSize struct {
	Width   float64 `json:"width"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Height returns Ascent + Descent.
func (s LabelSize) Height() float64 { return s.Ascent + s.Descent }

// Surface is the drawing surface the layout is resolved for.
type Surface interface {
	Viewport() Viewport
	MeasureLabel(n *fishbone.Node) LabelSize
}

// Renderer consumes resolved frames.
type Renderer interface {
	Render(f Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) error

// Render implements Renderer.
func (fn RendererFunc) Render(f Frame) error { return fn(f) }

// Frame is a snapshot of resolved positions.
type Frame struct {
	Graph      *fishbone.Graph `json:"-"`
	Viewport   Viewport        `json:"viewport"`
	Tick       int             `json:"tick"`
	Alpha      float64         `json:"alpha"`
	Nodes      []r2.Vec        `json:"nodes"`
	Connectors []r2.Vec        `json:"connectors"`
	Pinned     []bool          `json:"pinned"`
	Labels     []LabelSize     `json:"labels"`
}

// Position returns the position of the element ref refers to.
func (f *Frame) Position(ref fishbone.EndpointRef) r2.Vec {
	switch ref.Kind {
	case fishbone.EndpointNode:
		return f.Nodes[ref.Index]
	case fishbone.EndpointConnector:
		return f.Connectors[ref.Index]
	default:
		return r2.Vec{}
	}
}

// Bounds returns the bounding box of all node and connector positions.
func (f *Frame) Bounds() (lo, hi r2.Vec) {
	first := true
	visit := func(p r2.Vec) {
		if first {
			lo, hi, first = p, p, false
			return
		}
		lo = r2.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = r2.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	for _, p := range f.Nodes {
		visit(p)
	}
	for _, p := range f.Connectors {
		visit(p)
	}
	return lo, hi
}
