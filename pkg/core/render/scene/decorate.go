package scene

import (
	"fmt"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/style"
)

const (
	circlePad  = 4
	defaultPad = 2
)

// Box is a label bounding box relative to the node position.
type Box struct {
	X, Y, Width, Height float64
}

func textAnchor(n *fishbone.Node) string {
	switch {
	case n.Depth == 0:
		return "start"
	case n.Orientation == fishbone.Horizontal:
		return "end"
	default:
		return "middle"
	}
}

// textDY returns the baseline shift in em.
func textDY(n *fishbone.Node) string {
	return fmt.Sprintf("%gem", dyEm(n))
}

func dyEm(n *fishbone.Node) float64 {
	switch {
	case n.Orientation == fishbone.Horizontal:
		return 0.35
	case n.Depth == 1:
		return 1
	default:
		return -0.2
	}
}

// LabelBox positions a measured label around the node anchor the way the
// text is drawn: anchored by textAnchor and shifted down by textDY.
func LabelBox(n *fishbone.Node, size layout.LabelSize, ns style.NodeStyle) Box {
	fontPx := ns.FontSizeEm * BasePx
	baseline := dyEm(n) * fontPx

	x := 0.0
	switch textAnchor(n) {
	case "end":
		x = -size.Width
	case "middle":
		x = -size.Width / 2
	}
	return Box{X: x, Y: baseline - size.Ascent, Width: size.Width, Height: size.Height()}
}

// background decorates a label: a circle for the root, a padded rect for
// other depths, outlined at depth 2 and omitted at depth 3.
func background(n *fishbone.Node, box Box, ns style.NodeStyle) *Shape {
	class := fmt.Sprintf("bg-%d", n.Depth)
	switch n.Depth {
	case 0:
		return &Shape{
			Kind:  ShapeCircle,
			Class: class,
			X:     box.X + box.Width/2,
			Y:     box.Y + box.Height/2,
			R:     max(box.Width, box.Height)/2 + circlePad,
			Fill:  ns.Background(),
		}
	case 3:
		return nil
	}

	pad := float64(defaultPad)
	if ns.Padding > 0 {
		pad = ns.Padding
	}
	s := &Shape{
		Kind:   ShapeRect,
		Class:  class,
		X:      box.X - pad,
		Y:      box.Y - pad,
		Width:  box.Width + 2*pad,
		Height: box.Height + 2*pad,
		Rx:     ns.BorderRadius,
		Fill:   ns.Background(),
	}
	if n.Depth == 2 {
		s.Fill = "white"
		s.Stroke = style.DefaultBackground
		s.StrokeWidth = 2
	}
	return s
}
