package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fishbone/pkg/core/render/scene"
)

// pointsPerPx converts layout pixels to Graphviz points.
const pointsPerPx = 72.0 / 96.0

// ToDOT converts a scene into an undirected Graphviz graph with every node
// pinned at its resolved position. Connectors become invisible points so
// the bones keep their joints.
func ToDOT(s scene.Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph fishbone {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", margin=\"0.08,0.04\"];\n")
	buf.WriteString("\n")

	// Graphviz y grows upward.
	flip := func(y float64) float64 { return (s.Height - y) * pointsPerPx }

	for _, m := range s.Nodes {
		fill := "transparent"
		if m.Background != nil {
			fill = m.Background.Fill
		}
		fmt.Fprintf(&buf, "  n%d [label=%q, pos=\"%.2f,%.2f!\", fillcolor=%q, fontcolor=%q, fontsize=%.1f];\n",
			m.ID, m.Text.Content, m.X*pointsPerPx, flip(m.Y), fill, m.Text.Color, m.Text.FontSizeEm*scene.BasePx*pointsPerPx)
	}

	buf.WriteString("\n")
	for i, l := range s.Lines {
		if l.Arrow {
			continue
		}
		fmt.Fprintf(&buf, "  p%da [shape=point, width=0.01, style=invis, pos=\"%.2f,%.2f!\"];\n", i, l.X1*pointsPerPx, flip(l.Y1))
		fmt.Fprintf(&buf, "  p%db [shape=point, width=0.01, style=invis, pos=\"%.2f,%.2f!\"];\n", i, l.X2*pointsPerPx, flip(l.Y2))
		fmt.Fprintf(&buf, "  p%da -- p%db [color=%q, penwidth=%g];\n", i, i, l.Stroke, l.StrokeWidth)
	}
	for i, l := range s.Lines {
		if !l.Arrow {
			continue
		}
		fmt.Fprintf(&buf, "  q%da [shape=point, width=0.01, style=invis, pos=\"%.2f,%.2f!\"];\n", i, l.X1*pointsPerPx, flip(l.Y1))
		fmt.Fprintf(&buf, "  q%db [shape=circle, width=0.12, style=filled, fillcolor=%q, color=%q, label=\"\", pos=\"%.2f,%.2f!\"];\n",
			i, "#ffffff80", "#ffbd00", l.X2*pointsPerPx, flip(l.Y2))
		fmt.Fprintf(&buf, "  q%da -- q%db [color=%q, penwidth=%g];\n", i, i, l.Stroke, l.StrokeWidth)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderGraphviz lays out dot with the neato engine, which honours pinned
// positions, and returns SVG.
func RenderGraphviz(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, which carries pt
// units and a transform-dependent viewBox, with a plain pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
