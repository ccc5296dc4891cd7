package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/fishbone/pkg/core/render/scene"
	"github.com/matzehuels/fishbone/pkg/fonts"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	fontFamily string
	embedCSS   bool
}

// WithBackground fills the document with a solid colour.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithFontFamily overrides the label font stack.
func WithFontFamily(family string) SVGOption { return func(r *svgRenderer) { r.fontFamily = family } }

// WithInteractionCSS adds hover styling for links and nodes.
func WithInteractionCSS() SVGOption { return func(r *svgRenderer) { r.embedCSS = true } }

const interactionCSS = `
    .node { cursor: move; }
    .node.fixed text { font-weight: bold; }
    .link { transition: stroke-width 0.2s ease; }
    .link:hover { stroke-width: 3px; }`

// RenderSVG writes s as an SVG document.
func RenderSVG(s scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{fontFamily: fonts.FontFamily}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		s.Width, s.Height, s.Width, s.Height, html.EscapeString(r.fontFamily))

	renderDefs(&buf, s.Marker, r.embedCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}
	for _, l := range s.Lines {
		renderLine(&buf, l, s.Marker.ID)
	}
	for _, m := range s.Nodes {
		renderMark(&buf, m)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, m scene.Marker, css bool) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 %g %g" refX="%g" refY="%g" markerWidth="%g" markerHeight="%g" orient="auto">`+"\n",
		m.ID, m.Size, m.Size, m.Radius, m.Radius, m.Size, m.Size)
	fmt.Fprintf(buf, `      <path d="M%g,%g m-%g,0 a%g,%g 0 1,0 %g,0 a%g,%g 0 1,0 -%g,0" fill="%s" stroke="%s" stroke-width="%g"/>`+"\n",
		m.Radius, m.Radius, m.Radius, m.Radius, m.Radius, 2*m.Radius, m.Radius, m.Radius, 2*m.Radius,
		m.Fill, m.Stroke, m.StrokeWidth)
	buf.WriteString("    </marker>\n")
	if css {
		fmt.Fprintf(buf, "    <style>%s\n    </style>\n", interactionCSS)
	}
	buf.WriteString("  </defs>\n")
}

func renderLine(buf *bytes.Buffer, l scene.Line, markerID string) {
	marker := ""
	if l.Arrow {
		marker = fmt.Sprintf(` marker-end="url(#%s)"`, markerID)
	}
	fmt.Fprintf(buf, `  <line class="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" style="stroke: %s; stroke-width: %gpx"%s/>`+"\n",
		l.Class, l.X1, l.Y1, l.X2, l.Y2, html.EscapeString(l.Stroke), l.StrokeWidth, marker)
}

func renderMark(buf *bytes.Buffer, m scene.Mark) {
	fmt.Fprintf(buf, `  <g class="%s" transform="translate(%.2f,%.2f)">`+"\n", m.Class, m.X, m.Y)
	if bg := m.Background; bg != nil {
		stroke := ""
		if bg.Stroke != "" {
			stroke = fmt.Sprintf("; stroke: %s; stroke-width: %g", html.EscapeString(bg.Stroke), bg.StrokeWidth)
		}
		switch bg.Kind {
		case scene.ShapeCircle:
			fmt.Fprintf(buf, `    <circle class="%s" cx="%.2f" cy="%.2f" r="%.2f" style="fill: %s%s"/>`+"\n",
				bg.Class, bg.X, bg.Y, bg.R, html.EscapeString(bg.Fill), stroke)
		case scene.ShapeRect:
			rx := ""
			if bg.Rx > 0 {
				rx = fmt.Sprintf(` rx="%g"`, bg.Rx)
			}
			fmt.Fprintf(buf, `    <rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s style="fill: %s%s"/>`+"\n",
				bg.Class, bg.X, bg.Y, bg.Width, bg.Height, rx, html.EscapeString(bg.Fill), stroke)
		}
	}
	t := m.Text
	fmt.Fprintf(buf, `    <text class="%s" text-anchor="%s" dy="%s" style="font-size: %gem; fill: %s">%s</text>`+"\n",
		t.Class, t.Anchor, t.DY, t.FontSizeEm, html.EscapeString(t.Color), html.EscapeString(t.Content))
	buf.WriteString("  </g>\n")
}
