package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
)

// constrain imposes the fishbone shape on the current positions.
func (s *Simulator) constrain(alpha float64) {
	if s.dragging {
		return
	}

	k := constraintGain * alpha
	w, h, m := s.viewport.Width, s.viewport.Height, s.margin

	for i := range s.graph.Nodes {
		n := &s.graph.Nodes[i]
		b := s.sim.Body(i)
		if b.Pinned() {
			continue
		}

		if n.Root {
			b.Pos.X = w - (m + s.sizes[i].Width)
		}
		if n.Tail {
			b.Pos = r2.Vec{X: m, Y: h / 2}
		}
		if n.Depth == 1 {
			if n.Region == fishbone.RegionTop {
				b.Pos.Y = m
			} else {
				b.Pos.Y = h - m
			}
			b.Pos.X -= ribPush * k
		}
		if n.Vertical() {
			b.Pos.Y += k * float64(n.Region)
		}
		if n.Depth > 0 {
			b.Pos.X -= k
		}
	}

	nn := len(s.graph.Nodes)
	for j := range s.graph.Connectors {
		c := &s.graph.Connectors[j]
		a := s.sim.Body(s.body(c.Between[0])).Pos
		bp := s.sim.Body(s.body(c.Between[1])).Pos
		s.sim.Body(nn + j).Pos = Interpolate(a, bp, c.ChildIdx, c.MaxChildIdx)
	}
}

// Interpolate places slot c of m+1 on the segment from a to b:
// b - (1+c)(b-a)/(m+1). Slot 0 is one step from b; slot m lands on a.
func Interpolate(a, b r2.Vec, c, m int) r2.Vec {
	f := float64(1+c) / float64(m+1)
	return r2.Sub(b, r2.Scale(f, r2.Sub(b, a)))
}
