package force

import (
	"math"
	"math/rand/v2"
)

// Spring joins two bodies with a rest distance.
type Spring struct {
	Source   int
	Target   int
	Distance float64
}

// Link pulls linked bodies toward their rest distance. Strength and bias
// follow d3: a link is weaker the more links its endpoints carry, and the
// correction is split in favour of the less connected endpoint.
type Link struct {
	springs    []Spring
	Iterations int

	bodies    []Body
	rnd       *rand.Rand
	strengths []float64
	bias      []float64
}

// NewLink creates a link force over springs.
func NewLink(springs []Spring) *Link {
	return &Link{springs: springs, Iterations: 1}
}

// Initialize implements Force.
func (l *Link) Initialize(bodies []Body, rnd *rand.Rand) {
	l.bodies = bodies
	l.rnd = rnd

	count := make([]int, len(bodies))
	for _, s := range l.springs {
		count[s.Source]++
		count[s.Target]++
	}
	l.strengths = make([]float64, len(l.springs))
	l.bias = make([]float64, len(l.springs))
	for i, s := range l.springs {
		cs, ct := count[s.Source], count[s.Target]
		l.strengths[i] = 1 / float64(min(cs, ct))
		l.bias[i] = float64(cs) / float64(cs+ct)
	}
}

// Apply implements Force.
func (l *Link) Apply(alpha float64) {
	for range max(l.Iterations, 1) {
		for i, s := range l.springs {
			src, tgt := &l.bodies[s.Source], &l.bodies[s.Target]
			x := tgt.Pos.X + tgt.Vel.X - src.Pos.X - src.Vel.X
			y := tgt.Pos.Y + tgt.Vel.Y - src.Pos.Y - src.Vel.Y
			if x == 0 {
				x = jiggle(l.rnd)
			}
			if y == 0 {
				y = jiggle(l.rnd)
			}
			d := math.Sqrt(x*x + y*y)
			k := (d - s.Distance) / d * alpha * l.strengths[i]
			x *= k
			y *= k

			b := l.bias[i]
			tgt.Vel.X -= x * b
			tgt.Vel.Y -= y * b
			src.Vel.X += x * (1 - b)
			src.Vel.Y += y * (1 - b)
		}
	}
}

// Springs returns the springs of the force.
func (l *Link) Springs() []Spring { return l.springs }
