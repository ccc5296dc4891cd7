package force

import (
	"math"
	"math/rand/v2"
)

// DefaultCharge is the default many-body strength.
const DefaultCharge = -30

// ManyBody applies pairwise charge between all bodies. Negative strengths
// repel. The sum is exact, which is fine for diagrams of a few hundred
// elements.
type ManyBody struct {
	Strength    float64
	DistanceMin float64
	DistanceMax float64

	bodies []Body
	rnd    *rand.Rand
}

// NewManyBody creates a many-body force with the given strength.
func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{Strength: strength, DistanceMin: 1, DistanceMax: math.Inf(1)}
}

// Initialize implements Force.
func (m *ManyBody) Initialize(bodies []Body, rnd *rand.Rand) {
	m.bodies = bodies
	m.rnd = rnd
}

// Apply implements Force.
func (m *ManyBody) Apply(alpha float64) {
	min2 := m.DistanceMin * m.DistanceMin
	max2 := m.DistanceMax * m.DistanceMax
	for i := range m.bodies {
		bi := &m.bodies[i]
		for j := range m.bodies {
			if i == j {
				continue
			}
			bj := &m.bodies[j]
			x := bj.Pos.X - bi.Pos.X
			y := bj.Pos.Y - bi.Pos.Y
			l := x*x + y*y
			if l >= max2 {
				continue
			}
			if x == 0 {
				x = jiggle(m.rnd)
				l += x * x
			}
			if y == 0 {
				y = jiggle(m.rnd)
				l += y * y
			}
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			w := m.Strength * alpha / l
			bi.Vel.X += x * w
			bi.Vel.Y += y * w
		}
	}
}
