package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fishbone/pkg/errors"
)

const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	initialRadius        = 10
)

// DefaultAlphaDecay cools alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Body is a simulated point.
type Body struct {
	Pos r2.Vec
	Vel r2.Vec
	// Pin, when set, holds the body in place.
	Pin *r2.Vec
}

// Pinned reports whether the body is held in place.
func (b *Body) Pinned() bool { return b.Pin != nil }

// Force adjusts body velocities once per tick.
type Force interface {
	// Initialize binds the force to the simulation's bodies. It is called
	// when the force is added.
	Initialize(bodies []Body, rnd *rand.Rand)
	// Apply updates velocities for the given alpha.
	Apply(alpha float64)
}

// Simulation integrates bodies under a set of forces.
type Simulation struct {
	bodies []Body
	forces []namedForce
	rnd    *rand.Rand

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
}

type namedForce struct {
	name  string
	force Force
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed seeds the random source used for jiggling coincident bodies.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithAlphaMin sets the energy below which the simulation is done.
func WithAlphaMin(v float64) Option {
	return func(s *Simulation) { s.alphaMin = v }
}

// WithAlphaDecay sets the per-tick decay rate of alpha.
func WithAlphaDecay(v float64) Option {
	return func(s *Simulation) { s.alphaDecay = v }
}

// WithVelocityDecay sets the fraction of velocity lost per tick.
func WithVelocityDecay(v float64) Option {
	return func(s *Simulation) { s.velocityDecay = v }
}

// New creates a simulation over n bodies placed on a phyllotaxis spiral
// around center.
func New(n int, center r2.Vec, opts ...Option) *Simulation {
	s := &Simulation{
		bodies:        make([]Body, n),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: DefaultVelocityDecay,
	}
	WithSeed(1)(s)
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.bodies {
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		s.bodies[i].Pos = r2.Add(center, r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
	}
	return s
}

// AddForce registers f under name, replacing any force with the same name.
func (s *Simulation) AddForce(name string, f Force) {
	f.Initialize(s.bodies, s.rnd)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// Bodies returns the simulated bodies. Callers may move unpinned bodies
// between ticks.
func (s *Simulation) Bodies() []Body { return s.bodies }

// Body returns the i-th body.
func (s *Simulation) Body(i int) *Body { return &s.bodies[i] }

// Pin holds body i at p.
func (s *Simulation) Pin(i int, p r2.Vec) {
	s.bodies[i].Pin = &p
}

// Unpin releases body i.
func (s *Simulation) Unpin(i int) {
	s.bodies[i].Pin = nil
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the current energy.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaMin returns the stop threshold.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// Restart resets the energy to 1.
func (s *Simulation) Restart() { s.alpha = 1 }

// Done reports whether alpha has decayed below alphaMin.
func (s *Simulation) Done() bool { return s.alpha < s.alphaMin }

// Tick advances the simulation by one step.
func (s *Simulation) Tick() error {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	keep := 1 - s.velocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Pin != nil {
			b.Pos = *b.Pin
			b.Vel = r2.Vec{}
			continue
		}
		b.Vel = r2.Scale(keep, b.Vel)
		b.Pos = r2.Add(b.Pos, b.Vel)
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		if !finite(b.Pos) || !finite(b.Vel) {
			return errors.New(errors.ErrCodeDiverged, "body %d: non-finite state pos=%v vel=%v", i, b.Pos, b.Vel)
		}
	}
	return nil
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func jiggle(rnd *rand.Rand) float64 {
	return (rnd.Float64() - 0.5) * 1e-6
}
