package layout

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/force"
	"github.com/matzehuels/fishbone/pkg/errors"
)

const (
	DefaultMargin  = 50
	DefaultWidth   = 800
	DefaultHeight  = 600
	DefaultMaxTick = 1000

	// constraintGain scales alpha into the per-step drift k.
	constraintGain = 6
	// ribPush multiplies k for the leftward push on ribs.
	ribPush = 5
)

// Simulator resolves positions for one graph. It is not safe for concurrent
// use; a single host loop owns it.
type Simulator struct {
	graph    *fishbone.Graph
	surface  Surface
	renderer Renderer
	logger   *log.Logger

	sim      *force.Simulation
	viewport Viewport
	margin   float64
	charge   float64
	seed     uint64
	sizes    []LabelSize
	dragging bool
	ticks    int
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMargin sets the distance kept between the spine ends or ribs and the
// viewport edge.
func WithMargin(m float64) Option {
	return func(s *Simulator) { s.margin = m }
}

// WithRenderer sets the per-step frame consumer.
func WithRenderer(r Renderer) Option {
	return func(s *Simulator) { s.renderer = r }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCharge sets the many-body strength. Zero disables repulsion.
func WithCharge(strength float64) Option {
	return func(s *Simulator) { s.charge = strength }
}

// WithSeed seeds the force engine's jiggle source.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) { s.seed = seed }
}

// New binds g to a force simulation laid out for surface. Node i of the
// graph is body i; connector j is body len(g.Nodes)+j.
func New(g *fishbone.Graph, surface Surface, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		graph:   g,
		surface: surface,
		logger:  log.New(io.Discard),
		margin:  DefaultMargin,
		charge:  force.DefaultCharge,
		seed:    1,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.viewport = surface.Viewport()
	if err := errors.ValidateViewport(s.viewport.Width, s.viewport.Height); err != nil {
		return nil, err
	}
	if err := errors.ValidateMargin(s.margin, s.viewport.Width, s.viewport.Height); err != nil {
		return nil, err
	}

	s.sizes = make([]LabelSize, len(g.Nodes))
	for i := range g.Nodes {
		if !g.Nodes[i].Tail {
			s.sizes[i] = surface.MeasureLabel(&g.Nodes[i])
		}
	}

	n := len(g.Nodes) + len(g.Connectors)
	s.sim = force.New(n, s.viewport.Center(), force.WithSeed(s.seed))
	s.sim.AddForce("link", force.NewLink(s.springs()))
	if s.charge != 0 {
		s.sim.AddForce("charge", force.NewManyBody(s.charge))
	}

	s.logger.Debug("simulation ready",
		"nodes", len(g.Nodes), "connectors", len(g.Connectors), "links", len(g.Links),
		"width", s.viewport.Width, "height", s.viewport.Height)
	return s, nil
}

func (s *Simulator) springs() []force.Spring {
	springs := make([]force.Spring, len(s.graph.Links))
	for i, l := range s.graph.Links {
		springs[i] = force.Spring{
			Source:   s.body(l.Source),
			Target:   s.body(l.Target),
			Distance: LinkDistance(l.Depth, s.graph.LinkFanOut(l)),
		}
	}
	return springs
}

func (s *Simulator) body(ref fishbone.EndpointRef) int {
	switch ref.Kind {
	case fishbone.EndpointNode:
		return ref.Index
	case fishbone.EndpointConnector:
		return len(s.graph.Nodes) + ref.Index
	default:
		panic(fmt.Sprintf("layout: unknown endpoint kind %d", ref.Kind))
	}
}

// Graph returns the simulated graph.
func (s *Simulator) Graph() *fishbone.Graph { return s.graph }

// Step runs one physics tick, the constraint pass and the renderer.
// A SIMULATION_DIVERGED error is fatal; the simulator must not be stepped
// again.
func (s *Simulator) Step() error {
	if err := s.sim.Tick(); err != nil {
		return fmt.Errorf("tick %d: %w", s.ticks, err)
	}
	s.constrain(s.sim.Alpha())
	s.ticks++

	if s.renderer != nil {
		if err := s.renderer.Render(s.Frame()); err != nil {
			return fmt.Errorf("render tick %d: %w", s.ticks, err)
		}
	}
	return nil
}

// Run steps until the energy falls below the stop threshold, ctx is done or
// maxTicks steps have run. It returns the number of steps taken.
func (s *Simulator) Run(ctx context.Context, maxTicks int) (int, error) {
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTick
	}
	n := 0
	for ; n < maxTicks && !s.sim.Done(); n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := s.Step(); err != nil {
			return n, err
		}
	}
	s.logger.Debug("simulation settled", "ticks", n, "alpha", s.sim.Alpha())
	return n, nil
}

// Settled reports whether the energy has fallen below the stop threshold.
func (s *Simulator) Settled() bool { return s.sim.Done() }

// Restart resets the energy to 1.
func (s *Simulator) Restart() { s.sim.Restart() }

// Alpha returns the current energy.
func (s *Simulator) Alpha() float64 { return s.sim.Alpha() }

// Ticks returns the number of steps taken so far.
func (s *Simulator) Ticks() int { return s.ticks }

// Viewport returns the current viewport.
func (s *Simulator) Viewport() Viewport { return s.viewport }

// SetViewport changes the viewport without restarting.
func (s *Simulator) SetViewport(v Viewport) { s.viewport = v }

// Pin holds node id at (x, y).
func (s *Simulator) Pin(id fishbone.NodeID, x, y float64) {
	s.sim.Pin(int(id), r2.Vec{X: x, Y: y})
	s.sim.Body(int(id)).Pos = r2.Vec{X: x, Y: y}
}

// Unpin releases node id.
func (s *Simulator) Unpin(id fishbone.NodeID) { s.sim.Unpin(int(id)) }

// Pinned reports whether node id is pinned.
func (s *Simulator) Pinned(id fishbone.NodeID) bool { return s.sim.Body(int(id)).Pinned() }

// SetDragging toggles the drag state that suspends the constraint pass.
func (s *Simulator) SetDragging(on bool) { s.dragging = on }

// Dragging reports whether a drag is in progress.
func (s *Simulator) Dragging() bool { return s.dragging }

// NodeAt returns the non-tail node closest to p within radius, or NoNode.
func (s *Simulator) NodeAt(p r2.Vec, radius float64) fishbone.NodeID {
	best, bestDist := fishbone.NoNode, radius
	for i := range s.graph.Nodes {
		if s.graph.Nodes[i].Tail {
			continue
		}
		if d := r2.Norm(r2.Sub(s.sim.Body(i).Pos, p)); d <= bestDist {
			best, bestDist = fishbone.NodeID(i), d
		}
	}
	return best
}

// Frame snapshots the current positions.
func (s *Simulator) Frame() Frame {
	nn := len(s.graph.Nodes)
	f := Frame{
		Graph:      s.graph,
		Viewport:   s.viewport,
		Tick:       s.ticks,
		Alpha:      s.sim.Alpha(),
		Nodes:      make([]r2.Vec, nn),
		Connectors: make([]r2.Vec, len(s.graph.Connectors)),
		Pinned:     make([]bool, nn),
		Labels:     append([]LabelSize(nil), s.sizes...),
	}
	bodies := s.sim.Bodies()
	for i := range nn {
		f.Nodes[i] = bodies[i].Pos
		f.Pinned[i] = bodies[i].Pinned()
	}
	for j := range s.graph.Connectors {
		f.Connectors[j] = bodies[nn+j].Pos
	}
	return f
}
