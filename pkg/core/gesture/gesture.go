// Package gesture translates pointer and resize events into layout
// commands.
//
// A [Controller] is driven by its host: pointer events arrive through
// DragStart, DragMove, DragEnd and Click, resize events through Resize, and
// the host's frame callback calls Flush. The controller owns no goroutines
// or timers; time is passed in, which keeps resize debouncing deterministic.
package gesture

import (
	"time"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
)

// DefaultDebounce is the quiet period after the last resize before the
// layout restarts.
const DefaultDebounce = 200 * time.Millisecond

// Target is the simulation a Controller drives. *layout.Simulator
// implements it.
type Target interface {
	Pin(id fishbone.NodeID, x, y float64)
	Unpin(id fishbone.NodeID)
	Pinned(id fishbone.NodeID) bool
	SetDragging(on bool)
	Restart()
	Viewport() layout.Viewport
	SetViewport(v layout.Viewport)
}

var _ Target = (*layout.Simulator)(nil)

// Restart reasons reported to OnRestart.
const (
	ReasonDragStart = "drag_start"
	ReasonDragMove  = "drag_move"
	ReasonClick     = "click"
	ReasonResize    = "resize"
)

// Controller applies gestures to a Target.
type Controller struct {
	target   Target
	debounce time.Duration

	dragged  fishbone.NodeID
	pending  bool
	lastSize time.Time

	// OnRestart, if set, is called after every restart with its reason.
	OnRestart func(reason string)
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the resize quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// New creates a controller for target.
func New(target Target, opts ...Option) *Controller {
	c := &Controller{target: target, debounce: DefaultDebounce, dragged: fishbone.NoNode}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dragging returns the node being dragged, or NoNode.
func (c *Controller) Dragging() fishbone.NodeID { return c.dragged }

// DragStart pins id at the pointer and wakes the simulation.
func (c *Controller) DragStart(id fishbone.NodeID, x, y float64) {
	c.dragged = id
	c.target.SetDragging(true)
	c.pin(id, x, y)
	c.restart(ReasonDragStart)
}

// DragMove moves the pinned node, clamped to the viewport.
func (c *Controller) DragMove(id fishbone.NodeID, x, y float64) {
	c.pin(id, x, y)
	c.restart(ReasonDragMove)
}

// DragEnd releases id and resumes the constraint pass.
func (c *Controller) DragEnd(id fishbone.NodeID) {
	c.target.Unpin(id)
	c.target.SetDragging(false)
	c.dragged = fishbone.NoNode
}

// Click releases a pinned node.
func (c *Controller) Click(id fishbone.NodeID) {
	if !c.target.Pinned(id) {
		return
	}
	c.target.Unpin(id)
	c.restart(ReasonClick)
}

// Resize applies the new viewport immediately and schedules a restart for
// when resizing has been quiet for the debounce period.
func (c *Controller) Resize(width, height float64, now time.Time) {
	c.target.SetViewport(layout.Viewport{Width: width, Height: height})
	c.pending = true
	c.lastSize = now
}

// Flush fires a pending resize restart once the debounce period has passed.
// It reports whether a restart happened.
func (c *Controller) Flush(now time.Time) bool {
	if !c.pending || now.Sub(c.lastSize) < c.debounce {
		return false
	}
	c.pending = false
	c.restart(ReasonResize)
	return true
}

// Pending reports whether a resize restart is waiting.
func (c *Controller) Pending() bool { return c.pending }

func (c *Controller) pin(id fishbone.NodeID, x, y float64) {
	vp := c.target.Viewport()
	x = min(max(x, 0), vp.Width)
	y = min(max(y, 0), vp.Height)
	c.target.Pin(id, x, y)
}

func (c *Controller) restart(reason string) {
	c.target.Restart()
	if c.OnRestart != nil {
		c.OnRestart(reason)
	}
}
