package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/gesture"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/render/scene"
	"github.com/matzehuels/fishbone/pkg/core/style"
	"github.com/matzehuels/fishbone/pkg/fonts"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// Terminal cells are mapped to layout pixels at this size.
const (
	cellWidthPx  = 8.0
	cellHeightPx = 16.0

	// chromeRows are the header and footer lines around the canvas.
	chromeRows = 2

	frameInterval = 33 * time.Millisecond
	reloadPoll    = time.Second
	hitRadiusPx   = 24.0
)

// watchCommand creates the watch command for the live terminal view.
func (c *CLI) watchCommand() *cobra.Command {
	var lf layoutFlags
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "watch [tree.json|tree.yaml]",
		Short: "Run the layout live in the terminal",
		Long: `Run the layout live in the terminal.

The simulation steps once per frame and redraws the diagram. Drag a cause
with the mouse to move it; right-click pins it in place and a left click on
a pinned cause releases it. The tree file is reloaded when it changes.

Keys: r restart, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lf.apply(&opts); err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), args[0], opts)
		},
	}

	lf.register(cmd, &opts)
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options) error {
	opts.Logger = c.Logger
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	t, err := tree.ReadFile(input)
	if err != nil {
		return err
	}

	m, err := newWatchModel(ctx, input, t, opts)
	if err != nil {
		return err
	}
	// The terminal owns stdout while the program runs.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(os.Stderr)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if wm, ok := final.(watchModel); ok && wm.err != nil {
		return wm.err
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// watchModel is the bubbletea model of the live view. The simulator and
// gesture controller are owned by its update loop.
type watchModel struct {
	ctx    context.Context
	input  string
	opts   pipeline.Options
	styles style.Resolved

	sim  *layout.Simulator
	ctrl *gesture.Controller

	cols, rows int
	modTime    time.Time
	lastPoll   time.Time
	status     string
	err        error
}

func newWatchModel(ctx context.Context, input string, t *tree.Tree, opts pipeline.Options) (watchModel, error) {
	styles, err := opts.StyleConfig().Resolve()
	if err != nil {
		return watchModel{}, err
	}
	m := watchModel{
		ctx:    ctx,
		input:  input,
		opts:   opts,
		styles: styles,
		cols:   int(opts.Width / cellWidthPx),
		rows:   int(opts.Height/cellHeightPx) + chromeRows,
	}
	if info, err := os.Stat(input); err == nil {
		m.modTime = info.ModTime()
	}
	if err := m.load(t); err != nil {
		return watchModel{}, err
	}
	return m, nil
}

// viewport is the canvas in layout pixels.
func (m watchModel) viewport() layout.Viewport {
	return layout.Viewport{
		Width:  float64(m.cols) * cellWidthPx,
		Height: float64(max(m.rows-chromeRows, 1)) * cellHeightPx,
	}
}

// load builds a fresh simulator for t at the current viewport.
func (m *watchModel) load(t *tree.Tree) error {
	g, err := fishbone.Build(t)
	if err != nil {
		return err
	}
	measurer, err := fonts.NewMeasurer(m.styles, m.viewport())
	if err != nil {
		return err
	}
	defer measurer.Close()

	sim, err := layout.New(g, measurer,
		layout.WithMargin(m.opts.Margin),
		layout.WithCharge(m.opts.Charge),
		layout.WithSeed(m.opts.Seed),
		layout.WithLogger(m.opts.Logger),
	)
	if err != nil {
		return err
	}
	ctx := m.ctx
	ctrl := gesture.New(sim)
	ctrl.OnRestart = func(reason string) {
		observability.Simulation().OnRestart(ctx, reason)
	}
	m.sim, m.ctrl = sim, ctrl
	return nil
}

func (m watchModel) Init() tea.Cmd {
	return nextFrame()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.sim.Restart()
			m.status = "restarted"
		}

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		vp := m.viewport()
		m.ctrl.Resize(vp.Width, vp.Height, time.Now())

	case tea.MouseMsg:
		m.handleMouse(tea.MouseEvent(msg))

	case frameMsg:
		now := time.Time(msg)
		m.ctrl.Flush(now)
		if now.Sub(m.lastPoll) >= reloadPoll {
			m.lastPoll = now
			m.reloadIfChanged()
		}
		if !m.sim.Settled() {
			if err := m.sim.Step(); err != nil {
				observability.Simulation().OnDiverged(m.ctx, m.sim.Ticks(), err)
				m.err = err
				return m, tea.Quit
			}
		}
		return m, nextFrame()
	}
	return m, nil
}

func (m *watchModel) handleMouse(ev tea.MouseEvent) {
	p := r2.Vec{
		X: (float64(ev.X) + 0.5) * cellWidthPx,
		Y: (float64(ev.Y-1) + 0.5) * cellHeightPx,
	}

	switch ev.Action {
	case tea.MouseActionPress:
		id := m.sim.NodeAt(p, hitRadiusPx)
		if id == fishbone.NoNode {
			return
		}
		switch ev.Button {
		case tea.MouseButtonLeft:
			if m.sim.Pinned(id) {
				m.ctrl.Click(id)
				m.status = "released " + m.sim.Graph().Node(id).Name
				return
			}
			m.ctrl.DragStart(id, p.X, p.Y)
		case tea.MouseButtonRight:
			m.sim.Pin(id, p.X, p.Y)
			m.sim.Restart()
			m.status = "pinned " + m.sim.Graph().Node(id).Name
		}

	case tea.MouseActionMotion:
		if id := m.ctrl.Dragging(); id != fishbone.NoNode {
			m.ctrl.DragMove(id, p.X, p.Y)
		}

	case tea.MouseActionRelease:
		if id := m.ctrl.Dragging(); id != fishbone.NoNode {
			m.ctrl.DragEnd(id)
		}
	}
}

// reloadIfChanged rebuilds the simulation when the input file changed.
// A file that fails to load leaves the current diagram in place.
func (m *watchModel) reloadIfChanged() {
	info, err := os.Stat(m.input)
	if err != nil || !info.ModTime().After(m.modTime) {
		return
	}
	m.modTime = info.ModTime()

	t, err := tree.ReadFile(m.input)
	if err == nil {
		err = m.load(t)
	}
	if err != nil {
		m.status = StyleWarning.Render("reload failed: " + err.Error())
		return
	}
	m.status = "reloaded " + m.input
}

// =============================================================================
// View
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellRib
	cellLabel
	cellPinned
)

type canvas struct {
	cols, rows int
	runes      [][]rune
	kinds      [][]cellKind
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, runes: make([][]rune, rows), kinds: make([][]cellKind, rows)}
	for y := range rows {
		c.runes[y] = []rune(strings.Repeat(" ", cols))
		c.kinds[y] = make([]cellKind, cols)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, k cellKind) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.runes[y][x] = r
	c.kinds[y][x] = k
}

// line draws a segment between cell coordinates with a glyph chosen by
// its slope.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	var glyph rune
	switch {
	case dx == 0 || math.Abs(float64(dy)) > 2*math.Abs(float64(dx)):
		glyph = '│'
	case math.Abs(float64(dx)) > 2*math.Abs(float64(dy)):
		glyph = '─'
	case (dx > 0) == (dy > 0):
		glyph = '╲'
	default:
		glyph = '╱'
	}

	steps := max(abs(dx), abs(dy))
	for i := 0; i <= steps; i++ {
		x, y := x0, y0
		if steps > 0 {
			x = x0 + int(math.Round(float64(dx*i)/float64(steps)))
			y = y0 + int(math.Round(float64(dy*i)/float64(steps)))
		}
		c.set(x, y, glyph, cellRib)
	}
}

func (c *canvas) text(x, y int, s string, k cellKind) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, k)
	}
}

func (c *canvas) String() string {
	styles := map[cellKind]lipgloss.Style{
		cellRib:    StyleRib,
		cellLabel:  StyleValue,
		cellPinned: StylePinned,
	}
	var b strings.Builder
	for y := range c.rows {
		start := 0
		for x := 1; x <= c.cols; x++ {
			if x < c.cols && c.kinds[y][x] == c.kinds[y][start] {
				continue
			}
			run := string(c.runes[y][start:x])
			if st, ok := styles[c.kinds[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		if y < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func toCell(x, y float64) (int, int) {
	return int(x / cellWidthPx), int(y / cellHeightPx)
}

func (m watchModel) View() string {
	rows := max(m.rows-chromeRows, 1)
	cv := newCanvas(max(m.cols, 1), rows)
	sc := scene.Build(m.sim.Frame(), m.styles, scene.WithMarkerID("watch"))

	for _, l := range sc.Lines {
		x0, y0 := toCell(l.X1, l.Y1)
		x1, y1 := toCell(l.X2, l.Y2)
		cv.line(x0, y0, x1, y1)
	}
	for _, mk := range sc.Nodes {
		x, y := toCell(mk.X, mk.Y)
		label := mk.Text.Content
		switch mk.Text.Anchor {
		case "end":
			x -= len([]rune(label))
		case "middle":
			x -= len([]rune(label)) / 2
		}
		kind := cellLabel
		if mk.Pinned {
			kind = cellPinned
		}
		cv.text(x, y, label, kind)
	}

	state := "settling"
	if m.sim.Settled() {
		state = StyleSuccess.Render("settled")
	}
	header := StyleTitle.Render(appName) + " " + StyleDim.Render(m.input) + "  " + state
	footer := StyleDim.Render(fmt.Sprintf("ticks %d · alpha %.4f · drag move · right-click pin · r restart · q quit",
		m.sim.Ticks(), m.sim.Alpha()))
	if m.status != "" {
		footer += "  " + m.status
	}
	return header + "\n" + cv.String() + "\n" + footer
}
