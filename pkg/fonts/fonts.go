// Package fonts measures label text with the Go font family.
//
// The Go Regular face is compiled into the binary via
// golang.org/x/image/font/gofont, so measurements are identical on every
// machine. SVG output names the same family first in its font stack.
package fonts

import (
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/style"
)

// BasePx is the pixel size of 1em.
const BasePx = 16

// FontFamily is the CSS font stack for rendered labels.
const FontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var (
	regular     *opentype.Font
	regularErr  error
	regularOnce sync.Once
)

func goRegular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = opentype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Measurer implements layout.Surface for a fixed viewport, measuring
// labels at the font size of their depth's node style.
type Measurer struct {
	styles   style.Resolved
	viewport layout.Viewport

	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

var _ layout.Surface = (*Measurer)(nil)

// NewMeasurer creates a measurer.
func NewMeasurer(styles style.Resolved, viewport layout.Viewport) (*Measurer, error) {
	f, err := goRegular()
	if err != nil {
		return nil, err
	}
	return &Measurer{styles: styles, viewport: viewport, font: f, faces: make(map[float64]font.Face)}, nil
}

// Viewport implements layout.Surface.
func (m *Measurer) Viewport() layout.Viewport { return m.viewport }

// SetViewport changes the reported viewport.
func (m *Measurer) SetViewport(v layout.Viewport) { m.viewport = v }

// MeasureLabel implements layout.Surface.
func (m *Measurer) MeasureLabel(n *fishbone.Node) layout.LabelSize {
	return m.Measure(n.Name, m.styles.Node(n.Depth).FontSizeEm*BasePx)
}

// Measure returns the extent of text set at sizePx.
func (m *Measurer) Measure(text string, sizePx float64) layout.LabelSize {
	face, err := m.face(sizePx)
	if err != nil {
		return approximate(text, sizePx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	metrics := face.Metrics()
	return layout.LabelSize{
		Width:   fixedToFloat(font.MeasureString(face, text)),
		Ascent:  fixedToFloat(metrics.Ascent),
		Descent: fixedToFloat(metrics.Descent),
	}
}

func (m *Measurer) face(sizePx float64) (font.Face, error) {
	key := math.Round(sizePx*100) / 100
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    key,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

// Close releases cached font faces.
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, f := range m.faces {
		f.Close()
		delete(m.faces, k)
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// approximate estimates text extent from average glyph proportions.
func approximate(text string, sizePx float64) layout.LabelSize {
	n := 0
	for range text {
		n++
	}
	return layout.LabelSize{Width: float64(n) * sizePx * 0.55, Ascent: sizePx * 0.9, Descent: sizePx * 0.25}
}
