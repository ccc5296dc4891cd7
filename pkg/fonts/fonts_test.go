package fonts

import (
	"math"
	"testing"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/style"
)

func newMeasurer(t *testing.T) *Measurer {
	t.Helper()
	r, err := style.Defaults().Resolve()
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMeasurer(r, layout.Viewport{Width: 800, Height: 600})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMeasureGrowsWithTextAndSize(t *testing.T) {
	m := newMeasurer(t)

	short := m.Measure("ab", 16)
	long := m.Measure("abcdef", 16)
	big := m.Measure("ab", 32)

	if short.Width <= 0 || short.Ascent <= 0 || short.Descent <= 0 {
		t.Fatalf("Measure(ab) = %+v, want positive extent", short)
	}
	if long.Width <= short.Width {
		t.Errorf("longer text should be wider: %v <= %v", long.Width, short.Width)
	}
	if big.Width <= short.Width || big.Height() <= short.Height() {
		t.Errorf("larger size should be larger: %+v vs %+v", big, short)
	}
	if empty := m.Measure("", 16); empty.Width != 0 {
		t.Errorf("empty text width = %v, want 0", empty.Width)
	}
}

func TestMeasureLabelUsesDepthStyle(t *testing.T) {
	m := newMeasurer(t)
	root := m.MeasureLabel(&fishbone.Node{Name: "Effect", Depth: 0})
	leaf := m.MeasureLabel(&fishbone.Node{Name: "Effect", Depth: 4})
	if root.Width <= leaf.Width {
		t.Errorf("root label (2em) should be wider than depth 4 label (0.8em): %v <= %v", root.Width, leaf.Width)
	}
	if got := m.Viewport(); got.Width != 800 {
		t.Errorf("Viewport() = %+v", got)
	}
}

func TestApproximate(t *testing.T) {
	got := approximate("héllo", 10)
	if math.Abs(got.Width-27.5) > 1e-9 {
		t.Errorf("approximate width = %v, want rune-based estimate", got.Width)
	}
}
