package style

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/fishbone/pkg/errors"
)

func TestClampIndex(t *testing.T) {
	tests := []struct {
		index, n, want int
	}{
		{NoIndex, 3, 0},
		{-1, 3, 0},
		{-100, 3, 0},
		{0, 3, 0},
		{1, 3, 1},
		{2, 3, 2},
		{3, 3, 2},
		{math.MaxInt, 3, 2},
		{5, 1, 0},
	}
	for _, tt := range tests {
		if got := ClampIndex(tt.index, tt.n); got != tt.want {
			t.Errorf("ClampIndex(%d, %d) = %d, want %d", tt.index, tt.n, got, tt.want)
		}
	}
}

func TestClampIndexMonotonicAndBounded(t *testing.T) {
	for n := 1; n <= 6; n++ {
		prev := ClampIndex(-10, n)
		for i := -10; i <= 20; i++ {
			got := ClampIndex(i, n)
			if got < 0 || got > n-1 {
				t.Fatalf("ClampIndex(%d, %d) = %d out of [0, %d]", i, n, got, n-1)
			}
			if got < prev {
				t.Fatalf("ClampIndex not monotonic at index %d, n %d", i, n)
			}
			prev = got
		}
	}
}

func TestSelect(t *testing.T) {
	table := []string{"first", "middle", "last"}
	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"undefined", NoIndex, "first"},
		{"negative", -1, "first"},
		{"in range", 1, "middle"},
		{"huge", 1 << 40, "last"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.index, table)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if got != tt.want {
				t.Errorf("Select(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestSelectEmptyTable(t *testing.T) {
	_, err := Select[LineStyle](0, nil)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Select on empty table: code = %v, want %v", errors.GetCode(err), errors.ErrCodeConfiguration)
	}
	if _, err := NewTable[NodeStyle](nil); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("NewTable on empty slice: code = %v", errors.GetCode(err))
	}
}

func TestTableCopiesEntries(t *testing.T) {
	entries := []int{1, 2}
	tbl, err := NewTable(entries)
	if err != nil {
		t.Fatal(err)
	}
	entries[0] = 99
	if tbl.At(0) != 1 {
		t.Error("table should not alias its input slice")
	}
	if tbl.Len() != 2 || tbl.At(7) != 2 {
		t.Errorf("Len = %d, At(7) = %d", tbl.Len(), tbl.At(7))
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	r, err := cfg.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Line(0).StrokeWidthPx; got != 2 {
		t.Errorf("Line(0) width = %v, want 2", got)
	}
	if got := r.Line(9).StrokeWidthPx; got != 0.5 {
		t.Errorf("Line(9) width = %v, want 0.5", got)
	}
	if got := r.Node(2).Color; got != "black" {
		t.Errorf("Node(2) color = %q, want black", got)
	}
	if got := r.Node(12).Color; got != "#aaa" {
		t.Errorf("Node(12) color = %q, want #aaa", got)
	}
	if got := r.Node(0).Background(); got != DefaultBackground {
		t.Errorf("Node(0) background = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no lines", Config{Nodes: Defaults().Nodes}},
		{"no nodes", Config{Lines: Defaults().Lines}},
		{"zero stroke", Config{Lines: []LineStyle{{Color: "red"}}, Nodes: Defaults().Nodes}},
		{"zero font", Config{Lines: Defaults().Lines, Nodes: []NodeStyle{{Color: "red"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeConfiguration)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	doc := `
[[lines]]
color = "red"
stroke_width_px = 3

[[nodes]]
color = "black"
font_size_em = 1.2
background_color = "yellow"
`
	cfg, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cfg.Lines) != 1 || cfg.Lines[0].Color != "red" || cfg.Lines[0].StrokeWidthPx != 3 {
		t.Errorf("Lines = %+v", cfg.Lines)
	}
	if len(cfg.Nodes) != 1 || cfg.Nodes[0].Background() != "yellow" {
		t.Errorf("Nodes = %+v", cfg.Nodes)
	}
}

func TestDecodePartialKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader("[[lines]]\ncolor = \"red\"\nstroke_width_px = 1\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cfg.Nodes) != len(Defaults().Nodes) {
		t.Errorf("missing nodes table should fall back to defaults, got %d entries", len(cfg.Nodes))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":      "[[lines]\n",
		"empty lines": "lines = []\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Decode code = %v, want %v", errors.GetCode(err), errors.ErrCodeConfiguration)
			}
		})
	}
}
