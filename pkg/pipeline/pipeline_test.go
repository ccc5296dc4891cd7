package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/tree"
)

func testTree() *tree.Tree {
	return tree.New("Late delivery",
		tree.New("People", tree.New("Training"), tree.New("Shift gaps")),
		tree.New("Process", tree.New("No checklist")),
		tree.New("Machines"),
	)
}

func testRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"fishbone", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	var o Options
	o.SetLayoutDefaults()

	if o.VizType != DefaultVizType {
		t.Errorf("VizType = %q", o.VizType)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("size = %gx%g", o.Width, o.Height)
	}
	if o.Margin != DefaultMargin {
		t.Errorf("Margin = %g", o.Margin)
	}
	if o.Charge != DefaultCharge {
		t.Errorf("Charge = %g", o.Charge)
	}
	if o.Seed != DefaultSeed || o.MaxTicks != DefaultMaxTicks {
		t.Errorf("Seed = %d, MaxTicks = %d", o.Seed, o.MaxTicks)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	nc := Options{NoCharge: true, Charge: -50}
	nc.SetLayoutDefaults()
	if nc.Charge != 0 {
		t.Errorf("NoCharge: Charge = %g, want 0", nc.Charge)
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"defaults", Options{}, ""},
		{"bad viz", Options{VizType: "tower"}, errors.ErrCodeInvalidViz},
		{"negative width", Options{Width: -1}, errors.ErrCodeValidation},
		{"margin too large", Options{Width: 100, Height: 100, Margin: 60}, errors.ErrCodeValidation},
		{"negative ticks", Options{MaxTicks: -1}, errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Scale: 3, Interactive: true}
	if got := o.ArtifactKeyOpts(FormatPNG); got.Scale != 3 || got.Interactive {
		t.Errorf("png key opts = %+v", got)
	}
	if got := o.ArtifactKeyOpts(FormatSVG); got.Scale != 0 || !got.Interactive {
		t.Errorf("svg key opts = %+v", got)
	}
}

func TestMarkerID(t *testing.T) {
	if got := MarkerID("0123456789abcdef"); got != "arrow-0123456789ab" {
		t.Errorf("MarkerID = %q", got)
	}
	if got := MarkerID("abc"); got != "arrow-abc" {
		t.Errorf("MarkerID(short) = %q", got)
	}
}

func TestLoad(t *testing.T) {
	src := "name: Defects\nchildren:\n  - name: Materials\n  - name: Methods\n"
	tr, err := testRunner(nil).Load(context.Background(), "stdin", strings.NewReader(src), tree.FormatYAML)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tr.Name != "Defects" || len(tr.Children) != 2 {
		t.Errorf("Load = %+v", tr)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := testRunner(nil).LoadFile(context.Background(), "/nonexistent/tree.json")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := testRunner(nil)
	tr := testTree()

	res, err := r.Execute(ctx, tr, Options{Formats: []string{FormatSVG, FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.NodeCount != 7 {
		t.Errorf("NodeCount = %d, want 7", res.Stats.NodeCount)
	}
	if res.Stats.Ticks == 0 {
		t.Error("expected simulation ticks")
	}
	if res.Frame.Graph != res.Graph {
		t.Error("frame should reference the result graph")
	}

	svg := res.Artifacts[FormatSVG]
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("svg output does not start with <svg: %.40q", svg)
	}
	if !bytes.Contains(svg, []byte(MarkerID(res.TreeHash))) {
		t.Error("svg missing deterministic marker id")
	}
	if !bytes.Contains(res.Artifacts[FormatJSON], []byte("Late delivery")) {
		t.Error("json scene missing root label")
	}
	if !bytes.HasPrefix(res.Artifacts[FormatDOT], []byte("graph fishbone")) {
		t.Errorf("dot output = %.40q", res.Artifacts[FormatDOT])
	}

	again, err := r.Execute(ctx, tr, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !bytes.Equal(svg, again.Artifacts[FormatSVG]) {
		t.Error("identical inputs should render identical SVG")
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(fc)
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, testTree(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, testTree(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	refreshed, err := r.Execute(ctx, testTree(), Options{Formats: opts.Formats, Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if refreshed.CacheInfo.LayoutHit {
		t.Error("Refresh should bypass the layout cache")
	}
}

func TestExecuteRejectsUnnamedNode(t *testing.T) {
	tr := tree.New("root", tree.New(""))
	_, err := testRunner(nil).Execute(context.Background(), tr, Options{})
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("error = %v, want VALIDATION", err)
	}
}

func TestExecuteInvalidFormat(t *testing.T) {
	_, err := testRunner(nil).Execute(context.Background(), testTree(), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := testRunner(nil)
	tr := testTree()

	opts := Options{}
	g, frame, err := r.GenerateLayout(ctx, tr, opts)
	if err != nil {
		t.Fatalf("GenerateLayout: %v", err)
	}
	opts.SetLayoutDefaults()
	path := t.TempDir() + "/causes.layout.json"
	if err := NewDocument(tr, g, frame, opts).WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	doc, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile: %v", err)
	}
	if doc.VizType != VizTypeFishbone {
		t.Errorf("VizType = %q", doc.VizType)
	}
	if doc.Frame.Graph != doc.Graph() || doc.Graph() == nil {
		t.Error("frame should reference the rebuilt graph")
	}
	if len(doc.Frame.Nodes) != len(frame.Nodes) {
		t.Errorf("nodes = %d, want %d", len(doc.Frame.Nodes), len(frame.Nodes))
	}
	if doc.TreeHash() != tree.Hash(tr) {
		t.Error("tree hash changed across round trip")
	}

	direct, err := r.Render(ctx, frame, tree.Hash(tr), Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	fromDoc, err := r.Render(ctx, doc.Frame, doc.TreeHash(), doc.RenderOptions(Options{Formats: []string{FormatSVG}}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(direct[FormatSVG], fromDoc[FormatSVG]) {
		t.Error("rendering a reloaded document should match the original")
	}
}

func TestUnmarshalDocumentMismatch(t *testing.T) {
	data := []byte(`{"viz_type":"fishbone","tree":{"name":"a","children":[{"name":"b"}]},"frame":{"nodes":[]}}`)
	if _, err := UnmarshalDocument(data); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
