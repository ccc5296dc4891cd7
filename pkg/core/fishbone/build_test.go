package fishbone

import (
	"strings"
	"testing"

	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/tree"
)

func TestBuildRootOnly(t *testing.T) {
	g, err := Build(tree.New("effect"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(g.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(g.Nodes))
	}
	if !g.Nodes[0].Tail || !g.Nodes[1].Root {
		t.Errorf("node order = [tail=%v, root=%v], want [tail, root]", g.Nodes[0].Tail, g.Nodes[1].Root)
	}
	if len(g.Connectors) != 0 {
		t.Errorf("len(Connectors) = %d, want 0", len(g.Connectors))
	}
	want := Link{Source: NodeRef(g.Tail), Target: NodeRef(g.Root), Depth: 0, Arrow: true}
	if len(g.Links) != 1 || g.Links[0] != want {
		t.Errorf("Links = %+v, want [%+v]", g.Links, want)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildRegions(t *testing.T) {
	g := MustBuild(tree.New("root",
		tree.New("a", tree.New("a1", tree.New("a11")), tree.New("a2")),
		tree.New("b", tree.New("b1")),
		tree.New("c"),
	))

	root := g.Node(g.Root)
	var ribs []Region
	for _, id := range root.Children {
		ribs = append(ribs, g.Node(id).Region)
	}
	want := []Region{RegionTop, RegionBottom, RegionTop}
	for i := range want {
		if ribs[i] != want[i] {
			t.Fatalf("rib regions = %v, want %v", ribs, want)
		}
	}

	for _, n := range g.Nodes {
		if strings.HasPrefix(n.Path, "root.children[0].") && n.Region != RegionTop {
			t.Errorf("%s (%s) region = %s, want top", n.Name, n.Path, n.Region)
		}
		if strings.HasPrefix(n.Path, "root.children[1].") && n.Region != RegionBottom {
			t.Errorf("%s (%s) region = %s, want bottom", n.Name, n.Path, n.Region)
		}
	}
	if root.Region != RegionNone || g.Node(g.Tail).Region != RegionNone {
		t.Error("root and tail should have no region")
	}
}

func TestBuildDepthAndOrientation(t *testing.T) {
	g := MustBuild(tree.New("root", tree.New("a", tree.New("a1", tree.New("a11")))))

	tests := []struct {
		name   string
		depth  int
		orient Orientation
	}{
		{"root", 0, Horizontal},
		{"a", 1, Vertical},
		{"a1", 2, Horizontal},
		{"a11", 3, Vertical},
	}
	for _, tt := range tests {
		n := findNode(t, g, tt.name)
		if n.Depth != tt.depth || n.Orientation != tt.orient {
			t.Errorf("%s: depth %d %s, want %d %s", tt.name, n.Depth, n.Orientation, tt.depth, tt.orient)
		}
		if n.Parent != NoNode && g.Node(n.Parent).Depth+1 != n.Depth {
			t.Errorf("%s: depth is not parent depth + 1", tt.name)
		}
	}
}

func TestBuildPreOrder(t *testing.T) {
	g := MustBuild(tree.New("root",
		tree.New("a", tree.New("a1"), tree.New("a2")),
		tree.New("b"),
	))
	var names []string
	for _, n := range g.Nodes[1:] {
		names = append(names, n.Name)
	}
	if got, want := strings.Join(names, ","), "root,a,a1,a2,b"; got != want {
		t.Errorf("node order = %s, want %s", got, want)
	}
}

func TestBuildSubtreeSize(t *testing.T) {
	trees := []*tree.Tree{
		tree.New("r"),
		tree.New("r", tree.New("a"), tree.New("b")),
		tree.New("r", tree.New("a", tree.New("a1", tree.New("a11"), tree.New("a12"))), tree.New("b"), tree.New("c", tree.New("c1"))),
	}
	for _, tr := range trees {
		g := MustBuild(tr)
		if got, want := g.NodeCount(), len(g.Nodes)-1; got != want {
			t.Errorf("subtree size of root = %d, want %d", got, want)
		}
		if got, want := g.NodeCount(), tr.Stats().Nodes; got != want {
			t.Errorf("NodeCount() = %d, tree has %d nodes", got, want)
		}
	}
}

func TestBuildRootConnectors(t *testing.T) {
	g := MustBuild(tree.New("root", tree.New("a"), tree.New("b"), tree.New("c"), tree.New("d"), tree.New("e")))

	if len(g.Connectors) != 5 {
		t.Fatalf("len(Connectors) = %d, want one per child", len(g.Connectors))
	}
	wantIdx := []int{0, 0, 1, 1, 2}
	for i, c := range g.Connectors {
		if c.ChildIdx != wantIdx[i] {
			t.Errorf("connector %d ChildIdx = %d, want %d", i, c.ChildIdx, wantIdx[i])
		}
		if c.MaxChildIdx != 2 {
			t.Errorf("connector %d MaxChildIdx = %d, want 2", i, c.MaxChildIdx)
		}
		if c.Between != [2]EndpointRef{NodeRef(g.Tail), NodeRef(g.Root)} {
			t.Errorf("connector %d Between = %v, want [tail root]", i, c.Between)
		}
	}
	if got := g.FanOut(NodeRef(g.Root)); got != 2 {
		t.Errorf("FanOut(root) = %d, want 2", got)
	}
}

func TestBuildNestedConnectors(t *testing.T) {
	g := MustBuild(tree.New("root",
		tree.New("a", tree.New("a1"), tree.New("a2"), tree.New("a3")),
		tree.New("b"),
	))

	a := findNode(t, g, "a")
	ribConn := g.Connector(a.Connector)
	for i, id := range a.Children {
		child := g.Node(id)
		c := g.Connector(child.Connector)
		if c.Between != [2]EndpointRef{NodeRef(a.ID), ConnectorRef(a.Connector)} {
			t.Errorf("%s: Between = %v, want [a, connector of a]", child.Name, c.Between)
		}
		if c.ChildIdx != i || c.MaxChildIdx != 2 {
			t.Errorf("%s: ChildIdx/Max = %d/%d, want %d/2", child.Name, c.ChildIdx, c.MaxChildIdx, i)
		}
		if c.Owner != a.ID || c.Child != id {
			t.Errorf("%s: Owner/Child = %d/%d", child.Name, c.Owner, c.Child)
		}
	}

	if got := ribConn.TotalLinks; len(got) != 3 || got[0] != 1 {
		t.Errorf("rib connector TotalLinks = %v, want [1 1 1]", got)
	}
	if got := g.Node(g.Root).TotalLinks; len(got) != 2 || got[0] != 4 || got[1] != 1 {
		t.Errorf("root TotalLinks = %v, want [4 1]", got)
	}
	if got := g.FanOut(ConnectorRef(a.Connector)); got != 2 {
		t.Errorf("FanOut(connector of a) = %d, want 2", got)
	}
	if got := g.FanOut(NodeRef(a.ID)); got != 0 {
		t.Errorf("FanOut(a) = %d, want 0", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLinkFanOut(t *testing.T) {
	g := MustBuild(tree.New("root",
		tree.New("a", tree.New("a1"), tree.New("a2"), tree.New("a3")),
		tree.New("b"),
		tree.New("c", tree.New("c1")),
	))
	unindexed := &Graph{Nodes: g.Nodes, Connectors: g.Connectors, Links: g.Links}

	want := map[string]int{"root": 1, "a": 2, "b": 0, "c": 0, "a1": 0, "a2": 0, "a3": 0, "c1": 0}
	for _, l := range g.Links {
		id, ok := l.Target.Node()
		if !ok {
			id, _ = l.Source.Node()
		}
		name := g.Node(id).Name
		if got := g.LinkFanOut(l); got != want[name] {
			t.Errorf("LinkFanOut(%s->%s) = %d, want %d", l.Source, l.Target, got, want[name])
		}
		if got := unindexed.LinkFanOut(l); got != want[name] {
			t.Errorf("unindexed LinkFanOut(%s->%s) = %d, want %d", l.Source, l.Target, got, want[name])
		}
	}
}

func TestBuildChildIdxContiguous(t *testing.T) {
	g := MustBuild(tree.New("root",
		tree.New("a", tree.New("a1"), tree.New("a2", tree.New("x"), tree.New("y"))),
		tree.New("b", tree.New("b1"), tree.New("b2"), tree.New("b3"), tree.New("b4")),
		tree.New("c"),
	))

	groups := make(map[[2]EndpointRef][]int)
	maxes := make(map[[2]EndpointRef]int)
	for _, c := range g.Connectors {
		groups[c.Between] = append(groups[c.Between], c.ChildIdx)
		maxes[c.Between] = c.MaxChildIdx
	}
	for between, idx := range groups {
		seen := make(map[int]int)
		for _, i := range idx {
			seen[i]++
		}
		for i := 0; i <= maxes[between]; i++ {
			if seen[i] == 0 {
				t.Errorf("%v: ChildIdx %d missing from %v", between, i, idx)
			}
		}
		if len(seen) != maxes[between]+1 {
			t.Errorf("%v: ChildIdx set %v does not match max %d", between, idx, maxes[between])
		}
	}
}

func TestBuildLinks(t *testing.T) {
	g := MustBuild(tree.New("root", tree.New("a", tree.New("a1"))))

	if got, want := len(g.Links), 1+2*2; got != want {
		t.Fatalf("len(Links) = %d, want %d", got, want)
	}
	arrows := 0
	for _, l := range g.Links {
		if l.Arrow {
			arrows++
		}
		deeper := max(g.Depth(l.Source), g.Depth(l.Target))
		if l.Depth != deeper {
			t.Errorf("link %s->%s depth %d, want %d", l.Source, l.Target, l.Depth, deeper)
		}
	}
	if arrows != 3 {
		t.Errorf("arrow links = %d, want 3", arrows)
	}

	a1 := findNode(t, g, "a1")
	want := Link{Source: NodeRef(a1.ID), Target: ConnectorRef(a1.Connector), Depth: 2, Arrow: true}
	found := false
	for _, l := range g.Links {
		if l == want {
			found = true
		}
	}
	if !found {
		t.Errorf("missing arrow link %+v", want)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name     string
		tree     *tree.Tree
		wantPath string
	}{
		{"nil tree", nil, "root"},
		{"unnamed root", tree.New(""), "root"},
		{"unnamed rib", tree.New("r", tree.New("a"), tree.New("b"), tree.New("")), "root.children[2]"},
		{"unnamed leaf", tree.New("r", tree.New("a", tree.New(" "))), "root.children[0].children[0]"},
		{"nil rib", &tree.Tree{Name: "r", Children: []*tree.Tree{tree.New("a"), nil, tree.New("b")}}, "root.children[1]"},
		{"nil leaf", tree.New("r", &tree.Tree{Name: "a", Children: []*tree.Tree{nil}}), "root.children[0].children[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.tree)
			if g != nil {
				t.Error("Build should not return a partial graph")
			}
			if !errors.Is(err, errors.ErrCodeValidation) {
				t.Fatalf("Build error code = %v, want %v", errors.GetCode(err), errors.ErrCodeValidation)
			}
			if !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("error %q should name %s", err, tt.wantPath)
			}
		})
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
	}{
		{"subtree size", func(g *Graph) { g.Nodes[g.Root].SubtreeSize++ }},
		{"child index gap", func(g *Graph) { g.Connectors[0].ChildIdx = 1 }},
		{"depth", func(g *Graph) { g.Nodes[2].Depth = 5 }},
		{"second root", func(g *Graph) { g.Nodes[2].Root = true }},
		{"link range", func(g *Graph) { g.Links[0].Target = NodeRef(99) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MustBuild(tree.New("r", tree.New("a", tree.New("a1")), tree.New("b")))
			tt.mutate(g)
			if err := g.Validate(); !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("Validate() = %v, want VALIDATION error", err)
			}
		})
	}
}

func findNode(t *testing.T, g *Graph, name string) *Node {
	t.Helper()
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return &g.Nodes[i]
		}
	}
	t.Fatalf("node %q not found", name)
	return nil
}
