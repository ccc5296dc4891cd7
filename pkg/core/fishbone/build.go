package fishbone

import (
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// Build converts t into a diagram graph. It fails with a VALIDATION error,
// and returns no graph, if any node in t is unnamed or nil.
func Build(t *tree.Tree) (*Graph, error) {
	if err := validateTree(t); err != nil {
		return nil, err
	}

	b := &builder{g: &Graph{}}
	b.g.Tail = b.addNode(Node{
		Name:      "",
		Parent:    NoNode,
		Connector: NoConnector,
		Region:    RegionNone,
		Tail:      true,
	})
	b.g.Root = b.addNode(Node{
		Name:        t.Name,
		Path:        "root",
		Orientation: Horizontal,
		Region:      RegionNone,
		Parent:      NoNode,
		Connector:   NoConnector,
		Root:        true,
	})
	b.g.Links = append(b.g.Links, Link{
		Source: NodeRef(b.g.Tail),
		Target: NodeRef(b.g.Root),
		Depth:  0,
		Arrow:  true,
	})
	b.g.Nodes[b.g.Tail].SubtreeSize = 1
	b.visit(b.g.Root, t)
	return b.g, nil
}

// MustBuild is like Build but panics on error. Intended for tests and
// examples with literal trees.
func MustBuild(t *tree.Tree) *Graph {
	g, err := Build(t)
	if err != nil {
		panic(err)
	}
	return g
}

func validateTree(t *tree.Tree) error {
	if t == nil {
		return errors.Validation("root: tree is empty")
	}
	var err error
	t.Walk(func(path string, _ int, n *tree.Tree) bool {
		if err != nil {
			return false
		}
		if err = errors.ValidateNodeName(path, n.Name); err != nil {
			return false
		}
		for i, c := range n.Children {
			if c == nil {
				err = errors.Validation("%s: child is missing", tree.ChildPath(path, i))
				return false
			}
		}
		return true
	})
	return err
}

type builder struct {
	g *Graph
}

func (b *builder) addNode(n Node) NodeID {
	n.ID = NodeID(len(b.g.Nodes))
	b.g.Nodes = append(b.g.Nodes, n)
	return n.ID
}

// visit annotates the children of id in pre-order and returns the subtree
// size of id. The node itself must already be in the graph.
func (b *builder) visit(id NodeID, t *tree.Tree) int {
	fan := b.newFanOut(id)

	size := 1
	for i, ct := range t.Children {
		parent := b.g.Nodes[id]
		cid := fan.next(i)

		child := b.addNode(Node{
			Name:        ct.Name,
			Path:        tree.ChildPath(parent.Path, i),
			Depth:       parent.Depth + 1,
			Orientation: parent.Orientation.Flip(),
			Region:      childRegion(&parent, i),
			Parent:      id,
			SiblingIdx:  i,
			Connector:   cid,
		})
		b.g.Connectors[cid].Child = child
		b.g.Nodes[id].Children = append(b.g.Nodes[id].Children, child)
		b.linkChild(child, cid)

		childSize := b.visit(child, ct)
		size += childSize
		fan.record(childSize)
	}

	fan.finish()
	b.g.Nodes[id].SubtreeSize = size
	return size
}

// childRegion places children of the root alternately above (even index)
// and below (odd index) the spine; deeper nodes stay on their rib's side.
func childRegion(parent *Node, i int) Region {
	if parent.Region != RegionNone {
		return parent.Region
	}
	if i&1 == 1 {
		return RegionBottom
	}
	return RegionTop
}
