package fishbone

import (
	"github.com/matzehuels/fishbone/pkg/errors"
)

// Validate checks the structural invariants of g:
//
//   - exactly one root, at depth 0 and without a parent
//   - every child is one level deeper than its parent
//   - every subtree size is one plus the sum of its children's sizes
//   - regions are constant inside each rib
//   - per connector segment, ChildIdx values are exactly {0, ..., MaxChildIdx}
//   - link endpoints refer to existing elements
//
// Graphs returned by [Build] always validate.
func (g *Graph) Validate() error {
	if err := g.validateNodes(); err != nil {
		return err
	}
	if err := g.validateConnectors(); err != nil {
		return err
	}
	return g.validateLinks()
}

func (g *Graph) validateNodes() error {
	roots := 0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Tail {
			continue
		}
		if n.Root {
			roots++
			if n.Depth != 0 || n.Parent != NoNode {
				return errors.Validation("node %d: root must be at depth 0 without parent", i)
			}
			if NodeID(i) != g.Root {
				return errors.Validation("node %d: root flag on non-root node", i)
			}
		} else {
			if n.Parent < 0 || int(n.Parent) >= len(g.Nodes) {
				return errors.Validation("node %d: parent %d out of range", i, n.Parent)
			}
			p := &g.Nodes[n.Parent]
			if n.Depth != p.Depth+1 {
				return errors.Validation("node %d: depth %d, parent depth %d", i, n.Depth, p.Depth)
			}
			if n.Depth > 1 && n.Region != p.Region {
				return errors.Validation("node %d: region %s differs from parent %s", i, n.Region, p.Region)
			}
			if n.Depth == 1 && n.Region == RegionNone {
				return errors.Validation("node %d: rib without region", i)
			}
		}

		size := 1
		for _, c := range n.Children {
			size += g.Nodes[c].SubtreeSize
		}
		if n.SubtreeSize != size {
			return errors.Validation("node %d: subtree size %d, want %d", i, n.SubtreeSize, size)
		}
	}
	if roots != 1 {
		return errors.Validation("graph has %d roots, want 1", roots)
	}
	return nil
}

func (g *Graph) validateConnectors() error {
	type group struct {
		max  int
		seen map[int]bool
	}
	groups := make(map[[2]EndpointRef]*group)
	for i := range g.Connectors {
		c := &g.Connectors[i]
		for _, ref := range c.Between {
			if !g.valid(ref) {
				return errors.Validation("connector %d: endpoint %s out of range", i, ref)
			}
		}
		if c.ChildIdx < 0 || c.ChildIdx > c.MaxChildIdx {
			return errors.Validation("connector %d: child index %d outside [0, %d]", i, c.ChildIdx, c.MaxChildIdx)
		}
		grp, ok := groups[c.Between]
		if !ok {
			grp = &group{max: c.MaxChildIdx, seen: make(map[int]bool)}
			groups[c.Between] = grp
		}
		if grp.max != c.MaxChildIdx {
			return errors.Validation("connector %d: max child index %d, group has %d", i, c.MaxChildIdx, grp.max)
		}
		grp.seen[c.ChildIdx] = true
	}
	for between, grp := range groups {
		if len(grp.seen) != grp.max+1 {
			return errors.Validation("connectors on %s-%s: child indices are not contiguous from 0 to %d",
				between[0], between[1], grp.max)
		}
	}
	return nil
}

func (g *Graph) validateLinks() error {
	for i, l := range g.Links {
		if !g.valid(l.Source) || !g.valid(l.Target) {
			return errors.Validation("link %d: endpoint out of range", i)
		}
	}
	return nil
}

func (g *Graph) valid(ref EndpointRef) bool {
	switch ref.Kind {
	case EndpointNode:
		return ref.Index >= 0 && ref.Index < len(g.Nodes)
	case EndpointConnector:
		return ref.Index >= 0 && ref.Index < len(g.Connectors)
	default:
		return false
	}
}
