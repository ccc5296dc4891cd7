package tree

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tree is one node of a cause tree.
type Tree struct {
	Name     string  `json:"name" yaml:"name"`
	Children []*Tree `json:"children,omitempty" yaml:"children,omitempty"`
}

// New returns a tree node with the given children.
func New(name string, children ...*Tree) *Tree {
	return &Tree{Name: name, Children: children}
}

// IsLeaf reports whether t has no children.
func (t *Tree) IsLeaf() bool { return len(t.Children) == 0 }

// Walk visits t and its descendants in pre-order. The path names each node
// the way validation errors do (root, root.children[0], ...). Returning false
// from fn skips the node's children.
func (t *Tree) Walk(fn func(path string, depth int, n *Tree) bool) {
	walk(t, "root", 0, fn)
}

func walk(t *Tree, path string, depth int, fn func(string, int, *Tree) bool) {
	if t == nil || !fn(path, depth, t) {
		return
	}
	for i, c := range t.Children {
		walk(c, ChildPath(path, i), depth+1, fn)
	}
}

// ChildPath returns the path of the i-th child of the node at path.
func ChildPath(path string, i int) string {
	return fmt.Sprintf("%s.children[%d]", path, i)
}

// Stats summarises the shape of a tree.
type Stats struct {
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	MaxDepth int `json:"max_depth"`
	Ribs     int `json:"ribs"`
}

// Stats counts nodes, leaves, depth and ribs (children of the root).
func (t *Tree) Stats() Stats {
	var s Stats
	if t == nil {
		return s
	}
	s.Ribs = len(t.Children)
	t.Walk(func(_ string, depth int, n *Tree) bool {
		s.Nodes++
		if n.IsLeaf() {
			s.Leaves++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}

// =============================================================================
// Lenient decoding
// =============================================================================

type rawJSON struct {
	Name     json.RawMessage `json:"name"`
	Children json.RawMessage `json:"children"`
}

// UnmarshalJSON decodes a tree node. Non-string names decode as empty and
// non-array children decode as a leaf.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw rawJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Name = ""
	if len(raw.Name) > 0 {
		var name string
		if json.Unmarshal(raw.Name, &name) == nil {
			t.Name = name
		}
	}

	t.Children = nil
	if len(raw.Children) == 0 || raw.Children[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw.Children, &items); err != nil {
		return err
	}
	for _, item := range items {
		child := &Tree{}
		if err := child.UnmarshalJSON(item); err != nil {
			return err
		}
		t.Children = append(t.Children, child)
	}
	return nil
}

// UnmarshalYAML decodes a tree node with the same leniency as UnmarshalJSON.
func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: tree node must be a mapping", node.Line)
	}

	t.Name = ""
	t.Children = nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			if val.Kind == yaml.ScalarNode && val.Tag != "!!null" {
				t.Name = val.Value
			}
		case "children":
			if val.Kind != yaml.SequenceNode {
				continue
			}
			for _, item := range val.Content {
				child := &Tree{}
				if err := child.UnmarshalYAML(item); err != nil {
					return err
				}
				t.Children = append(t.Children, child)
			}
		}
	}
	return nil
}
