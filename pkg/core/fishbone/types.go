package fishbone

import "fmt"

// NodeID addresses a node in [Graph.Nodes].
type NodeID int

// ConnectorID addresses a connector in [Graph.Connectors].
type ConnectorID int

const (
	// NoNode is the parent of the root and the tail anchor.
	NoNode NodeID = -1
	// NoConnector is the connector of the root and the tail anchor.
	NoConnector ConnectorID = -1
)

// Orientation is the direction a node's label runs along its bone.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// Flip returns the opposite orientation.
func (o Orientation) Flip() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Region is the side of the spine a rib is drawn on.
type Region int

const (
	RegionTop    Region = -1
	RegionNone   Region = 0
	RegionBottom Region = 1
)

func (r Region) String() string {
	switch r {
	case RegionTop:
		return "top"
	case RegionBottom:
		return "bottom"
	default:
		return "none"
	}
}

// EndpointKind tags an [EndpointRef].
type EndpointKind uint8

const (
	EndpointNode EndpointKind = iota
	EndpointConnector
)

// EndpointRef is either a node or a connector. Switch on Kind before using
// Index.
type EndpointRef struct {
	Kind  EndpointKind `json:"kind"`
	Index int          `json:"index"`
}

// NodeRef refers to a node.
func NodeRef(id NodeID) EndpointRef { return EndpointRef{Kind: EndpointNode, Index: int(id)} }

// ConnectorRef refers to a connector.
func ConnectorRef(id ConnectorID) EndpointRef {
	return EndpointRef{Kind: EndpointConnector, Index: int(id)}
}

// Node returns the node ID and true if r refers to a node.
func (r EndpointRef) Node() (NodeID, bool) {
	return NodeID(r.Index), r.Kind == EndpointNode
}

// Connector returns the connector ID and true if r refers to a connector.
func (r EndpointRef) Connector() (ConnectorID, bool) {
	return ConnectorID(r.Index), r.Kind == EndpointConnector
}

func (r EndpointRef) String() string {
	switch r.Kind {
	case EndpointNode:
		return fmt.Sprintf("n%d", r.Index)
	case EndpointConnector:
		return fmt.Sprintf("c%d", r.Index)
	default:
		return fmt.Sprintf("?%d", r.Index)
	}
}

// Node is one cause of the diagram, or the synthetic tail anchor.
type Node struct {
	ID          NodeID      `json:"id"`
	Name        string      `json:"name"`
	Path        string      `json:"path,omitempty"`
	Depth       int         `json:"depth"`
	Orientation Orientation `json:"orientation"`
	Region      Region      `json:"region"`
	SubtreeSize int         `json:"subtree_size"`
	Parent      NodeID      `json:"parent"`
	Children    []NodeID    `json:"children,omitempty"`
	// SiblingIdx is the node's index among its parent's children.
	SiblingIdx int `json:"sibling_idx"`
	// Connector is the connector of the edge to the parent.
	Connector ConnectorID `json:"connector"`
	// TotalLinks holds the children's subtree sizes. Only the root fills it;
	// other nodes record theirs on their connector.
	TotalLinks []int `json:"total_links,omitempty"`
	Root       bool  `json:"root,omitempty"`
	Tail       bool  `json:"tail,omitempty"`
}

// Vertical reports whether the node's label runs vertically.
func (n *Node) Vertical() bool { return n.Orientation == Vertical }

// Connector is a routing point between a parent and one of its children.
type Connector struct {
	ID ConnectorID `json:"id"`
	// Between is the (A, B) segment the connector is interpolated on.
	Between     [2]EndpointRef `json:"between"`
	ChildIdx    int            `json:"child_idx"`
	MaxChildIdx int            `json:"max_child_idx"`
	// Owner is the parent node whose child this connector leads to.
	Owner NodeID `json:"owner"`
	Child NodeID `json:"child"`
	// TotalLinks holds the subtree sizes of Child's children.
	TotalLinks []int `json:"total_links,omitempty"`
}

// Link is a drawn edge.
type Link struct {
	Source EndpointRef `json:"source"`
	Target EndpointRef `json:"target"`
	Depth  int         `json:"depth"`
	Arrow  bool        `json:"arrow,omitempty"`
}

// Graph is the complete diagram topology.
type Graph struct {
	Nodes      []Node      `json:"nodes"`
	Connectors []Connector `json:"connectors"`
	Links      []Link      `json:"links"`
	Root       NodeID      `json:"root"`
	Tail       NodeID      `json:"tail"`

	// fanOuts maps the B endpoint of each connector group to its
	// MaxChildIdx. Build fills it.
	fanOuts map[EndpointRef]int
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) *Node { return &g.Nodes[id] }

// Connector returns the connector with the given ID.
func (g *Graph) Connector(id ConnectorID) *Connector { return &g.Connectors[id] }

// FanOut returns the MaxChildIdx of the connector group whose B endpoint is
// ref, or 0 when no connectors fan out from ref.
func (g *Graph) FanOut(ref EndpointRef) int {
	if g.fanOuts != nil {
		return g.fanOuts[ref]
	}
	for i := range g.Connectors {
		if g.Connectors[i].Between[1] == ref {
			return g.Connectors[i].MaxChildIdx
		}
	}
	return 0
}

// LinkFanOut returns the fan-out that scales l's rest length. Links touching
// a connector use that connector's group; the tail-to-root link uses the
// root's.
func (g *Graph) LinkFanOut(l Link) int {
	if _, ok := l.Source.Connector(); ok {
		return g.FanOut(l.Source)
	}
	return g.FanOut(l.Target)
}

// Depth returns the depth of the element ref refers to. Connectors take the
// depth of their child.
func (g *Graph) Depth(ref EndpointRef) int {
	switch ref.Kind {
	case EndpointNode:
		return g.Nodes[ref.Index].Depth
	case EndpointConnector:
		return g.Nodes[g.Connectors[ref.Index].Child].Depth
	default:
		return 0
	}
}

// NodeCount returns the number of tree nodes, excluding the tail anchor.
func (g *Graph) NodeCount() int {
	if len(g.Nodes) == 0 {
		return 0
	}
	return g.Nodes[g.Root].SubtreeSize
}
