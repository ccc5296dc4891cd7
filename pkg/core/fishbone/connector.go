package fishbone

// fanOut tracks the connectors created for the children of one parent.
type fanOut struct {
	b       *builder
	parent  NodeID
	between [2]EndpointRef
	counter int
	group   []ConnectorID
}

func (b *builder) newFanOut(parent NodeID) *fanOut {
	n := &b.g.Nodes[parent]
	f := &fanOut{b: b, parent: parent}
	if n.Root {
		f.between = [2]EndpointRef{NodeRef(b.g.Tail), NodeRef(parent)}
	} else {
		f.between = [2]EndpointRef{NodeRef(parent), ConnectorRef(n.Connector)}
	}
	return f
}

// next creates the connector for the child at sibling index i. Odd children
// of the root share the spine slot of the previous sibling.
func (f *fanOut) next(i int) ConnectorID {
	var idx int
	if f.b.g.Nodes[f.parent].Root && i&1 == 1 && len(f.group) > 0 {
		idx = f.b.g.Connectors[f.group[len(f.group)-1]].ChildIdx
	} else {
		idx = f.counter
		f.counter++
	}

	id := ConnectorID(len(f.b.g.Connectors))
	f.b.g.Connectors = append(f.b.g.Connectors, Connector{
		ID:       id,
		Between:  f.between,
		ChildIdx: idx,
		Owner:    f.parent,
		Child:    NoNode,
	})
	f.group = append(f.group, id)
	return id
}

// record appends a child's subtree size to the fan-out anchor: the root
// itself, or the parent's own connector.
func (f *fanOut) record(size int) {
	ref := f.between[1]
	switch ref.Kind {
	case EndpointNode:
		n := &f.b.g.Nodes[ref.Index]
		n.TotalLinks = append(n.TotalLinks, size)
	case EndpointConnector:
		c := &f.b.g.Connectors[ref.Index]
		c.TotalLinks = append(c.TotalLinks, size)
	}
}

// finish writes the group's highest ChildIdx to every connector in it.
func (f *fanOut) finish() {
	if len(f.group) == 0 {
		return
	}
	highest := 0
	for _, id := range f.group {
		highest = max(highest, f.b.g.Connectors[id].ChildIdx)
	}
	for _, id := range f.group {
		f.b.g.Connectors[id].MaxChildIdx = highest
	}
	if f.b.g.fanOuts == nil {
		f.b.g.fanOuts = make(map[EndpointRef]int)
	}
	f.b.g.fanOuts[f.between[1]] = highest
}

func (b *builder) linkChild(child NodeID, cid ConnectorID) {
	depth := b.g.Nodes[child].Depth
	b.g.Links = append(b.g.Links,
		Link{Source: ConnectorRef(cid), Target: NodeRef(child), Depth: depth},
		Link{Source: NodeRef(child), Target: ConnectorRef(cid), Depth: depth, Arrow: true},
	)
}
