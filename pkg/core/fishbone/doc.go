// Package fishbone turns a cause tree into the node, connector and link
// graph of an Ishikawa diagram.
//
// # Overview
//
// A fishbone diagram has a horizontal spine running from a tail anchor on
// the left to the root (the effect) on the right. Children of the root are
// ribs that alternate above and below the spine; every deeper level fans off
// its parent rib with alternating orientation. [Build] produces a [Graph]
// describing that topology. Positions are not part of the graph; the layout
// package owns them.
//
// # Arena Representation
//
// Nodes and connectors live in flat slices addressed by [NodeID] and
// [ConnectorID]. Parents are stored as IDs and link endpoints as
// [EndpointRef] values, a tagged variant that is either a node or a
// connector. There are no pointer cycles, so a Graph can be copied, hashed
// and serialised freely.
//
// # Node Annotation
//
// Nodes are emitted in pre-order, preceded by the synthetic tail anchor:
//
//	[tail, root, child0, child0.0, ..., child1, ...]
//
// The root is at depth 0, horizontal and has no region. A child at index i
// gets depth+1 and the opposite orientation of its parent. Its region is
// inherited from the parent, except for children of the root, which take
// [RegionBottom] for odd i and [RegionTop] for even i. SubtreeSize counts a
// node and all of its descendants.
//
// # Connectors
//
// Every child gets a connector: a routing point that the layout places at a
// fixed fraction along the segment between two endpoints (A, B):
//
//   - children of the root use (tail, root), so ribs attach to the spine
//   - children of any other node N use (N, connector of N)
//
// ChildIdx orders connectors along their segment and MaxChildIdx is the
// highest ChildIdx in the group. Ribs above and below the spine come in
// pairs: every odd child of the root shares the ChildIdx of the previous
// sibling, so spine slots run 0, 0, 1, 1, 2, ...
//
// # Links
//
// The graph carries a tail to root link and, for every child, a link from
// its connector to the child and an arrow link from the child back to its
// connector. Link depth is the depth of the deeper endpoint and selects the
// stroke style.
//
// # Errors
//
// Build validates every name before constructing anything. An unnamed node
// fails with a VALIDATION error naming its path, for example
// "root.children[2].children[0]", and no graph is returned.
package fishbone
