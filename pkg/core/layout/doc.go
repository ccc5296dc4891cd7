// Package layout resolves the positions of a fishbone graph.
//
// # Overview
//
// A [Simulator] binds every node and connector of a [fishbone.Graph] to a
// body of a [force.Simulation] and advances both in lockstep. Each
// [Simulator.Step] runs three phases:
//
//  1. Physics: one force tick. Links pull toward a rest distance of
//     (FanOut+1) * LogScale(depth+1), where FanOut is taken from the link's
//     connector (or the root for the spine), and bodies repel each other.
//  2. Constraints: a deterministic pass that imposes the fishbone shape.
//  3. Output: the resulting [Frame] is handed to the optional [Renderer].
//
// # Constraint Pass
//
// With k = 6*alpha, rules are applied in this order:
//
//   - while a drag is in progress the pass is skipped entirely
//   - the root is held at x = width - (margin + root label width)
//   - the tail anchor is held at (margin, height/2)
//   - ribs (depth 1) are held at y = margin (top) or height - margin
//     (bottom) and pushed left by 5k
//   - vertical nodes drift toward their rib side by k
//   - every node below the root drifts left by k
//   - every connector is placed at B - (1+c)(B-A)/(m+1) on its segment
//
// Pinned nodes are left where the user put them. Connectors are processed
// in creation order, which guarantees that both of a connector's endpoints
// have been resolved before it is.
//
// # Collaborators
//
// A [Surface] supplies the viewport size and label measurements. A
// [Renderer] receives a [Frame] per step; frames carry positions only and
// leave styling to the render packages.
package layout
