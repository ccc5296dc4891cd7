// Package pkg provides the core libraries for fishbone diagram layout.
//
// # Overview
//
// Fishbone turns a cause tree into an Ishikawa diagram: a horizontal spine
// that ends at the effect, ribs alternating above and below it, and
// sub-causes branching off each rib. Positions come from a force
// simulation with geometric constraints applied after every tick, so the
// diagram can also be dragged around live.
//
// # Architecture
//
// The typical data flow:
//
//	tree.json / tree.yaml
//	         ↓
//	    [tree] package (parse and validate the cause tree)
//	         ↓
//	    [core/fishbone] package (flatten into nodes, connectors, links)
//	         ↓
//	    [core/layout] package (force simulation + fishbone constraints)
//	         ↓
//	    [core/render/scene] package (styled lines and labels)
//	         ↓
//	    [core/render/sink] package (SVG, JSON, DOT), [render] (PDF, PNG)
//
// # Quick Start
//
//	t, _ := tree.ReadFile("causes.yaml")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Execute(ctx, t, pipeline.Options{Formats: []string{"svg"}})
//	os.WriteFile("causes.svg", res.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// [core/fishbone] - Arena graph built from a tree. Node IDs are indices;
// the spine tail comes first, then the effect, then causes in pre-order.
//
// [core/force] - A small velocity-Verlet force engine with link and
// many-body forces and alpha cooling.
//
// [core/layout] - The simulator: runs the force engine, then straightens
// the spine and slants ribs and sub-causes to their regions.
//
// [core/gesture] - Drag, click and resize handling that restarts the
// simulation.
//
// [pipeline] - Load, layout and render orchestration with caching.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [metrics] and [observability] - Prometheus metrics behind no-op hooks.
package pkg
