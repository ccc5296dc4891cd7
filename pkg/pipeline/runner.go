package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// Runner executes pipeline stages with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options; each
// call builds its own graph and simulator.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout and render for t.
func (r *Runner) Execute(ctx context.Context, t *tree.Tree, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Tree: t, TreeHash: tree.Hash(t)}

	layoutStart := time.Now()
	g, frame, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = g
	result.Frame = frame
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.ConnectorCount = len(g.Connectors)
	result.Stats.LinkCount = len(g.Links)
	result.Stats.Ticks = frame.Tick
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"ticks", frame.Tick,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, frame, result.TreeHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateLayoutWithCacheInfo builds the graph for t and resolves its
// positions, consulting the cache first. The returned frame references
// the returned graph.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, t *tree.Tree, opts Options) (*fishbone.Graph, layout.Frame, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Frame{}, false, err
	}

	g, err := fishbone.Build(t)
	if err != nil {
		return nil, layout.Frame{}, false, err
	}

	observability.Pipeline().OnLayoutStart(ctx, opts.VizType, g.NodeCount())
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(tree.Hash(t), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Frame
			if err := json.Unmarshal(data, &cached); err == nil && compatible(g, cached) {
				cached.Graph = g
				observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, time.Since(start), nil)
				return g, cached, true, nil
			}
			r.Logger.Debug("discarding unusable cached layout", "key", cacheKey)
		}
	}

	frame, err := GenerateLayout(ctx, g, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, time.Since(start), err)
	if err != nil {
		return nil, layout.Frame{}, false, err
	}

	if data, err := json.Marshal(frame); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "stage", "layout", "error", err)
		}
	}
	return g, frame, false, nil
}

// compatible reports whether a cached frame has the shape of g.
func compatible(g *fishbone.Graph, f layout.Frame) bool {
	return len(f.Nodes) == len(g.Nodes) &&
		len(f.Connectors) == len(g.Connectors) &&
		len(f.Pinned) == len(g.Nodes) &&
		len(f.Labels) == len(g.Nodes)
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, t *tree.Tree, opts Options) (*fishbone.Graph, layout.Frame, error) {
	g, f, _, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	return g, f, err
}

// RenderWithCacheInfo renders frame in every requested format. Formats
// already cached are served from the cache; the rest are rendered
// together. The bool reports whether every format was a hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, frame layout.Frame, treeHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	frameData, err := json.Marshal(frame)
	if err != nil {
		return nil, false, fmt.Errorf("serialize frame for cache key: %w", err)
	}
	layoutHash := cache.Hash(append(frameData, treeHash...))

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	observability.Pipeline().OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, frame, treeHash, renderOpts)
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "stage", "render", "format", format, "error", err)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, frame layout.Frame, treeHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, frame, treeHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
