package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// LoadFile reads a tree file, choosing the decoder from its extension.
func (r *Runner) LoadFile(ctx context.Context, path string) (*tree.Tree, error) {
	return r.load(ctx, path, func() (*tree.Tree, error) { return tree.ReadFile(path) })
}

// Load reads a tree from rd. source names the input in logs and hooks.
func (r *Runner) Load(ctx context.Context, source string, rd io.Reader, format tree.Format) (*tree.Tree, error) {
	return r.load(ctx, source, func() (*tree.Tree, error) { return tree.Read(rd, format) })
}

func (r *Runner) load(ctx context.Context, source string, read func() (*tree.Tree, error)) (*tree.Tree, error) {
	observability.Pipeline().OnLoadStart(ctx, source)
	start := time.Now()

	t, err := read()
	nodes := 0
	if err == nil {
		nodes = t.Stats().Nodes
	}
	observability.Pipeline().OnLoadComplete(ctx, source, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded tree", "source", source, "nodes", nodes)
	return t, nil
}
