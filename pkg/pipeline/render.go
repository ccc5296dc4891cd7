package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/render/scene"
	"github.com/matzehuels/fishbone/pkg/core/render/sink"
	"github.com/matzehuels/fishbone/pkg/render"
)

// Render produces every requested format from a settled frame. The scene
// is built once; formats render concurrently from it. opts must have
// render defaults applied.
func Render(ctx context.Context, f layout.Frame, treeHash string, opts Options) (map[string][]byte, error) {
	styles, err := opts.StyleConfig().Resolve()
	if err != nil {
		return nil, err
	}
	sc := scene.Build(f, styles, sceneOptions(treeHash)...)

	// PDF and PNG are converted from the SVG, so it is rendered once up
	// front whenever any of the three is requested.
	var svg []byte
	if needsSVG(opts.Formats) {
		if svg, err = renderSVG(ctx, sc, opts); err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(gctx, format, sc, svg, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func needsSVG(formats []string) bool {
	for _, f := range formats {
		if f == FormatSVG || f == FormatPNG || f == FormatPDF {
			return true
		}
	}
	return false
}

func renderSVG(ctx context.Context, sc scene.Scene, opts Options) ([]byte, error) {
	if opts.IsNodelink() {
		return sink.RenderGraphviz(ctx, sink.ToDOT(sc))
	}
	var svgOpts []sink.SVGOption
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteractionCSS())
	}
	return sink.RenderSVG(sc, svgOpts...), nil
}

func renderFormat(ctx context.Context, format string, sc scene.Scene, svg []byte, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatJSON:
		return sink.RenderJSON(sc)
	case FormatDOT:
		return []byte(sink.ToDOT(sc)), nil
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	default:
		return nil, ValidateFormat(format)
	}
}
