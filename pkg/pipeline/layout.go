package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/fonts"
	"github.com/matzehuels/fishbone/pkg/observability"
)

// GenerateLayout runs the simulation for g until it settles or MaxTicks
// steps have run, and returns the final frame. opts must have layout
// defaults applied.
func GenerateLayout(ctx context.Context, g *fishbone.Graph, opts Options) (layout.Frame, error) {
	styles, err := opts.StyleConfig().Resolve()
	if err != nil {
		return layout.Frame{}, err
	}

	measurer, err := fonts.NewMeasurer(styles, layout.Viewport{Width: opts.Width, Height: opts.Height})
	if err != nil {
		return layout.Frame{}, fmt.Errorf("load font: %w", err)
	}
	defer measurer.Close()

	sim, err := layout.New(g, measurer,
		layout.WithMargin(opts.Margin),
		layout.WithCharge(opts.Charge),
		layout.WithSeed(opts.Seed),
		layout.WithLogger(opts.Logger),
	)
	if err != nil {
		return layout.Frame{}, err
	}

	start := time.Now()
	ticks, err := sim.Run(ctx, opts.MaxTicks)
	if err != nil {
		if errors.Is(err, errors.ErrCodeDiverged) {
			observability.Simulation().OnDiverged(ctx, ticks, err)
		}
		return layout.Frame{}, err
	}
	observability.Simulation().OnSettled(ctx, ticks, sim.Alpha(), time.Since(start))

	if !sim.Settled() {
		opts.Logger.Warn("simulation stopped before settling", "ticks", ticks, "alpha", sim.Alpha())
	}
	return sim.Frame(), nil
}
