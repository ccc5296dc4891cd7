package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// renderCommand creates the render command: tree file to artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf      layoutFlags
		rf      renderFlags
		noCache bool
		refresh bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "render [tree.json|tree.yaml]",
		Short: "Lay out a cause tree and render it",
		Long: `Lay out a cause tree and render it.

The tree is a JSON or YAML document of {name, children} nodes. The root is
the effect; its children become ribs alternating above and below the spine.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(rf.formats)
			opts.Refresh = refresh
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := lf.apply(&opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, rf.output, noCache)
		},
	}

	lf.register(cmd, &opts)
	rf.register(cmd, &opts)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	t, err := runner.LoadFile(ctx, input)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Settling layout...")
	spinner.Start()

	opts.Logger = c.Logger
	g, frame, layoutHit, err := runner.GenerateLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	spinner.SetMessage(fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, frame, tree.Hash(t), opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	printArtifacts(paths)
	printStats(g.NodeCount(), len(t.Children), frame.Tick, layoutHit && renderHit)
	return nil
}
