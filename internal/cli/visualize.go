package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// visualizeCommand creates the visualize command: layout document to artifacts.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		rf      renderFlags
		vizType string
		noCache bool
	)
	opts := pipeline.Options{}
	opts.SetRenderDefaults()
	opts.Logger = nil

	cmd := &cobra.Command{
		Use:   "visualize [tree.layout.json]",
		Short: "Render a resolved layout",
		Long: `Render a resolved layout.

The visualize command takes a layout document (produced by 'layout') and
renders it. Positions are taken as they are; no simulation runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(rf.formats)
			opts.VizType = vizType
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, rf.output, noCache)
		},
	}

	rf.register(cmd, &opts)
	cmd.Flags().StringVarP(&vizType, "type", "t", "", "visualization type (default: as laid out)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := pipeline.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts = doc.RenderOptions(opts)
	opts.Logger = c.Logger
	// Layout options shape nothing at this stage but must pass validation.
	opts.Width, opts.Height = doc.Frame.Viewport.Width, doc.Frame.Viewport.Height

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc.Frame, doc.TreeHash(), opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
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
	printStats(doc.Graph().NodeCount(), len(doc.Tree.Children), doc.Frame.Tick, cacheHit)
	return nil
}
