package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// layoutCommand creates the layout command: tree file to layout document.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		lf      layoutFlags
		output  string
		noCache bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.yaml]",
		Short: "Resolve diagram positions without rendering",
		Long: `Resolve diagram positions without rendering.

The layout command runs the simulation to rest and writes a layout document
(<input>.layout.json) holding the tree and every resolved position. Render
it with 'visualize' as often as needed without simulating again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lf.apply(&opts); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	lf.register(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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
	prog := newProgress(c.Logger)
	g, frame, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Layout settled after %d ticks", frame.Tick))

	if output == "" {
		output = basePath("", input) + ".layout.json"
	}
	opts.SetLayoutDefaults()
	if err := pipeline.NewDocument(t, g, frame, opts).WriteFile(output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(g.NodeCount(), len(t.Children), frame.Tick, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+output)
	return nil
}
