package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/treasuremap/pkg/render/tree"
)

// mapCommand creates the map command, which prints the dependency tree.
func (c *CLI) mapCommand() *cobra.Command {
	var opts tree.Options

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Print the dependency tree",
		Long: `Print the dependency tree of the project, starting at the root package.

Children are sorted by name. A package already printed elsewhere in the
tree is marked [circular] and not expanded again, so shared dependencies
appear once in full.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cfg, err := c.newRunner(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			g, err := runner.Load(cmd.Context(), c.pipelineOptions(cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, ok := g.Root(); !ok {
				printWarning(out, "No root package: the workspace has several members")
				printDetail(out, "Use --manifest-path to pick a member")
				return nil
			}
			tree.Print(out, g, opts)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "stop expanding below this depth (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "disable colors")

	return cmd
}
