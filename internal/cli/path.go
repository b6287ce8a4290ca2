package cli

import (
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/graph"
)

// pathCommand creates the path command.
func (c *CLI) pathCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "path FROM TO",
		Short: "Show how one crate depends on another",
		Long: `Print a shortest dependency chain from crate FROM to crate TO.

Crates are named without versions; when several versions share a name the
first one in the metadata is used. With --pick both endpoints are chosen
interactively.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if pick {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cfg, err := c.newRunner(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			ctx := cmd.Context()
			g, err := runner.Load(ctx, c.pipelineOptions(cfg))
			if err != nil {
				return err
			}

			var from, to string
			if pick {
				if from, err = pickPackage(ctx, "Path from", g, ""); err != nil {
					return err
				}
				if to, err = pickPackage(ctx, "Path from "+from+" to", g, from); err != nil {
					return err
				}
			} else {
				from, to = args[0], args[1]
			}

			for _, name := range []string{from, to} {
				if _, ok := g.FindByName(name); !ok {
					return apperrors.New(apperrors.ErrCodePackageNotFound, "package %q is not in the dependency graph", name)
				}
			}

			path, ok := graph.FindPath(g, from, to)
			if !ok {
				return apperrors.New(apperrors.ErrCodeNotFound, "no path from %s to %s", from, to)
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "%s", joinPath(path, StyleHighlight))
			printDetail(out, "%d hops", len(path)-1)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose both crates interactively")

	return cmd
}
