package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/graph"
	graphio "github.com/matzehuels/treasuremap/pkg/io"
	"github.com/matzehuels/treasuremap/pkg/pipeline"
	"github.com/matzehuels/treasuremap/pkg/render/nodelink"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dependency graph as DOT, SVG or JSON",
		Long: `Write the dependency graph to a file, or to stdout without --output.

DOT output colors nodes by kind (root green, dev blue, build orange, deeper
than three levels gray, others yellow) and styles edges by dependency kind.
SVG is rendered from the same DOT source with an embedded Graphviz. JSON is
a snapshot that keeps every package attribute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateExportFormat(format); err != nil {
				return err
			}

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

			if output == "" {
				return writeExport(ctx, cmd.OutOrStdout(), g, format)
			}
			if err := exportFile(ctx, g, format, output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Exported %s", strings.ToUpper(format))
			printFile(out, output)
			if format == pipeline.FormatDOT {
				printNextStep(out, "Render it with", "dot -Tsvg "+output+" -o graph.svg")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// writeExport encodes g in format to w.
func writeExport(ctx context.Context, w io.Writer, g *graph.Graph, format string) error {
	switch format {
	case pipeline.FormatJSON:
		return graphio.WriteJSON(g, w)
	case pipeline.FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		return nodelink.WriteDOT(g, w)
	}
}

// exportFile writes g in format to path.
func exportFile(ctx context.Context, g *graph.Graph, format, path string) error {
	switch format {
	case pipeline.FormatJSON:
		return graphio.ExportJSON(g, path)
	case pipeline.FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g))
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, svg, 0o644); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeIO, err, "failed to write %s", path)
		}
		return nil
	default:
		return nodelink.ExportDOT(g, path)
	}
}
