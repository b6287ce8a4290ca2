package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/treasuremap/pkg/analysis"
	"github.com/matzehuels/treasuremap/pkg/pipeline"
)

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		format string
		enrich bool
		topN   int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize duplicates, cycles and package sizes",
		Long: `Analyze the dependency graph and print a summary report.

With --enrich the report also runs cargo-outdated, cargo-audit and
cargo-machete. A check whose tool is missing or fails is reported as
"not checked", which is different from "checked, none found".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateReportFormat(format); err != nil {
				return err
			}

			runner, cfg, err := c.newRunner(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions(cfg)
			opts.Enrich = enrich
			if cmd.Flags().Changed("top") {
				opts.TopN = topN
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			var spinner *Spinner
			if enrich {
				spinner = newSpinnerWithContext(ctx, "Running cargo checks...")
				spinner.Start()
			}
			res, err := runner.Analyze(ctx, opts)
			if spinner != nil {
				if spinner.Cancelled() {
					spinner.Stop()
					return ctx.Err()
				}
				spinner.StopWithSuccess("Cargo checks finished")
			}
			if err != nil {
				return err
			}
			prog.done("Analyzed %d packages", res.Stats.NodeCount)

			out := cmd.OutOrStdout()
			switch format {
			case pipeline.FormatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Report)
			case pipeline.FormatYAML:
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(res.Report); err != nil {
					return err
				}
				return enc.Close()
			default:
				printStats(out, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.MetadataHit)
				writeReport(out, res.Report)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, json, yaml")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "run cargo-outdated, cargo-audit and cargo-machete")
	cmd.Flags().IntVar(&topN, "top", pipeline.DefaultTopN, "number of largest packages to list")

	return cmd
}

// Display limits for the text report. JSON and YAML carry everything.
const (
	maxShownDuplicates = 5
	maxShownCycles     = 3
	maxShownLargest    = 5
	maxShownFindings   = 10
)

// writeReport prints a report for humans.
func writeReport(w io.Writer, r *analysis.Report) {
	title := "Dependency analysis"
	if r.Root != "" {
		title += " · " + r.Root
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render(title))
	printKeyValue(w, "Total dependencies", StyleNumber.Render(fmt.Sprint(r.TotalDependencies)))
	printKeyValue(w, "Direct", fmt.Sprint(r.DirectDependencies))
	printKeyValue(w, "Dev", fmt.Sprint(r.DevDependencies))
	printKeyValue(w, "Max depth", fmt.Sprint(r.MaxDepth))
	if r.TotalSize > 0 {
		printKeyValue(w, "Total size", analysis.FormatSize(r.TotalSize))
	}

	if len(r.Duplicates) > 0 {
		printHeading(w, "%d duplicate dependencies", len(r.Duplicates))
		for _, d := range head(r.Duplicates, maxShownDuplicates) {
			printDetail(w, "%s has versions: %s", StyleWarning.Render(d.Name), strings.Join(d.Versions, ", "))
		}
		printMore(w, len(r.Duplicates), maxShownDuplicates)
	}

	if len(r.Cycles) > 0 {
		printHeading(w, "%d circular dependencies", len(r.Cycles))
		for _, cyc := range head(r.Cycles, maxShownCycles) {
			fmt.Fprintln(w, "  "+joinPath(cyc, StyleDanger))
		}
		printMore(w, len(r.Cycles), maxShownCycles)
	}

	if len(r.Largest) > 0 {
		printHeading(w, "Largest dependencies")
		for _, e := range head(r.Largest, maxShownLargest) {
			printKeyValue(w, e.Label, analysis.FormatSize(e.Bytes))
		}
	}

	if r.Enrichment != nil {
		writeEnrichment(w, r)
	}
}

func writeEnrichment(w io.Writer, r *analysis.Report) {
	e := r.Enrichment
	printHeading(w, "Checks")

	if e.Outdated.Checked() {
		printCheckSummary(w, "Outdated", len(e.Outdated.Items))
		for _, o := range head(e.Outdated.Items, maxShownFindings) {
			printDetail(w, "%s %s %s %s", o.Name, o.Current, iconArrow, o.Latest)
		}
	} else {
		printNotChecked(w, "Outdated", e.Outdated.Reason)
	}

	if e.Security.Checked() {
		printCheckSummary(w, "Security", len(e.Security.Items))
		for _, s := range head(e.Security.Items, maxShownFindings) {
			printDetail(w, "%s - %s (severity %s)", StyleDanger.Render(s.Package), s.Advisory, s.Severity)
		}
	} else {
		printNotChecked(w, "Security", e.Security.Reason)
	}

	if e.Unused.Checked() {
		printCheckSummary(w, "Unused", len(e.Unused.Items))
		for _, u := range head(e.Unused.Items, maxShownFindings) {
			printDetail(w, "%s", u)
		}
	} else {
		printNotChecked(w, "Unused", e.Unused.Reason)
	}
}

func printCheckSummary(w io.Writer, name string, found int) {
	if found == 0 {
		printSuccess(w, "%s: checked, none found", name)
		return
	}
	printWarning(w, "%s: %d found", name, found)
}

func printNotChecked(w io.Writer, name, reason string) {
	printInfo(w, "%s: %s", name, StyleDim.Render("not checked ("+reason+")"))
}

func printMore(w io.Writer, total, shown int) {
	if total > shown {
		printDetail(w, "... and %d more", total-shown)
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
