package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treasuremap/pkg/buildinfo"
	"github.com/matzehuels/treasuremap/pkg/observability"
	"github.com/matzehuels/treasuremap/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		enrich bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency analysis over HTTP",
		Long: `Build the graph once and serve it through a read-only JSON API.

Endpoints: /healthz, /analysis, /duplicates, /cycles, /path?from=&to=,
/tree, /graph.dot, /graph.json and /metrics (Prometheus).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
			observability.SetPipelineHooks(prom)
			observability.SetCacheHooks(prom)
			observability.SetToolHooks(prom)
			observability.SetHTTPHooks(prom)
			defer observability.Reset()

			runner, cfg, err := c.newRunner(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions(cfg)
			opts.Enrich = enrich
			res, err := runner.Analyze(ctx, opts)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			srv := server.New(res.Graph, res.Report, server.Options{
				Gatherer: prometheus.DefaultGatherer,
				Logger:   logger,
				Version:  buildinfo.Version,
			})
			printInfo(cmd.OutOrStdout(), "Serving %s on %s", StyleHighlight.Render(res.Report.Root), StyleValue.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "include cargo check results in /analysis")

	return cmd
}
