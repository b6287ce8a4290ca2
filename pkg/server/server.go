// Package server exposes a built dependency graph over a read-only HTTP API.
//
// The graph and its report are computed once before the server starts and
// never mutated, so handlers share them without locking.
//
//	GET /healthz              liveness and version
//	GET /analysis             the full report as JSON
//	GET /duplicates           duplicate dependencies
//	GET /cycles               dependency cycles
//	GET /path?from=A&to=B     shortest dependency path, 404 when none
//	GET /tree                 plain-text dependency tree
//	GET /graph.dot            Graphviz DOT
//	GET /graph.json           graph snapshot
//	GET /metrics              Prometheus metrics
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/treasuremap/pkg/analysis"
	"github.com/matzehuels/treasuremap/pkg/graph"
)

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
	// Version is reported by /healthz.
	Version string
}

// Server serves one annotated graph and its report.
type Server struct {
	graph   *graph.Graph
	report  *analysis.Report
	logger  *log.Logger
	version string
	router  chi.Router
}

// New creates a server for g. A nil report is computed with default
// options.
func New(g *graph.Graph, report *analysis.Report, opts Options) *Server {
	if report == nil {
		report = analysis.Analyze(g, analysis.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		graph:   g,
		report:  report,
		logger:  opts.Logger,
		version: opts.Version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/analysis", s.handleAnalysis)
	r.Get("/duplicates", s.handleDuplicates)
	r.Get("/cycles", s.handleCycles)
	r.Get("/path", s.handlePath)
	r.Get("/tree", s.handleTree)
	r.Get("/graph.dot", s.handleDOT)
	r.Get("/graph.json", s.handleGraphJSON)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr, "nodes", s.graph.NodeCount())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
