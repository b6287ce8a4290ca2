package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treasuremap/pkg/analysis"
	"github.com/matzehuels/treasuremap/pkg/cache"
	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/graph"
	"github.com/matzehuels/treasuremap/pkg/metadata"
	"github.com/matzehuels/treasuremap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating loading logic.
//
// The Runner is stateless except for its collaborators; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Source metadata.Source
	// Enricher runs the external checks. Nil disables enrichment even when
	// Options.Enrich is set.
	Enricher Enricher
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner for the given source.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src metadata.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Analyze runs load, analysis and, when requested, enrichment.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	g, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.MetadataHit = hit

	// Stage 2: Analyze
	analyzeStart := time.Now()
	report := analysis.Analyze(g, analysis.Options{TopN: opts.TopN})
	result.Report = report
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	observability.Pipeline().OnAnalyzeComplete(ctx, g.NodeCount(), len(report.Duplicates), len(report.Cycles), result.Stats.AnalyzeTime)

	r.logger().Info("analyzed graph",
		"run_id", report.RunID,
		"duplicates", len(report.Duplicates),
		"cycles", len(report.Cycles),
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Enrich
	if opts.Enrich {
		if r.Enricher == nil {
			r.logger().Warn("enrichment requested but no checker configured")
		} else {
			enrichStart := time.Now()
			res := r.Enricher.CheckAll(ctx)
			report.Enrichment = &res
			result.Stats.EnrichTime = time.Since(enrichStart)
			r.logger().Info("enriched report",
				"outdated", res.Outdated.Status,
				"security", res.Security.Status,
				"unused", res.Unused.Status,
				"duration", result.Stats.EnrichTime)
		}
	}

	return result, nil
}

// Load builds the annotated dependency graph.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.LoadWithCacheInfo(ctx, opts)
	return g, err
}

// LoadWithCacheInfo builds the annotated dependency graph and reports
// whether the metadata snapshot came from cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if r.Source == nil {
		return nil, false, apperrors.New(apperrors.ErrCodeInvalidInput, "no metadata source configured")
	}
	desc := r.Source.Describe()

	observability.Pipeline().OnLoadStart(ctx, desc)
	start := time.Now()
	g, hit, err := r.load(ctx, opts)
	elapsed := time.Since(start)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, desc, 0, 0, elapsed, err)
		return nil, false, err
	}
	observability.Pipeline().OnLoadComplete(ctx, desc, g.NodeCount(), g.EdgeCount(), elapsed, nil)

	r.logger().Info("loaded dependencies",
		"source", desc,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", elapsed)
	return g, hit, nil
}

func (r *Runner) load(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	md, hit, err := r.metadata(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	g, err := graph.Build(md, opts.buildOptions()...)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "build graph")
	}
	graph.AnnotateDepths(g)
	return g, hit, nil
}

// metadata loads a snapshot, going through the cache for sources that can
// fingerprint their inputs.
func (r *Runner) metadata(ctx context.Context, opts Options) (*metadata.Metadata, bool, error) {
	fp, ok := r.Source.(Fingerprinter)
	if !ok {
		md, err := r.Source.Load(ctx)
		return md, false, err
	}
	sum, err := fp.Fingerprint()
	if err != nil {
		r.logger().Debug("metadata not cacheable", "error", err)
		md, err := r.Source.Load(ctx)
		return md, false, err
	}
	key := r.keyer().MetadataKey(sum, cache.MetadataKeyOpts{Source: r.Source.Describe()})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.cache().Get(ctx, key); err == nil && hit {
			var md metadata.Metadata
			if err := json.Unmarshal(data, &md); err == nil {
				observability.Cache().OnCacheHit(ctx, "metadata")
				return &md, true, nil
			}
			// If deserialization fails, fall through to reload
		}
		observability.Cache().OnCacheMiss(ctx, "metadata")
	}

	md, err := r.Source.Load(ctx)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(md); err == nil {
		if err := r.cache().Set(ctx, key, data, cache.TTLMetadata); err == nil {
			observability.Cache().OnCacheSet(ctx, "metadata", len(data))
		} else {
			r.logger().Debug("metadata cache write failed", "error", err)
		}
	}
	return md, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cache() cache.Cache {
	if r.Cache == nil {
		return cache.NewNullCache()
	}
	return r.Cache
}

func (r *Runner) keyer() cache.Keyer {
	if r.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return r.Keyer
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return discardLogger
	}
	return r.Logger
}

var discardLogger = log.NewWithOptions(io.Discard, log.Options{})
