package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface by recording Prometheus
// metrics under the "treasuremap_" namespace.
type Prometheus struct {
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	graphNodes   prometheus.Gauge
	graphEdges   prometheus.Gauge
	duplicates   prometheus.Gauge
	cycles       prometheus.Gauge

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	toolRuns     *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheus creates the metrics and registers them with reg.
// It panics if a metric is already registered, as promauto does.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treasuremap_loads_total",
			Help: "Graph loads by result",
		}, []string{"result"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treasuremap_load_duration_seconds",
			Help:    "Time to load metadata and build the graph",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		graphNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "treasuremap_graph_nodes",
			Help: "Packages in the most recently loaded graph",
		}),
		graphEdges: f.NewGauge(prometheus.GaugeOpts{
			Name: "treasuremap_graph_edges",
			Help: "Dependency edges in the most recently loaded graph",
		}),
		duplicates: f.NewGauge(prometheus.GaugeOpts{
			Name: "treasuremap_duplicate_dependencies",
			Help: "Crates present in more than one version in the last report",
		}),
		cycles: f.NewGauge(prometheus.GaugeOpts{
			Name: "treasuremap_cycles",
			Help: "Cycles found in the last report",
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treasuremap_cache_events_total",
			Help: "Cache lookups and writes by key type and event",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treasuremap_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		toolRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treasuremap_tool_runs_total",
			Help: "External tool invocations by check and outcome",
		}, []string{"check", "outcome"}),
		toolDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treasuremap_tool_duration_seconds",
			Help:    "External tool run time by check",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"check"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treasuremap_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treasuremap_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (p *Prometheus) OnLoadStart(context.Context, string) {}

func (p *Prometheus) OnLoadComplete(_ context.Context, _ string, nodeCount, edgeCount int, duration time.Duration, err error) {
	p.loadDuration.Observe(duration.Seconds())
	if err != nil {
		p.loads.WithLabelValues("error").Inc()
		return
	}
	p.loads.WithLabelValues("ok").Inc()
	p.graphNodes.Set(float64(nodeCount))
	p.graphEdges.Set(float64(edgeCount))
}

func (p *Prometheus) OnAnalyzeComplete(_ context.Context, _ int, duplicates, cycles int, _ time.Duration) {
	p.duplicates.Set(float64(duplicates))
	p.cycles.Set(float64(cycles))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnToolComplete(_ context.Context, check string, exitCode int, duration time.Duration, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case exitCode != 0:
		outcome = "nonzero_exit"
	}
	p.toolRuns.WithLabelValues(check, outcome).Inc()
	p.toolDuration.WithLabelValues(check).Observe(duration.Seconds())
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ ToolHooks     = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
