package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "cargo metadata")
	p.OnLoadComplete(ctx, "cargo metadata", 100, 250, time.Second, nil)
	p.OnAnalyzeComplete(ctx, 100, 3, 0, time.Millisecond)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "metadata")
	c.OnCacheMiss(ctx, "tool")
	c.OnCacheSet(ctx, "tool", 1024)

	// Tool hooks
	NoopToolHooks{}.OnToolComplete(ctx, "audit", 1, time.Second, nil)

	// HTTP hooks
	NoopHTTPHooks{}.OnResponse(ctx, "GET", "/analysis", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Tool().(NoopToolHooks); !ok {
		t.Error("Tool() should return NoopToolHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customTool := &testToolHooks{}
	SetToolHooks(customTool)
	if Tool() != customTool {
		t.Error("SetToolHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Tool().(NoopToolHooks); !ok {
		t.Error("Reset() should restore NoopToolHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus(prometheus.NewRegistry())

	p.OnLoadComplete(ctx, "cargo metadata", 42, 80, time.Second, nil)
	p.OnLoadComplete(ctx, "cargo metadata", 0, 0, time.Second, errors.New("boom"))
	if got := testutil.ToFloat64(p.loads.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.loads.WithLabelValues("error")); got != 1 {
		t.Errorf("error loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.graphNodes); got != 42 {
		t.Errorf("graph nodes = %v, want 42 (failed load must not reset it)", got)
	}

	p.OnAnalyzeComplete(ctx, 42, 3, 1, time.Millisecond)
	if got := testutil.ToFloat64(p.duplicates); got != 3 {
		t.Errorf("duplicates = %v, want 3", got)
	}

	p.OnCacheHit(ctx, "tool")
	p.OnCacheMiss(ctx, "tool")
	p.OnCacheSet(ctx, "tool", 512)
	if got := testutil.ToFloat64(p.cacheEvents.WithLabelValues("tool", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes.WithLabelValues("tool")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}

	p.OnToolComplete(ctx, "audit", 0, time.Second, nil)
	p.OnToolComplete(ctx, "audit", 1, time.Second, nil)
	p.OnToolComplete(ctx, "unused", -1, 0, errors.New("not installed"))
	for _, tc := range []struct{ check, outcome string }{
		{"audit", "ok"}, {"audit", "nonzero_exit"}, {"unused", "error"},
	} {
		if got := testutil.ToFloat64(p.toolRuns.WithLabelValues(tc.check, tc.outcome)); got != 1 {
			t.Errorf("tool runs %s/%s = %v, want 1", tc.check, tc.outcome, got)
		}
	}

	p.OnResponse(ctx, "GET", "/path", 404, time.Millisecond)
	if got := testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "/path", "404")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestNewPrometheusRegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	p.OnLoadComplete(context.Background(), "lockfile", 1, 0, time.Millisecond, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "treasuremap_graph_nodes" {
			found = true
		}
	}
	if !found {
		t.Error("treasuremap_graph_nodes not registered")
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testToolHooks struct{ NoopToolHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
