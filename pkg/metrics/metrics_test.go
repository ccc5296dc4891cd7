package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/fishbone/pkg/observability"
)

func TestRegister(t *testing.T) {
	Register()
	defer observability.Reset()

	if _, ok := observability.Cache().(Hooks); !ok {
		t.Errorf("cache hooks = %T, want Hooks", observability.Cache())
	}
	if _, ok := observability.HTTP().(Hooks); !ok {
		t.Errorf("http hooks = %T, want Hooks", observability.HTTP())
	}
}

func TestCacheCounters(t *testing.T) {
	ctx := context.Background()
	h := Hooks{}

	hits := testutil.ToFloat64(CacheRequests.WithLabelValues("layout", "hit"))
	misses := testutil.ToFloat64(CacheRequests.WithLabelValues("layout", "miss"))
	written := testutil.ToFloat64(CacheBytesWritten.WithLabelValues("layout"))

	h.OnCacheHit(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 128)

	if got := testutil.ToFloat64(CacheRequests.WithLabelValues("layout", "hit")) - hits; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheRequests.WithLabelValues("layout", "miss")) - misses; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CacheBytesWritten.WithLabelValues("layout")) - written; got != 128 {
		t.Errorf("bytes delta = %v, want 128", got)
	}
}

func TestSimulationCounters(t *testing.T) {
	ctx := context.Background()
	h := Hooks{}

	before := testutil.ToFloat64(SimulationDiverged)
	h.OnDiverged(ctx, 12, errors.New("nan"))
	if got := testutil.ToFloat64(SimulationDiverged) - before; got != 1 {
		t.Errorf("diverged delta = %v, want 1", got)
	}

	restarts := testutil.ToFloat64(SimulationRestarts.WithLabelValues("drag_start"))
	h.OnRestart(ctx, "drag_start")
	if got := testutil.ToFloat64(SimulationRestarts.WithLabelValues("drag_start")) - restarts; got != 1 {
		t.Errorf("restart delta = %v, want 1", got)
	}
}

func TestHTTPInFlight(t *testing.T) {
	ctx := context.Background()
	h := Hooks{}

	base := testutil.ToFloat64(HTTPInFlight)
	h.OnRequest(ctx, "POST", "/v1/render")
	if got := testutil.ToFloat64(HTTPInFlight) - base; got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	h.OnResponse(ctx, "POST", "/v1/render", 200, 10*time.Millisecond)
	if got := testutil.ToFloat64(HTTPInFlight) - base; got != 0 {
		t.Errorf("in flight after response = %v, want 0", got)
	}
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/v1/render", "200")); got < 1 {
		t.Errorf("requests total = %v", got)
	}
}

func TestHandler(t *testing.T) {
	Hooks{}.OnLoadComplete(context.Background(), "tree.json", 5, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fishbone_stage_duration_seconds") {
		t.Error("metrics output missing fishbone_stage_duration_seconds")
	}
}
