// Package metrics exports fishbone observability events as Prometheus
// metrics.
//
// Metrics are registered on the default registry through promauto. Call
// [Register] once at startup to route observability hooks here, then mount
// [Handler] on the HTTP service.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/fishbone/pkg/observability"
)

var (
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fishbone_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage", "status"},
	)

	TreeNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fishbone_tree_nodes",
			Help:    "Number of nodes in loaded cause trees",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	SimulationTicks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fishbone_simulation_ticks",
			Help:    "Ticks taken by layout simulations to settle",
			Buckets: []float64{10, 50, 100, 200, 300, 400, 500, 750, 1000},
		},
	)

	SimulationDiverged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fishbone_simulation_diverged_total",
			Help: "Layout simulations terminated by numerical divergence",
		},
	)

	SimulationRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishbone_simulation_restarts_total",
			Help: "Simulation energy resets by cause",
		},
		[]string{"reason"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishbone_cache_requests_total",
			Help: "Cache lookups by key type and result",
		},
		[]string{"key_type", "result"},
	)

	CacheBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishbone_cache_bytes_written_total",
			Help: "Bytes written to the cache",
		},
		[]string{"key_type"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fishbone_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fishbone_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fishbone_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)
)

// Hooks implements every observability hook interface on top of the
// package metrics.
type Hooks struct{}

var (
	_ observability.PipelineHooks   = Hooks{}
	_ observability.SimulationHooks = Hooks{}
	_ observability.CacheHooks      = Hooks{}
	_ observability.HTTPHooks       = Hooks{}
)

// Register routes all observability hooks to Prometheus.
func Register() {
	h := Hooks{}
	observability.SetPipelineHooks(h)
	observability.SetSimulationHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (Hooks) OnLoadStart(context.Context, string) {}

func (Hooks) OnLoadComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	StageDuration.WithLabelValues("load", status(err)).Observe(d.Seconds())
	if err == nil {
		TreeNodes.Observe(float64(nodeCount))
	}
}

func (Hooks) OnLayoutStart(context.Context, string, int) {}

func (Hooks) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	StageDuration.WithLabelValues("layout", status(err)).Observe(d.Seconds())
}

func (Hooks) OnRenderStart(context.Context, []string) {}

func (Hooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	StageDuration.WithLabelValues("render", status(err)).Observe(d.Seconds())
}

func (Hooks) OnSettled(_ context.Context, ticks int, _ float64, _ time.Duration) {
	SimulationTicks.Observe(float64(ticks))
}

func (Hooks) OnDiverged(context.Context, int, error) {
	SimulationDiverged.Inc()
}

func (Hooks) OnRestart(_ context.Context, reason string) {
	SimulationRestarts.WithLabelValues(reason).Inc()
}

func (Hooks) OnCacheHit(_ context.Context, keyType string) {
	CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (Hooks) OnCacheMiss(_ context.Context, keyType string) {
	CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	CacheBytesWritten.WithLabelValues(keyType).Add(float64(size))
}

func (Hooks) OnRequest(context.Context, string, string) {
	HTTPInFlight.Inc()
}

func (Hooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	HTTPInFlight.Dec()
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
