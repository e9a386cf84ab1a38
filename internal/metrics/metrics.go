package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// RouteComputations counts path searches by algorithm and outcome
	RouteComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_computations_total", Help: "Route computations by algorithm and outcome."},
		[]string{"algorithm", "outcome"},
	)
	// RouteCache counts cache lookups by result (hit, miss, expired)
	RouteCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_cache_lookups_total", Help: "Route cache lookups by result."},
		[]string{"result"},
	)
	// CacheInvalidations counts cached routes dropped by segment updates
	CacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "route_cache_invalidations_total", Help: "Cached routes invalidated by segment updates."},
	)
	// SegmentUpdates counts condition/traffic mutations
	SegmentUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "segment_updates_total", Help: "Segment updates by type."},
		[]string{"type"},
	)
	// OptimizerRuns tracks optimizer executions and their duration
	OptimizerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_runs_total", Help: "Optimizer runs by algorithm and outcome."},
		[]string{"algorithm", "outcome"},
	)
	OptimizerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimizer_duration_seconds", Help: "Optimizer run duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15}},
		[]string{"algorithm"},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(RouteComputations)
		Registry.MustRegister(RouteCache)
		Registry.MustRegister(CacheInvalidations)
		Registry.MustRegister(SegmentUpdates)
		Registry.MustRegister(OptimizerRuns)
		Registry.MustRegister(OptimizerDuration)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
