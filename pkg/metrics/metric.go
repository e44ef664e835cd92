package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry. search and api metrics on a private prometheus registry.
type Registry struct {
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	SearchIterations *prometheus.HistogramVec
	RouteEdges       *prometheus.HistogramVec
	CacheHitsTotal   *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WebsocketFrames     prometheus.Counter

	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	GridBlockedCells prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	r := &Registry{
		registry: reg,
	}
	r.initSearchMetrics()
	r.initHTTPMetrics()
	r.initMapMetrics()
	return r
}

func (r *Registry) initSearchMetrics() {
	r.SearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "swarmnav_searches_total",
			Help: "Total number of route searches by strategy and outcome",
		},
		[]string{"strategy", "mode", "status"},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarmnav_search_duration_seconds",
			Help:    "Route search duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"strategy", "mode"},
	)

	r.SearchIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarmnav_search_iterations",
			Help:    "Rounds, iterations or steps spent per search",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"strategy", "mode"},
	)

	r.RouteEdges = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarmnav_route_length",
			Help:    "Edges (graph mode) or trace positions (raster mode) per returned route",
			Buckets: []float64{0, 5, 10, 50, 100, 500, 1000},
		},
		[]string{"strategy", "mode"},
	)

	r.CacheHitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "swarmnav_route_cache_total",
			Help: "Route cache lookups by result",
		},
		[]string{"result"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "swarmnav_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarmnav_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	r.WebsocketFrames = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "swarmnav_websocket_frames_total",
			Help: "Convergence frames written to websocket clients",
		},
	)
}

func (r *Registry) initMapMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "swarmnav_graph_nodes",
		Help: "Nodes in the loaded road graph",
	})
	r.GraphEdges = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "swarmnav_graph_edges",
		Help: "Directed edges in the loaded road graph",
	})
	r.GridBlockedCells = promauto.With(r.registry).NewGauge(prometheus.GaugeOpts{
		Name: "swarmnav_grid_blocked_cells",
		Help: "Blocked cells in the loaded hazard grid",
	})
}

func (r *Registry) RecordSearch(strategy, mode, status string, duration time.Duration, iterations, routeLen int) {
	r.SearchesTotal.WithLabelValues(strategy, mode, status).Inc()
	r.SearchDuration.WithLabelValues(strategy, mode).Observe(duration.Seconds())
	r.SearchIterations.WithLabelValues(strategy, mode).Observe(float64(iterations))
	r.RouteEdges.WithLabelValues(strategy, mode).Observe(float64(routeLen))
}

func (r *Registry) RecordCacheLookup(hit bool) {
	if hit {
		r.CacheHitsTotal.WithLabelValues("hit").Inc()
		return
	}
	r.CacheHitsTotal.WithLabelValues("miss").Inc()
}

func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (r *Registry) SetMapStats(nodes, edges, blockedCells int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.GridBlockedCells.Set(float64(blockedCells))
}

func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler. exposition endpoint for this registry only.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
