// Package metrics exports scheduling and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "batch_scheduler"

// Recorder owns the scheduler collectors and the registry they are exposed
// through.
type Recorder struct {
	registry *prometheus.Registry

	expansions      *prometheus.CounterVec
	expandedDates   *prometheus.HistogramVec
	conflicts       prometheus.Counter
	reschedules     prometheus.Counter
	cacheLookups    *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder registers every collector on a fresh registry. Process and Go
// runtime collectors are included when withRuntime is true.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		expansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Schedule expansions by pattern.",
		}, []string{"pattern"}),
		expandedDates: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expanded_sessions",
			Help:      "Number of session dates produced per expansion.",
			Buckets:   []float64{0, 1, 4, 8, 12, 24, 48, 96},
		}, []string{"pattern"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_conflicts_total",
			Help:      "Reschedule attempts blocked by an overlapping session.",
		}),
		reschedules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_rescheduled_total",
			Help:      "Sessions moved to a new date or time.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_cache_lookups_total",
			Help:      "Session list cache lookups by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		r.expansions,
		r.expandedDates,
		r.conflicts,
		r.reschedules,
		r.cacheLookups,
		r.requests,
		r.requestDuration,
	)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveExpansion records one schedule expansion.
func (r *Recorder) ObserveExpansion(pattern string, sessions int) {
	if r == nil {
		return
	}
	r.expansions.WithLabelValues(pattern).Inc()
	r.expandedDates.WithLabelValues(pattern).Observe(float64(sessions))
}

// ConflictDetected records a reschedule blocked by an overlap.
func (r *Recorder) ConflictDetected() {
	if r == nil {
		return
	}
	r.conflicts.Inc()
}

// SessionRescheduled records a successful reschedule.
func (r *Recorder) SessionRescheduled() {
	if r == nil {
		return
	}
	r.reschedules.Inc()
}

// SessionCacheLookup records a session cache hit or miss.
func (r *Recorder) SessionCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
