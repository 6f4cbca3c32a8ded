package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "hockey"

// Registry owns the service collectors. Each instance has its own
// prometheus registry so tests can build as many as they like.
type Registry struct {
	reg *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
	authOutcomes    *prometheus.CounterVec
	syncItems       *prometheus.CounterVec
	syncQueueLength prometheus.Gauge
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),
		authOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication attempts by operation and result code",
		}, []string{"operation", "result"}),
		syncItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "items_total",
			Help:      "Pending account changes processed by kind and result",
		}, []string{"kind", "result"}),
		syncQueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "queue_length",
			Help:      "Account changes waiting for the directory",
		}),
	}
}

// ObserveRequest records one served request.
func (r *Registry) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// InFlight increments the in-flight gauge and returns its decrement.
func (r *Registry) InFlight() func() {
	if r == nil {
		return func() {}
	}
	r.httpInFlight.Inc()
	return r.httpInFlight.Dec
}

// AuthOutcome counts a register, login or refresh attempt. result is "ok" or an error code.
func (r *Registry) AuthOutcome(operation, result string) {
	if r == nil {
		return
	}
	r.authOutcomes.WithLabelValues(operation, result).Inc()
}

// SyncItem counts one processed pending change.
func (r *Registry) SyncItem(kind, result string) {
	if r == nil {
		return
	}
	r.syncItems.WithLabelValues(kind, result).Inc()
}

// SyncQueueLength sets the pending change gauge.
func (r *Registry) SyncQueueLength(n int) {
	if r == nil {
		return
	}
	r.syncQueueLength.Set(float64(n))
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
}
