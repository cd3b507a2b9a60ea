package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/tournament-api/internal/platform/cache"
	"github.com/riskibarqy/tournament-api/internal/platform/resilience"
)

const metricsNamespace = "tournament_api"

// Metrics owns a private prometheus registry. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry           *prometheus.Registry
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	realtimeDeliveries *prometheus.CounterVec
	realtimeDuration   *prometheus.HistogramVec
	circuitState       *prometheus.GaugeVec
	circuitChanges     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		realtimeDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "realtime",
			Name:      "deliveries_total",
			Help:      "Real-time mirror deliveries by sink, operation and outcome.",
		}, []string{"sink", "operation", "outcome"}),
		realtimeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "realtime",
			Name:      "delivery_duration_seconds",
			Help:      "Real-time mirror delivery latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"sink", "operation"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "circuit",
			Name:      "state",
			Help:      "Circuit breaker state per dependency: 0 closed, 1 half-open, 2 open.",
		}, []string{"breaker"}),
		circuitChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "circuit",
			Name:      "transitions_total",
			Help:      "Circuit breaker state changes by dependency and target state.",
		}, []string{"breaker", "to"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.realtimeDeliveries,
		m.realtimeDuration,
		m.circuitState,
		m.circuitChanges,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRealtimeDelivery records one mirror call. Outcome is ok, error or dropped.
func (m *Metrics) ObserveRealtimeDelivery(sink, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.realtimeDeliveries.WithLabelValues(sink, operation, outcome).Inc()
	if outcome != "dropped" {
		m.realtimeDuration.WithLabelValues(sink, operation).Observe(elapsed.Seconds())
	}
}

// ObserveCircuitTransition matches resilience.StateListener.
func (m *Metrics) ObserveCircuitTransition(name string, _, to resilience.CircuitState) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(name).Set(circuitStateValue(to))
	m.circuitChanges.WithLabelValues(name, string(to)).Inc()
}

func circuitStateValue(state resilience.CircuitState) float64 {
	switch state {
	case resilience.CircuitStateHalfOpen:
		return 1
	case resilience.CircuitStateOpen:
		return 2
	default:
		return 0
	}
}

// RegisterCacheStats exposes hit, miss and size gauges for a cache store.
func (m *Metrics) RegisterCacheStats(name string, stats func() cache.Stats) {
	if m == nil || stats == nil {
		return
	}
	labels := prometheus.Labels{"cache": name}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "hits_total",
			Help:        "Cache lookups served from memory.",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "misses_total",
			Help:        "Cache lookups that went to the repository.",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "entries",
			Help:        "Entries currently held.",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Entries) }),
	)
}

// RegisterGauge exposes a sampled value such as open websocket connections.
func (m *Metrics) RegisterGauge(subsystem, name, help string, sample func() float64) {
	if m == nil || sample == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, sample))
}
