package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the Stagehand runtime.
// A Metrics built from a disabled config is a safe no-op; all record
// methods tolerate the nil receiver as well.
type Metrics struct {
	config MetricsConfig

	// Actor lifecycle metrics
	actorsRegistered   *prometheus.CounterVec
	actorsUnregistered prometheus.Counter
	activeActors       prometheus.Gauge

	// Supervision metrics
	restarts    *prometheus.CounterVec
	escalations prometheus.Counter

	// Dependency graph metrics
	dependencyEdges prometheus.Gauge
	cyclesDetected  prometheus.Counter

	// Persistence metrics
	persistenceOps      *prometheus.CounterVec
	persistenceErrors   *prometheus.CounterVec
	persistenceDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		actorsRegistered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actors_registered_total",
				Help:      "Total number of actor registrations",
			},
			[]string{"persist"},
		),
		actorsUnregistered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actors_unregistered_total",
				Help:      "Total number of actor unregistrations",
			},
		),
		activeActors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_actors",
				Help:      "Number of currently registered actors",
			},
		),
		restarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "supervised_restarts_total",
				Help:      "Total number of supervised actor restarts",
			},
			[]string{"actor_id"},
		),
		escalations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "supervised_escalations_total",
				Help:      "Total number of errors escalated to the root aggregator",
			},
		),
		dependencyEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dependency_edges",
				Help:      "Number of dependency edges in the graph",
			},
		),
		cyclesDetected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dependency_cycles_detected_total",
				Help:      "Total number of dependency cycles detected during ordering",
			},
		),
		persistenceOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_operations_total",
				Help:      "Total number of persistence guard operations",
			},
			[]string{"operation"},
		),
		persistenceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_errors_total",
				Help:      "Total number of persistence errors by kind",
			},
			[]string{"operation", "kind"},
		),
		persistenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "persistence_operation_duration_seconds",
				Help:      "Duration of persistence guard operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	collectors := []prometheus.Collector{
		m.actorsRegistered,
		m.actorsUnregistered,
		m.activeActors,
		m.restarts,
		m.escalations,
		m.dependencyEdges,
		m.cyclesDetected,
		m.persistenceOps,
		m.persistenceErrors,
		m.persistenceDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// enabled reports whether this instance records anything.
func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

// RecordRegistration records an actor registration.
func (m *Metrics) RecordRegistration(persist bool) {
	if !m.enabled() {
		return
	}
	m.actorsRegistered.WithLabelValues(fmt.Sprintf("%t", persist)).Inc()
}

// RecordUnregistration records an actor unregistration.
func (m *Metrics) RecordUnregistration() {
	if !m.enabled() {
		return
	}
	m.actorsUnregistered.Inc()
}

// SetActiveActors updates the active actor gauge.
func (m *Metrics) SetActiveActors(count float64) {
	if !m.enabled() {
		return
	}
	m.activeActors.Set(count)
}

// RecordRestart records a supervised restart of the given actor.
func (m *Metrics) RecordRestart(actorID string) {
	if !m.enabled() {
		return
	}
	m.restarts.WithLabelValues(actorID).Inc()
}

// RecordEscalation records an error escalated to the root aggregator.
func (m *Metrics) RecordEscalation() {
	if !m.enabled() {
		return
	}
	m.escalations.Inc()
}

// SetDependencyEdges updates the dependency edge gauge.
func (m *Metrics) SetDependencyEdges(count float64) {
	if !m.enabled() {
		return
	}
	m.dependencyEdges.Set(count)
}

// RecordCycleDetected records a dependency cycle broken during ordering.
func (m *Metrics) RecordCycleDetected() {
	if !m.enabled() {
		return
	}
	m.cyclesDetected.Inc()
}

// RecordPersistenceOp records a persistence guard operation and its outcome.
// kind is empty for successful operations.
func (m *Metrics) RecordPersistenceOp(operation string, duration time.Duration, kind string) {
	if !m.enabled() {
		return
	}
	m.persistenceOps.WithLabelValues(operation).Inc()
	m.persistenceDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if kind != "" {
		m.persistenceErrors.WithLabelValues(operation, kind).Inc()
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer starts the metrics HTTP server on the configured
// address. It blocks; callers typically run it in a goroutine.
func (m *Metrics) StartMetricsServer() error {
	if !m.enabled() {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	return http.ListenAndServe(m.config.ListenAddress, mux)
}
