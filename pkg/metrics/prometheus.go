// Package metrics provides Prometheus metrics for the surfelo rating engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a rating run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Engine metrics
	matchesProcessed  prometheus.Counter
	matchesSkipped    *prometheus.CounterVec
	ratingDelta       prometheus.Histogram
	suspiciousChanges prometheus.Counter
	playersTotal      prometheus.Gauge

	// Decay metrics
	decaySweeps    prometheus.Counter
	playersDecayed prometheus.Counter

	// Batch and adapter metrics
	batchDuration   prometheus.Histogram
	inputRowsRead   *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
	persistErrors   *prometheus.CounterVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "surfelo",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.matchesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("matches_processed_total"),
		Help:        "Total number of matches folded into the ratings",
		ConstLabels: labels,
	})

	m.matchesSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("matches_skipped_total"),
			Help:        "Total number of match rows skipped, by reason",
			ConstLabels: labels,
		},
		[]string{"reason"},
	)

	m.ratingDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rating_delta_points"),
		Help:        "Absolute rating change per player per match",
		Buckets:     []float64{1, 2, 5, 10, 20, 35, 50, 75, 100, 150, 200, 300},
		ConstLabels: labels,
	})

	m.suspiciousChanges = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("suspicious_rating_changes_total"),
		Help:        "Rating updates whose magnitude exceeded the configured ceiling",
		ConstLabels: labels,
	})

	m.playersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("players"),
		Help:        "Number of players tracked in the roster",
		ConstLabels: labels,
	})

	m.decaySweeps = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("decay_sweeps_total"),
		Help:        "Number of inactivity decay sweeps over the roster",
		ConstLabels: labels,
	})

	m.playersDecayed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("players_decayed_total"),
		Help:        "Number of player ratings pulled toward the baseline by decay",
		ConstLabels: labels,
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("batch_duration_milliseconds"),
		Help:        "Wall time of a complete batch fold in milliseconds",
		Buckets:     []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		ConstLabels: labels,
	})

	m.inputRowsRead = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("input_rows_total"),
			Help:        "Rows read from match source files",
			ConstLabels: labels,
		},
		[]string{"source"},
	)

	m.persistDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("persist_duration_milliseconds"),
			Help:        "Time spent writing ratings to an output sink",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"sink"},
	)

	m.persistErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("persist_errors_total"),
			Help:        "Failed writes to an output sink",
			ConstLabels: labels,
		},
		[]string{"sink"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)
}

// RecordMatchProcessed increments the processed matches counter.
func (m *Manager) RecordMatchProcessed() {
	if m.enabled {
		m.matchesProcessed.Inc()
	}
}

// RecordMatchSkipped increments the skipped counter for reason.
func (m *Manager) RecordMatchSkipped(reason string) {
	if m.enabled {
		m.matchesSkipped.WithLabelValues(reason).Inc()
	}
}

// RecordRatingDelta observes the absolute rating change of one player.
func (m *Manager) RecordRatingDelta(delta float64) {
	if !m.enabled {
		return
	}
	if delta < 0 {
		delta = -delta
	}
	m.ratingDelta.Observe(delta)
}

// RecordSuspiciousChange counts an oversized rating update.
func (m *Manager) RecordSuspiciousChange() {
	if m.enabled {
		m.suspiciousChanges.Inc()
	}
}

// UpdatePlayers sets the number of tracked players.
func (m *Manager) UpdatePlayers(count int) {
	if m.enabled {
		m.playersTotal.Set(float64(count))
	}
}

// RecordDecaySweep counts a sweep and the players it changed.
func (m *Manager) RecordDecaySweep(decayed int) {
	if !m.enabled {
		return
	}
	m.decaySweeps.Inc()
	m.playersDecayed.Add(float64(decayed))
}

// RecordBatchDuration observes a batch run duration in milliseconds.
func (m *Manager) RecordBatchDuration(ms float64) {
	if m.enabled {
		m.batchDuration.Observe(ms)
	}
}

// RecordInputRows counts rows read from a named source.
func (m *Manager) RecordInputRows(source string, n int) {
	if m.enabled {
		m.inputRowsRead.WithLabelValues(source).Add(float64(n))
	}
}

// RecordPersist observes a sink write and counts it as failed when err != nil.
func (m *Manager) RecordPersist(sink string, ms float64, err error) {
	if !m.enabled {
		return
	}
	m.persistDuration.WithLabelValues(sink).Observe(ms)
	if err != nil {
		m.persistErrors.WithLabelValues(sink).Inc()
	}
}

// RecordErrorByComponent records an error by component and type.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordMatchProcessed increments the processed matches counter.
func RecordMatchProcessed() { globalManager.RecordMatchProcessed() }

// RecordMatchSkipped increments the skipped counter for reason.
func RecordMatchSkipped(reason string) { globalManager.RecordMatchSkipped(reason) }

// RecordRatingDelta observes the absolute rating change of one player.
func RecordRatingDelta(delta float64) { globalManager.RecordRatingDelta(delta) }

// RecordSuspiciousChange counts an oversized rating update.
func RecordSuspiciousChange() { globalManager.RecordSuspiciousChange() }

// UpdatePlayers sets the number of tracked players.
func UpdatePlayers(count int) { globalManager.UpdatePlayers(count) }

// RecordDecaySweep counts a sweep and the players it changed.
func RecordDecaySweep(decayed int) { globalManager.RecordDecaySweep(decayed) }

// RecordBatchDuration observes a batch run duration in milliseconds.
func RecordBatchDuration(ms float64) { globalManager.RecordBatchDuration(ms) }

// RecordInputRows counts rows read from a named source.
func RecordInputRows(source string, n int) { globalManager.RecordInputRows(source, n) }

// RecordPersist observes a sink write.
func RecordPersist(sink string, ms float64, err error) { globalManager.RecordPersist(sink, ms, err) }

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// GetRegistry returns the custom Prometheus registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the global registry in the text exposition format, for
// pickup by a node-exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
