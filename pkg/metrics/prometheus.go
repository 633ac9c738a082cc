// Package metrics provides Prometheus metrics for the autocal pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the autocal pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Recording-level outcomes
	recordingsProcessed prometheus.Counter
	recordingsFailed    prometheus.Counter
	duplicateInputs     prometheus.Counter
	recordingDuration   prometheus.Histogram

	// Fit-level outcomes
	fitsAccepted prometheus.Counter
	fitsRejected *prometheus.CounterVec

	// Fit shape
	fitIterations    prometheus.Histogram
	windowExpansions prometheus.Histogram
	stillSamples     prometheus.Gauge
	calErrorStart    prometheus.Gauge
	calErrorEnd      prometheus.Gauge

	// Batch pipeline health
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	workerCount      prometheus.Gauge
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
		namespace:        "autocal",
		subsystem:        "calibration",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordingsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recordings_processed_total",
		Help:      "Total number of recordings run through calibration",
	})

	m.recordingsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recordings_failed_total",
		Help:      "Total number of recordings that failed to load, calibrate or write",
	})

	m.duplicateInputs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_inputs_total",
		Help:      "Total number of input files skipped because they were already queued",
	})

	m.recordingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recording_duration_seconds",
		Help:      "Wall time spent per recording (load, calibrate, write)",
		Buckets:   m.histogramBuckets,
	})

	m.fitsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fits_accepted_total",
		Help:      "Total number of accepted closest-point fits",
	})

	m.fitsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fits_rejected_total",
			Help:      "Total number of rejected fits by rejection reason",
		},
		[]string{"reason"},
	)

	m.fitIterations = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fit_iterations",
		Help:      "Closest-point iterations used by the accepting fit",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	m.windowExpansions = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_expansions",
		Help:      "Number of 12-hour window expansions before acceptance or give-up",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	m.stillSamples = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "still_samples",
		Help:      "Still samples selected by the most recent fit",
	})

	m.calErrorStart = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_start_g",
		Help:      "Calibration error before the most recent accepted fit, in g",
	})

	m.calErrorEnd = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_end_g",
		Help:      "Calibration error after the most recent accepted fit, in g",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the batch job queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the batch job queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue fill ratio (size / capacity)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of calibration workers in the pool",
	})
}

// Handler exposes the custom registry for a /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Package-level helpers backed by the global manager.

func RecordRecordingProcessed()          { globalManager.recordingsProcessed.Inc() }
func RecordRecordingFailed()             { globalManager.recordingsFailed.Inc() }
func RecordDuplicateInput()              { globalManager.duplicateInputs.Inc() }
func ObserveRecordingDuration(s float64) { globalManager.recordingDuration.Observe(s) }

func RecordFitAccepted()              { globalManager.fitsAccepted.Inc() }
func RecordFitRejected(reason string) { globalManager.fitsRejected.WithLabelValues(reason).Inc() }

func ObserveFitIterations(n int)    { globalManager.fitIterations.Observe(float64(n)) }
func ObserveWindowExpansions(n int) { globalManager.windowExpansions.Observe(float64(n)) }
func UpdateStillSamples(n int)      { globalManager.stillSamples.Set(float64(n)) }

func UpdateCalibrationError(start, end float64) {
	globalManager.calErrorStart.Set(start)
	globalManager.calErrorEnd.Set(end)
}

func UpdateQueueSize(n int)            { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)        { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(r float64) { globalManager.queueUtilization.Set(r) }
func UpdateWorkerCount(n int)          { globalManager.workerCount.Set(float64(n)) }
