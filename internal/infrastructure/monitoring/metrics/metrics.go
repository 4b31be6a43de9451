// Package metrics defines the engine's operational telemetry contract and
// its Prometheus-backed implementation.  Components record through the
// PipelineMetrics interface so the backend (Prometheus, noop) can be swapped
// without touching pipeline code; tests inject the noop collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsPrefix namespaces every engine metric.
const metricsPrefix = "patentfusion_"

// defaultDurationBuckets covers batch durations from 10ms to 5 minutes.
var defaultDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300}

// PipelineMetrics is the unified telemetry API for both pipeline phases.
type PipelineMetrics interface {
	// RecordFilesScanned records the corpus size discovered by the scanner.
	RecordFilesScanned(count int)

	// RecordBatchFused records one completed fusion batch.
	RecordBatchFused(durationSeconds float64, patents int)

	// RecordBatchFailed records a fusion batch that yielded no temp file.
	RecordBatchFailed()

	// RecordPatentsSerialized records patents written by the Phase-B sinks.
	RecordPatentsSerialized(count int)

	// RecordMergedPatents records patents fused from more than one kind code.
	RecordMergedPatents(count int)

	// RecordTempFileDeleted records one temp tree removed after consumption.
	RecordTempFileDeleted()
}

// ─────────────────────────────────────────────────────────────────────────────
// Prometheus implementation
// ─────────────────────────────────────────────────────────────────────────────

type prometheusMetrics struct {
	filesScanned      prometheus.Counter
	batchesFused      prometheus.Counter
	batchesFailed     prometheus.Counter
	batchDuration     prometheus.Histogram
	patentsFused      prometheus.Counter
	patentsSerialized prometheus.Counter
	mergedPatents     prometheus.Counter
	tempFilesDeleted  prometheus.Counter
}

// NewPrometheusMetrics creates a Prometheus-backed collector and registers
// every metric with the supplied Registerer (the default registerer when nil).
func NewPrometheusMetrics(registerer prometheus.Registerer) (PipelineMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &prometheusMetrics{
		filesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "files_scanned_total",
			Help: "Number of XML files discovered by the path scanner.",
		}),
		batchesFused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "batches_fused_total",
			Help: "Number of batches successfully fused into temp trees.",
		}),
		batchesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "batches_failed_total",
			Help: "Number of fusion batches that yielded no temp file.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricsPrefix + "batch_fusion_duration_seconds",
			Help:    "Wall-clock duration of one batch fusion.",
			Buckets: defaultDurationBuckets,
		}),
		patentsFused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "patents_fused_total",
			Help: "Number of virtual patents produced by the fusion engine.",
		}),
		patentsSerialized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "patents_serialized_total",
			Help: "Number of virtual patents written by the output sinks.",
		}),
		mergedPatents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "merged_patents_total",
			Help: "Number of virtual patents merged from more than one kind code.",
		}),
		tempFilesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "temp_files_deleted_total",
			Help: "Number of temp trees deleted after consumption.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.filesScanned, m.batchesFused, m.batchesFailed, m.batchDuration,
		m.patentsFused, m.patentsSerialized, m.mergedPatents, m.tempFilesDeleted,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *prometheusMetrics) RecordFilesScanned(count int) {
	m.filesScanned.Add(float64(count))
}

func (m *prometheusMetrics) RecordBatchFused(durationSeconds float64, patents int) {
	m.batchesFused.Inc()
	m.batchDuration.Observe(durationSeconds)
	m.patentsFused.Add(float64(patents))
}

func (m *prometheusMetrics) RecordBatchFailed() {
	m.batchesFailed.Inc()
}

func (m *prometheusMetrics) RecordPatentsSerialized(count int) {
	m.patentsSerialized.Add(float64(count))
}

func (m *prometheusMetrics) RecordMergedPatents(count int) {
	m.mergedPatents.Add(float64(count))
}

func (m *prometheusMetrics) RecordTempFileDeleted() {
	m.tempFilesDeleted.Inc()
}

// ─────────────────────────────────────────────────────────────────────────────
// Noop implementation
// ─────────────────────────────────────────────────────────────────────────────

type noopMetrics struct{}

// NewNoopMetrics returns a collector that records nothing.  It is the
// default for library use and unit tests.
func NewNoopMetrics() PipelineMetrics { return noopMetrics{} }

func (noopMetrics) RecordFilesScanned(int)        {}
func (noopMetrics) RecordBatchFused(float64, int) {}
func (noopMetrics) RecordBatchFailed()            {}
func (noopMetrics) RecordPatentsSerialized(int)   {}
func (noopMetrics) RecordMergedPatents(int)       {}
func (noopMetrics) RecordTempFileDeleted()        {}
