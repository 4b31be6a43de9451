package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusMetrics_RegistersAndRecords(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	m.RecordFilesScanned(100)
	m.RecordBatchFused(1.5, 40)
	m.RecordBatchFused(0.5, 10)
	m.RecordBatchFailed()
	m.RecordPatentsSerialized(50)
	m.RecordMergedPatents(7)
	m.RecordTempFileDeleted()

	families, err := registry.Gather()
	require.NoError(t, err)

	counters := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() != nil {
				counters[family.GetName()] = metric.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 100.0, counters["patentfusion_files_scanned_total"])
	assert.Equal(t, 2.0, counters["patentfusion_batches_fused_total"])
	assert.Equal(t, 1.0, counters["patentfusion_batches_failed_total"])
	assert.Equal(t, 50.0, counters["patentfusion_patents_fused_total"])
	assert.Equal(t, 50.0, counters["patentfusion_patents_serialized_total"])
	assert.Equal(t, 7.0, counters["patentfusion_merged_patents_total"])
	assert.Equal(t, 1.0, counters["patentfusion_temp_files_deleted_total"])
}

func TestNewPrometheusMetrics_DuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics(registry)
	assert.Error(t, err)
}

func TestNoopMetrics_AllMethodsAreSafe(t *testing.T) {
	t.Parallel()

	m := NewNoopMetrics()
	m.RecordFilesScanned(1)
	m.RecordBatchFused(1, 1)
	m.RecordBatchFailed()
	m.RecordPatentsSerialized(1)
	m.RecordMergedPatents(1)
	m.RecordTempFileDeleted()
}
