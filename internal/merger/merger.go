// Package merger implements Phase B: a second worker pool that streams
// completed temp trees through the output sinks, deleting each temp file
// immediately after consumption so disk use stays bounded by the number of
// active workers times the batch size.
package merger

import (
	"context"
	"io"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/PatentFusion/internal/output"
	"github.com/turtacn/PatentFusion/internal/pipeline"
)

// Totals aggregates the Phase-B outcome across all workers.
type Totals struct {
	PatentsProcessed int
	MergedPatents    int
	FilesSaved       int
}

// Merger partitions the temp-file list into per-worker chunks and runs the
// serialization pool.  Workers never spawn further workers: each one writes
// its patents sequentially through the sinks.
type Merger struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics metrics.PipelineMetrics

	progressOut io.Writer
}

// Option configures a Merger.
type Option func(*Merger)

// WithProgressOutput directs the progress bars to w; nil disables them.
func WithProgressOutput(w io.Writer) Option {
	return func(m *Merger) { m.progressOut = w }
}

// WithMetrics injects a metrics collector.
func WithMetrics(mc metrics.PipelineMetrics) Option {
	return func(m *Merger) { m.metrics = mc }
}

// New constructs a Phase-B merger.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) *Merger {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := &Merger{
		cfg:     cfg,
		logger:  logger.Named("merger"),
		metrics: metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run consumes every temp tree and returns the aggregate totals.  Per-file
// faults are logged and cost only that file's patents; the temp file is
// deleted even on failure so a poisoned tree cannot pin disk space.
func (m *Merger) Run(ctx context.Context, tempFiles []string) (Totals, error) {
	if len(tempFiles) == 0 {
		m.logger.Warn("no temp files to process")
		return Totals{}, nil
	}

	start := time.Now()
	m.logger.Info("starting virtual patent serialization",
		logging.Int("temp_files", len(tempFiles)),
		logging.Int("memory_limit_gb", m.cfg.MemoryLimitGB),
	)

	workers := m.cfg.CPUs
	if workers > len(tempFiles) {
		workers = len(tempFiles)
	}
	chunks := partitionFiles(tempFiles, workers)

	table := pipeline.NewProgressTable(len(chunks))
	renderer := pipeline.NewProgressRenderer(table, m.progressOut, len(tempFiles), "files")

	writer := output.NewWriter(m.cfg, m.logger)

	p := pool.NewWithResults[Totals]().WithMaxGoroutines(len(chunks))
	for workerID, chunk := range chunks {
		workerID, chunk := workerID, chunk
		p.Go(func() Totals {
			return m.runWorker(ctx, writer, workerID, chunk, table)
		})
	}
	results := p.Wait()
	renderer.Stop()

	var totals Totals
	for _, r := range results {
		totals.PatentsProcessed += r.PatentsProcessed
		totals.MergedPatents += r.MergedPatents
		totals.FilesSaved += r.FilesSaved
	}

	m.logger.Info("virtual patent serialization completed",
		logging.String("elapsed", pipeline.FormatDuration(time.Since(start))),
		logging.Int("patents_processed", totals.PatentsProcessed),
		logging.Int("merged_patents", totals.MergedPatents),
		logging.Int("files_saved", totals.FilesSaved),
	)

	return totals, ctx.Err()
}

// runWorker consumes one chunk of temp files sequentially.
func (m *Merger) runWorker(ctx context.Context, writer *output.Writer, workerID int,
	chunk []string, table *pipeline.ProgressTable) Totals {

	progress := pipeline.WorkerProgress{Total: len(chunk)}
	table.Update(workerID, progress)

	var totals Totals
	for i, tempFile := range chunk {
		if ctx.Err() != nil {
			break
		}

		patents, mergedCount, saved := m.consumeTempFile(writer, tempFile)
		totals.PatentsProcessed += patents
		totals.MergedPatents += mergedCount
		totals.FilesSaved += saved

		progress.Current = i + 1
		progress.PatentsProcessed = totals.PatentsProcessed
		table.Update(workerID, progress)
	}

	progress.Current = len(chunk)
	table.Update(workerID, progress)
	return totals
}

// consumeTempFile serializes every virtual patent in one temp tree and then
// deletes it.  Deletion happens on the failure path too.
func (m *Merger) consumeTempFile(writer *output.Writer, tempFile string) (patents, mergedCount, saved int) {
	defer func() {
		pipeline.DeleteTempFile(tempFile, m.logger)
		m.metrics.RecordTempFileDeleted()
	}()

	virtualPatents, err := pipeline.ReadTempTree(tempFile)
	if err != nil {
		m.logger.Error("error processing temp file",
			logging.String("path", tempFile), logging.Err(err))
		return 0, 0, 0
	}

	for _, vp := range virtualPatents {
		filesSaved, wasMerged := writer.WritePatent(vp)
		saved += filesSaved
		patents++
		if wasMerged {
			mergedCount++
		}
	}

	m.metrics.RecordPatentsSerialized(patents)
	m.metrics.RecordMergedPatents(mergedCount)
	return patents, mergedCount, saved
}

// partitionFiles splits files into at most workers contiguous chunks.
func partitionFiles(files []string, workers int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	size := (len(files) + workers - 1) / workers
	if size < 1 {
		size = 1
	}
	var chunks [][]string
	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[start:end])
	}
	return chunks
}
