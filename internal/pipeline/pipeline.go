package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/PatentFusion/internal/batch"
	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/fusion"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/PatentFusion/internal/sysres"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// collectionTimeout bounds result collection to detect wedged workers.
const collectionTimeout = 24 * time.Hour

// memoryProbeEvery controls how often a worker refreshes its RSS reading.
const memoryProbeEvery = 10

// Pipeline drives Phase A: batching the corpus, fanning the batches out to a
// fixed pool of fusion workers, and emitting one temp tree per batch.
type Pipeline struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics metrics.PipelineMetrics

	// progressOut receives the per-worker progress bars; nil disables
	// rendering (library use, tests).
	progressOut io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgressOutput directs the progress bars to w; nil disables them.
func WithProgressOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.progressOut = w }
}

// WithMetrics injects a metrics collector.
func WithMetrics(m metrics.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New constructs a Phase-A pipeline.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	p := &Pipeline{
		cfg:     cfg,
		logger:  logger.Named("pipeline"),
		metrics: metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// chunkRange is one worker's contiguous span of the batch list.
type chunkRange struct {
	start, end int
}

// Run fuses the whole corpus and returns the temp-tree paths, sorted for
// deterministic downstream partitioning.  Per-batch faults cost only that
// batch; ctx cancellation stops workers between batches, letting in-flight
// batches finish.
func (p *Pipeline) Run(ctx context.Context, files []string, folderOrder map[string]int) ([]string, error) {
	if len(files) == 0 {
		p.logger.Warn("no files to process")
		return nil, nil
	}

	start := time.Now()
	p.logger.Info("starting parallel fusion", logging.Int("files", len(files)))

	batches := batch.New(p.logger).Split(files, p.cfg.Performance.BatchSize)
	chunks := partitionBatches(len(batches), p.cfg.CPUs)

	p.logger.Info("processing batches",
		logging.Int("batches", len(batches)),
		logging.Int("chunks", len(chunks)),
		logging.Int("workers", len(chunks)),
	)

	table := NewProgressTable(len(chunks))
	renderer := NewProgressRenderer(table, p.progressOut, len(batches), "batches")

	engine := fusion.NewEngine(p.cfg, p.logger)
	pid := os.Getpid()

	results := make([][]string, len(chunks))
	var wg sync.WaitGroup
	for workerID, chunk := range chunks {
		workerID, chunk := workerID, chunk
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[workerID] = p.runWorker(ctx, engine, workerID, pid,
				batches[chunk.start:chunk.end], folderOrder, table)
		}()
	}

	if err := waitWithTimeout(&wg, collectionTimeout); err != nil {
		renderer.Stop()
		return nil, err
	}
	renderer.Stop()

	var tempFiles []string
	for _, workerFiles := range results {
		tempFiles = append(tempFiles, workerFiles...)
	}
	sort.Strings(tempFiles)

	p.logger.Info("parallel fusion completed",
		logging.String("elapsed", FormatDuration(time.Since(start))),
		logging.Int("temp_files", len(tempFiles)),
	)

	return tempFiles, ctx.Err()
}

// runWorker processes one contiguous chunk of batches sequentially, writing
// a temp tree per batch and publishing progress after each.
func (p *Pipeline) runWorker(ctx context.Context, engine *fusion.Engine, workerID, pid int,
	chunkBatches [][]string, folderOrder map[string]int, table *ProgressTable) []string {

	total := len(chunkBatches)
	progress := WorkerProgress{Total: total}
	table.Update(workerID, progress)

	var tempFiles []string
	for i, batchFiles := range chunkBatches {
		if ctx.Err() != nil {
			// Cancellation point between batches; in-flight work is never
			// interrupted mid-batch.
			break
		}

		batchID := fmt.Sprintf("%d_%d_%d", workerID, i, pid)
		if tempPath, patents, ok := p.processBatch(engine, workerID, i, pid, batchID, batchFiles, folderOrder); ok {
			if tempPath != "" {
				tempFiles = append(tempFiles, tempPath)
			}
			progress.PatentsProcessed += patents
		}

		progress.Current = i + 1
		if (i+1)%memoryProbeEvery == 0 {
			progress.MemoryGB = sysres.ProcessMemoryGB()
		}
		table.Update(workerID, progress)
	}

	progress.Current = total
	table.Update(workerID, progress)
	return tempFiles
}

// processBatch fuses one batch into a temp tree.  A panic inside the fusion
// of one batch is confined to that batch: it is logged with its stack and
// the worker moves on.
func (p *Pipeline) processBatch(engine *fusion.Engine, workerID, batchIndex, pid int,
	batchID string, batchFiles []string, folderOrder map[string]int) (tempPath string, patents int, ok bool) {

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic processing batch",
				logging.String("batch", batchID),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			p.metrics.RecordBatchFailed()
			tempPath, patents, ok = "", 0, false
		}
	}()

	start := time.Now()
	virtualPatents := engine.ProcessBatch(batchFiles, folderOrder)
	if len(virtualPatents) == 0 {
		return "", 0, true
	}

	path := TempFilePath(p.cfg.TempDir, workerID, batchIndex, pid)
	if err := WriteTempTree(virtualPatents, path); err != nil {
		p.logger.Error("error writing temp tree for batch",
			logging.String("batch", batchID), logging.Err(err))
		p.metrics.RecordBatchFailed()
		return "", 0, false
	}

	p.metrics.RecordBatchFused(time.Since(start).Seconds(), len(virtualPatents))
	return path, len(virtualPatents), true
}

// partitionBatches splits n batches into at most workers contiguous chunks.
func partitionBatches(n, workers int) []chunkRange {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	if size < 1 {
		size = 1
	}
	var chunks []chunkRange
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, chunkRange{start: start, end: end})
	}
	return chunks
}

// waitWithTimeout waits for wg, failing after the wedge-detection deadline.
func waitWithTimeout(wg *sync.WaitGroup, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New(errors.CodeWorkerTimeout, "worker result collection timed out")
	}
}

// FormatDuration renders a duration the way run summaries expect:
// "4.87 seconds" under a minute, "2:34" under an hour, "1:23:45" beyond.
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	if seconds < 60 {
		return fmt.Sprintf("%.2f seconds", seconds)
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
