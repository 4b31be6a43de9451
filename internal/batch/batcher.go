// Package batch partitions the sorted corpus file list into batches that
// never split a patent group, so that every kind-code variant of one patent
// is fused by the same worker in the same pass.
package batch

import (
	"github.com/turtacn/PatentFusion/internal/fusion"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// MinBatchSize is the hard lower bound on batch size.  A final remainder
// under the minimum is merged into the previous batch rather than emitted on
// its own, unless it is the only batch.
const MinBatchSize = 10

// Batcher builds the Phase-A work units.
type Batcher struct {
	logger logging.Logger
}

// New constructs a Batcher.
func New(logger logging.Logger) *Batcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Batcher{logger: logger.Named("batch")}
}

// Split partitions files into batches of roughly batchSize paths under two
// constraints: all files sharing a patent-group key land in one batch
// (groups are atomic, so a batch may exceed batchSize), and no batch is
// smaller than MinBatchSize unless it is the only one.
//
// Files whose names cannot be parsed are kept in a single pseudo-group and
// still processed; their count surfaces as a warning.
func (b *Batcher) Split(files []string, batchSize int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	groups, keys := fusion.GroupByPatent(files)

	if n := len(groups[fusion.UnparseableGroup]); n > 0 {
		b.logger.Warn("files with unparseable names bucketed into pseudo-group",
			logging.Int("count", n))
	}

	var batches [][]string
	var current []string

	for _, key := range keys {
		groupFiles := groups[key]

		// Close the current batch before it would overflow, but never emit a
		// batch under the minimum size.
		if len(current)+len(groupFiles) > batchSize && len(current) >= MinBatchSize {
			batches = append(batches, current)
			current = nil
		}

		current = append(current, groupFiles...)

		if len(current) >= batchSize && len(current) >= MinBatchSize {
			batches = append(batches, current)
			current = nil
		}
	}

	if len(current) > 0 {
		if len(current) >= MinBatchSize || len(batches) == 0 {
			batches = append(batches, current)
		} else {
			// Merge the small remainder into the last batch.
			batches[len(batches)-1] = append(batches[len(batches)-1], current...)
		}
	}

	minSize, maxSize, total := 0, 0, 0
	for i, batchFiles := range batches {
		n := len(batchFiles)
		total += n
		if i == 0 || n < minSize {
			minSize = n
		}
		if n > maxSize {
			maxSize = n
		}
	}
	avg := 0.0
	if len(batches) > 0 {
		avg = float64(total) / float64(len(batches))
	}
	b.logger.Info("created batches keeping patent groups together",
		logging.Int("batches", len(batches)),
		logging.Int("target_size", batchSize),
		logging.Int("min_size", minSize),
		logging.Int("max_size", maxSize),
		logging.Float64("avg_size", avg),
		logging.Int("patent_groups", len(groups)),
	)

	return batches
}
