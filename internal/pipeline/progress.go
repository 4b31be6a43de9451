// Package pipeline implements the two-phase parallel processing
// architecture: Phase A fuses batches into temp trees with per-worker
// progress aggregation; Phase B (internal/merger) streams the temp trees
// into final outputs.
package pipeline

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// pollInterval is the supervisor's progress sampling period (~20 Hz).
const pollInterval = 50 * time.Millisecond

// WorkerProgress is one worker's progress record.  Workers publish a fresh
// record on every update instead of mutating fields in place, so readers
// always observe a consistent snapshot.
type WorkerProgress struct {
	Current          int
	Total            int
	MemoryGB         float64
	PatentsProcessed int
}

// ProgressTable is the write-mostly shared progress structure: one atomic
// slot per worker, replaced whole on every write and snapshotted by the
// supervisor.  No locks are involved.
type ProgressTable struct {
	slots []atomic.Pointer[WorkerProgress]
}

// NewProgressTable creates a table with one zeroed slot per worker.
func NewProgressTable(workers int) *ProgressTable {
	t := &ProgressTable{slots: make([]atomic.Pointer[WorkerProgress], workers)}
	for i := range t.slots {
		t.slots[i].Store(&WorkerProgress{})
	}
	return t
}

// Update replaces worker's record with a copy of p.
func (t *ProgressTable) Update(worker int, p WorkerProgress) {
	if worker < 0 || worker >= len(t.slots) {
		return
	}
	t.slots[worker].Store(&p)
}

// Get returns worker's current record.
func (t *ProgressTable) Get(worker int) WorkerProgress {
	if worker < 0 || worker >= len(t.slots) {
		return WorkerProgress{}
	}
	return *t.slots[worker].Load()
}

// Snapshot returns a consistent copy of every worker record.
func (t *ProgressTable) Snapshot() []WorkerProgress {
	out := make([]WorkerProgress, len(t.slots))
	for i := range t.slots {
		out[i] = *t.slots[i].Load()
	}
	return out
}

// Workers returns the number of slots.
func (t *ProgressTable) Workers() int { return len(t.slots) }

// ─────────────────────────────────────────────────────────────────────────────
// Supervisor rendering
// ─────────────────────────────────────────────────────────────────────────────

// ProgressRenderer drives one mpb bar per worker plus an aggregate bar from
// ProgressTable snapshots.  A nil output writer disables rendering entirely
// (library use, tests).
type ProgressRenderer struct {
	table      *ProgressTable
	container  *mpb.Progress
	workerBars []*mpb.Bar
	overallBar *mpb.Bar
	done       chan struct{}
	stopped    chan struct{}
}

// NewProgressRenderer builds the bars and starts the polling goroutine.
// unit names the overall bar's work items ("batches", "files").
func NewProgressRenderer(table *ProgressTable, out io.Writer, overallTotal int, unit string) *ProgressRenderer {
	if out == nil {
		return nil
	}

	container := mpb.New(mpb.WithOutput(out), mpb.WithWidth(60))

	r := &ProgressRenderer{
		table:     table,
		container: container,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	for i := 0; i < table.Workers(); i++ {
		workerID := i
		bar := container.AddBar(1,
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("Worker %d ", workerID)),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Any(func(decor.Statistics) string {
					p := table.Get(workerID)
					if p.MemoryGB > 0 {
						return fmt.Sprintf("%.1fGB", p.MemoryGB)
					}
					return ""
				}),
			),
		)
		r.workerBars = append(r.workerBars, bar)
	}

	r.overallBar = container.AddBar(int64(overallTotal),
		mpb.PrependDecorators(
			decor.Name("Overall "+unit+" "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	go r.poll()
	return r
}

// poll refreshes every bar from the table until Stop is called.
func (r *ProgressRenderer) poll() {
	defer close(r.stopped)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			r.refresh(true)
			return
		case <-ticker.C:
			r.refresh(false)
		}
	}
}

// refresh pushes the current table state into the bars.  On the final
// refresh every bar is marked complete so the container can shut down.
func (r *ProgressRenderer) refresh(final bool) {
	overall := 0
	for i, bar := range r.workerBars {
		p := r.table.Get(i)
		if p.Total > 0 {
			bar.SetTotal(int64(p.Total), false)
			bar.SetCurrent(int64(p.Current))
		}
		overall += p.Current
		if final {
			bar.SetTotal(int64(p.Total), true)
		}
	}
	r.overallBar.SetCurrent(int64(overall))
	if final {
		r.overallBar.SetTotal(-1, true)
	}
}

// Stop terminates polling and waits for the bars to render their final
// state.  Safe to call on a nil renderer.
func (r *ProgressRenderer) Stop() {
	if r == nil {
		return
	}
	close(r.done)
	<-r.stopped
	r.container.Wait()
}
