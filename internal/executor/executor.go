// Package executor runs a link check over a stream of rows with a bounded
// pool of workers.
//
// Rows are read by a single dispatcher, which hands every eligible cell to the
// worker pool as a job and queues the row's slot on an ordered window. A
// single writer drains the window in input order and emits a row only once
// all of its cells are resolved, so output order never depends on which probe
// finishes first. The window bounds how many rows are held in memory.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/linkcheck/internal/ctxlog"
	"github.com/specialistvlad/linkcheck/internal/linkcheck"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 32

// RowSource yields input rows and io.EOF after the last one.
type RowSource interface {
	Next() ([]string, error)
}

// RowSink receives output rows in input order.
type RowSink interface {
	Write(row []string) error
}

// RowHook is called by the writer after a row has been written.
type RowHook func(ctx context.Context, index int, results []linkcheck.Result)

// Options configures an Executor.
type Options struct {
	// Workers is the number of concurrent probes. 1 checks cells strictly
	// one after another.
	Workers int
	// Window is the maximum number of rows in flight. Defaults to
	// 2×Workers.
	Window int
	// Stats, if set, is updated as rows are written.
	Stats *Stats
	// OnRow, if set, is called after every written row.
	OnRow RowHook
}

// Executor orchestrates a run: dispatching cells, probing them concurrently
// and writing rows back in order.
type Executor struct {
	processor *linkcheck.Processor
	workers   int
	window    int
	stats     *Stats
	onRow     RowHook
}

// New creates an Executor around a row processor.
func New(processor *linkcheck.Processor, opts Options) *Executor {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	window := opts.Window
	if window < 1 {
		window = 2 * workers
	}
	stats := opts.Stats
	if stats == nil {
		stats = &Stats{}
	}
	return &Executor{
		processor: processor,
		workers:   workers,
		window:    window,
		stats:     stats,
		onRow:     opts.OnRow,
	}
}

// job is one eligible cell waiting for a worker.
type job struct {
	slot   *slot
	column int
}

// Run checks every row of src and writes the results to sink. It returns once
// the source is exhausted, a structural error is found, writing fails, or ctx
// is cancelled. On cancellation no new rows are read, but probes already
// dispatched run to completion (or their timeout) and their rows are written.
//
// The returned Summary is valid even when err is non-nil.
func (e *Executor) Run(ctx context.Context, src RowSource, sink RowSink) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	e.stats.start(start)

	// Probes outlive a shutdown request so in-flight rows can complete.
	probeCtx := context.WithoutCancel(ctx)

	jobs := make(chan job, e.workers)
	pending := make(chan *slot, e.window)
	stop := make(chan struct{})

	var workers errgroup.Group
	for i := 1; i <= e.workers; i++ {
		workerID := i
		workers.Go(func() error {
			e.worker(probeCtx, jobs, workerID)
			return nil
		})
	}
	logger.Debug("Worker pool started.", "workers", e.workers, "window", e.window)

	dispatchErr := make(chan error, 1)
	go func() {
		dispatchErr <- e.dispatch(ctx, src, jobs, pending, stop)
	}()

	summary := &Summary{}
	var writeErr error
	for s := range pending {
		<-s.done
		if err := sink.Write(linkcheck.Flatten(s.results)); err != nil {
			writeErr = fmt.Errorf("failed to write row %d: %w", s.index, err)
			close(stop)
			break
		}
		summary.add(s.results)
		e.stats.rowWritten(s.results)
		if e.onRow != nil {
			e.onRow(ctx, s.index, s.results)
		}
	}

	err := <-dispatchErr
	_ = workers.Wait()
	summary.Elapsed = time.Since(start)

	if writeErr != nil {
		logger.Error("Writing output failed, run aborted.", "error", writeErr, "rows", summary.Rows)
		return summary, writeErr
	}
	if err != nil {
		return summary, err
	}
	logger.Debug("All rows written.", "rows", summary.Rows)
	return summary, nil
}

// dispatch reads rows, queues their slots on pending in order, and feeds
// eligible cells to the workers. It closes both channels on return.
func (e *Executor) dispatch(ctx context.Context, src RowSource, jobs chan<- job, pending chan<- *slot, stop <-chan struct{}) error {
	defer close(jobs)
	defer close(pending)
	logger := ctxlog.FromContext(ctx)

	for index := 1; ; index++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Shutdown requested, no further rows will be dispatched.", "next_row", index)
			return fmt.Errorf("run interrupted before row %d: %w", index, err)
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &linkcheck.StructuralError{Row: index, Err: err}
		}
		results, eligible, err := e.processor.Prepare(index, row)
		if err != nil {
			logger.Error("Row is missing link columns.", "row", index, "cells", len(row), "columns", e.processor.Columns())
			return err
		}

		s := newSlot(index, results)
		s.expect(len(eligible))

		select {
		case pending <- s:
		case <-stop:
			return nil
		}
		for _, col := range eligible {
			select {
			case jobs <- job{slot: s, column: col}:
			case <-stop:
				return nil
			}
		}
	}
}
