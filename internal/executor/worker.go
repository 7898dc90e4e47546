package executor

import (
	"context"

	"github.com/specialistvlad/linkcheck/internal/ctxlog"
)

// worker is the core processing loop for a single concurrent worker. Each
// worker owns the result cell of the job it holds until it marks it complete.
func (e *Executor) worker(ctx context.Context, jobs <-chan job, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range jobs {
		cellCtx := ctxlog.With(ctx, "workerID", workerID, "row", j.slot.index, "column", j.column+1)
		url := j.slot.results[j.column].URL
		j.slot.results[j.column] = e.processor.CheckCell(cellCtx, url)
		e.stats.cellProbed()
		j.slot.complete()
	}

	logger.Debug("Worker finished.", "workerID", workerID)
}
