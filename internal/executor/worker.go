package executor

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/cmdlist/internal/ctxlog"
)

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, frames <-chan int, c *counters, done *atomic.Int64, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for frame := range frames {
		frameLogger := logger.With("workerID", workerID, "frame", frame)
		if ctx.Err() != nil {
			frameLogger.Debug("Replay cancelled, frame skipped.")
			continue
		}
		frameLogger.Debug("Worker picked up frame.")
		for _, ev := range e.events {
			e.run(ctx, ev, c)
		}
		done.Add(1)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
