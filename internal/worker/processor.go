package worker

import (
	"context"
	"fmt"
	"log/slog"

	"leadscout/internal/domain"
)

// processTask runs one queue task through the pipeline under the configured
// timeout. Pipeline failures mark the job failed inside the runner; the error
// returned here only drives the ACK/NACK decision.
func (w *Worker) processTask(ctx context.Context, task *taskDelivery) error {
	w.logger.Info("Processing task",
		slog.String("job_id", task.JobID),
		slog.String("task", task.Task),
		slog.String("worker_id", w.workerID),
	)

	taskCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	switch task.Task {
	case domain.TaskDiscover:
		return w.runner.RunDiscovery(taskCtx, task.JobID)
	case domain.TaskExport:
		return w.runner.RunExport(taskCtx, task.JobID)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownTask, task.Task)
	}
}
