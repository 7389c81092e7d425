package queue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
)

// dispatchLoop is the single goroutine that moves tasks from the pending
// order into execution. It acquires a permit before popping a task, so the
// concurrency bound is enforced ahead of dispatch and the pending order is
// consumed strictly oldest-first.
func (q *Queue) dispatchLoop() {
	defer q.wg.Done()

	for {
		taskID, ok := q.dequeue()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.baseCtx.Done():
				return
			}
		}

		permit, err := q.gate.Acquire(q.baseCtx)
		if err != nil {
			// Shutdown while waiting for a slot. The task stays pending in
			// the registry and rejoins the order on the next boot.
			return
		}

		taskCtx, cancel := context.WithTimeout(q.baseCtx, q.cfg.TaskTimeout)
		task, started := q.registry.Start(taskID, permit, cancel)
		if !started {
			// Cancelled or deleted while waiting in the pending order.
			cancel()
			permit.Release()
			continue
		}
		q.persistSnapshot(q.baseCtx, taskID)

		q.wg.Add(1)
		go q.runTask(taskCtx, cancel, task, permit)
	}
}

// runTask executes one task to a terminal state. The permit is released on
// every exit path; releasing twice is harmless, so the sweeper may also
// force-release it during stuck-task reclamation.
func (q *Queue) runTask(ctx context.Context, cancel context.CancelFunc, task *domain.Task, permit *Permit) {
	defer q.wg.Done()
	defer permit.Release()
	defer cancel()

	log := q.logger.With(slog.String("task_id", task.ID.String()))
	log.Info("task execution started")

	outputPath := task.ID.String() + ".wav"
	if q.artifacts != nil {
		outputPath = q.artifacts.Path(task.ID)
	}

	progress := func(fraction float64, message string) {
		q.registry.SetProgress(task.ID, fraction, message)
	}

	result, synthErr := q.synth.Synthesize(ctx, task.Params, outputPath, progress)

	switch {
	case synthErr == nil:
		q.finishTask(task.ID, func() error {
			return q.registry.Complete(task.ID, domain.ResultRef{
				Path:      result.OutputPath,
				SizeBytes: result.SizeBytes,
			})
		})
		log.Info("task completed", slog.Int64("size_bytes", result.SizeBytes))

	case q.registry.CancelRequested(task.ID):
		q.finishTask(task.ID, func() error {
			return q.registry.CancelNow(task.ID)
		})
		q.removeArtifact(task.ID)
		log.Info("task cancelled during execution")

	case errors.Is(synthErr, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		q.finishTask(task.ID, func() error {
			return q.registry.Fail(task.ID, errTimeoutCause)
		})
		q.removeArtifact(task.ID)
		log.Warn("task timed out")

	default:
		q.finishTask(task.ID, func() error {
			return q.registry.Fail(task.ID, synthErr.Error())
		})
		q.removeArtifact(task.ID)
		log.Error("task failed", slog.String("error", synthErr.Error()))
	}
}

// finishTask applies a terminal transition and persists the result. A
// transition rejection means someone else already finished the task (the
// sweeper's force-fail, or deletion); that outcome stands.
func (q *Queue) finishTask(taskID uuid.UUID, transition func() error) {
	if err := transition(); err != nil {
		q.logger.Debug("terminal transition superseded",
			slog.String("task_id", taskID.String()),
			slog.String("reason", err.Error()))
		return
	}
	q.persistSnapshot(q.baseCtx, taskID)
}

// removeArtifact clears any partial output left by an unsuccessful run.
func (q *Queue) removeArtifact(taskID uuid.UUID) {
	if q.artifacts == nil {
		return
	}
	if err := q.artifacts.Remove(taskID); err != nil {
		q.logger.Warn("removing partial artifact",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
	}
}
