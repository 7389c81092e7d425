package queue

import (
	"log/slog"
	"time"

	"github.com/voicebox/voicebox-api/internal/domain"
)

// sweepLoop runs the retention sweeper on the configured cadence until the
// queue shuts down.
func (q *Queue) sweepLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			q.sweep(time.Now())
		case <-q.baseCtx.Done():
			return
		}
	}
}

// sweep performs one pass of the two retention duties:
//
//   - stale-terminal eviction: terminal tasks whose completion is older
//     than the retention window are removed along with their snapshot and
//     artifact;
//   - stuck-task reclamation: processing tasks that have overrun the
//     execution timeout past their worker's deadline are force-failed and
//     their permit force-released, restoring admission capacity even if
//     the worker never returns.
//
// Factored out of the loop so tests can drive it with a synthetic clock.
func (q *Queue) sweep(now time.Time) {
	evicted, reclaimed := 0, 0

	for _, task := range q.registry.SnapshotAll() {
		switch {
		case task.Status.IsTerminal():
			if task.CompletedAt == nil || now.Sub(*task.CompletedAt) < q.cfg.TaskRetention {
				continue
			}
			q.evict(task)
			evicted++

		case task.Status == domain.TaskStatusProcessing:
			if task.StartedAt == nil || now.Sub(*task.StartedAt) < q.cfg.TaskTimeout+q.cfg.CleanupInterval {
				continue
			}
			if q.reclaim(task) {
				reclaimed++
			}
		}
	}

	if evicted > 0 || reclaimed > 0 {
		q.logger.Info("retention sweep finished",
			slog.Int("evicted", evicted),
			slog.Int("reclaimed", reclaimed))
	}
}

// evict removes a stale terminal task. Every removal step is idempotent; a
// task already gone is not an error.
func (q *Queue) evict(task *domain.Task) {
	if _, ok := q.registry.Remove(task.ID); !ok {
		return
	}
	if q.store != nil {
		if err := q.store.DeleteSnapshot(q.baseCtx, task.ID); err != nil {
			q.logger.Warn("deleting evicted task snapshot",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	if q.artifacts != nil {
		if err := q.artifacts.Remove(task.ID); err != nil {
			q.logger.Warn("deleting evicted task artifact",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	q.logger.Info("evicted stale task",
		slog.String("task_id", task.ID.String()),
		slog.String("final_status", string(task.Status)))
}

// reclaim force-fails a stuck processing task and returns its permit to
// the gate. The worker's own deferred release is a no-op afterwards.
func (q *Queue) reclaim(task *domain.Task) bool {
	permit, ok := q.registry.ForceFail(task.ID, errTimeoutCause)
	if !ok {
		return false
	}
	if permit != nil {
		permit.Release()
	}
	q.persistSnapshot(q.baseCtx, task.ID)
	q.logger.Warn("reclaimed stuck task",
		slog.String("task_id", task.ID.String()))
	return true
}
