package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/platform/synth"
)

// Config carries the queue's operational limits. Zero or negative values
// are replaced with conservative defaults by NewQueue.
type Config struct {
	// MaxConcurrent bounds how many tasks may be processing at once.
	MaxConcurrent int
	// TaskTimeout is the per-task execution deadline.
	TaskTimeout time.Duration
	// TaskRetention is how long terminal tasks are kept before eviction.
	TaskRetention time.Duration
	// CleanupInterval is the cadence of the retention sweeper.
	CleanupInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 3
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 5 * time.Minute
	}
	if c.TaskRetention <= 0 {
		c.TaskRetention = time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 10 * time.Minute
	}
	return c
}

// Queue coordinates the full task lifecycle: admission through the Gate,
// state tracking in the Registry, FIFO dispatch to synthesis workers, and
// retention sweeping. It is safe for concurrent use.
type Queue struct {
	cfg       Config
	gate      *Gate
	registry  *Registry
	store     TaskStore
	artifacts ArtifactStore
	synth     synth.Synthesizer
	logger    *slog.Logger

	// pending is the FIFO dispatch order, guarded by pendingMu. Submissions
	// never block: the slice is unbounded and the dispatch loop is woken
	// through the wake channel.
	pendingMu sync.Mutex
	pending   []uuid.UUID
	closed    bool

	wake chan struct{}

	// baseCtx governs the background loops and all worker executions.
	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
	started    bool
}

// NewQueue assembles a queue from its collaborators. The queue does not
// run until Start is called.
func NewQueue(
	cfg Config,
	store TaskStore,
	artifacts ArtifactStore,
	synthesizer synth.Synthesizer,
	logger *slog.Logger,
) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	return &Queue{
		cfg:       cfg,
		gate:      NewGate(cfg.MaxConcurrent),
		registry:  NewRegistry(),
		store:     store,
		artifacts: artifacts,
		synth:     synthesizer,
		logger:    logger.With(slog.String("component", "queue")),
		pending:   make([]uuid.UUID, 0),
		wake:      make(chan struct{}, 1),
	}
}

// Start rehydrates the registry from the persistence collaborator and
// launches the dispatch loop and the retention sweeper. It must be called
// exactly once.
func (q *Queue) Start(ctx context.Context) error {
	if q.started {
		return fmt.Errorf("queue already started")
	}
	q.started = true
	q.baseCtx, q.baseCancel = context.WithCancel(context.Background())

	if err := q.rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrating task registry: %w", err)
	}

	q.wg.Add(2)
	go q.dispatchLoop()
	go q.sweepLoop()

	q.logger.Info("task queue started",
		slog.Int("max_concurrent", q.cfg.MaxConcurrent),
		slog.Duration("task_timeout", q.cfg.TaskTimeout),
		slog.Duration("task_retention", q.cfg.TaskRetention),
		slog.Duration("cleanup_interval", q.cfg.CleanupInterval))
	return nil
}

// Stop closes the queue to new submissions, cancels in-flight work, and
// waits for the background loops and workers to drain or for ctx to
// expire.
func (q *Queue) Stop(ctx context.Context) error {
	q.pendingMu.Lock()
	q.closed = true
	q.pendingMu.Unlock()

	if q.baseCancel != nil {
		q.baseCancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("task queue stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for queue shutdown: %w", ctx.Err())
	}
}

// rehydrate reloads every persisted task snapshot into the registry.
// Pending tasks rejoin the dispatch order by creation time. Tasks left
// processing by an unclean shutdown have no surviving worker, so they are
// failed on the spot and the failure is persisted.
func (q *Queue) rehydrate(ctx context.Context) error {
	if q.store == nil {
		return nil
	}

	tasks, err := q.store.LoadAllOnBoot(ctx)
	if err != nil {
		return err
	}

	recovered, interrupted := 0, 0
	for _, task := range tasks {
		if task.Status == domain.TaskStatusProcessing {
			task.Status = domain.TaskStatusFailed
			task.Error = errInterruptedCause
			now := time.Now().UTC()
			task.CompletedAt = &now
			interrupted++
		}
		if err := q.registry.Insert(task); err != nil {
			q.logger.Warn("skipping duplicate task snapshot",
				slog.String("task_id", task.ID.String()))
			continue
		}
		if task.Status == domain.TaskStatusPending {
			q.enqueue(task.ID)
		}
		if task.Error == errInterruptedCause {
			if err := q.store.SaveSnapshot(ctx, task); err != nil {
				q.logger.Warn("persisting interrupted task failure",
					slog.String("task_id", task.ID.String()),
					slog.String("error", err.Error()))
			}
		}
		recovered++
	}

	if recovered > 0 {
		q.logger.Info("rehydrated task registry",
			slog.Int("tasks", recovered),
			slog.Int("interrupted", interrupted))
	}
	return nil
}

// Submit admits a new task for the given owner. The task is registered as
// pending, persisted, and appended to the dispatch order. Submission never
// blocks on the concurrency limit; the returned view carries the task's
// position in the pending queue.
func (q *Queue) Submit(ctx context.Context, ownerID uuid.UUID, params domain.GenerationParams) (*TaskView, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	q.pendingMu.Lock()
	if q.closed {
		q.pendingMu.Unlock()
		return nil, ErrQueueClosed
	}
	q.pendingMu.Unlock()

	task, err := domain.NewTask(ownerID, params)
	if err != nil {
		return nil, err
	}

	if err := q.registry.Insert(task); err != nil {
		return nil, err
	}

	if q.store != nil {
		if err := q.store.SaveSnapshot(ctx, task); err != nil {
			// Submission stands on the in-memory registry; a snapshot miss
			// only costs restart durability for this task.
			q.logger.Warn("persisting task snapshot on submit",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	q.enqueue(task.ID)

	q.logger.Info("task submitted",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))

	return q.viewOf(task.Clone()), nil
}

// enqueue appends a task ID to the dispatch order and wakes the dispatch
// loop.
func (q *Queue) enqueue(taskID uuid.UUID) {
	q.pendingMu.Lock()
	q.pending = append(q.pending, taskID)
	q.pendingMu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// dequeue pops the oldest pending task ID, or false if none are waiting.
func (q *Queue) dequeue() (uuid.UUID, bool) {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()

	if len(q.pending) == 0 {
		return uuid.Nil, false
	}
	id := q.pending[0]
	q.pending = q.pending[1:]
	return id, true
}

// Get returns a view of the task for the requester, enforcing ownership.
func (q *Queue) Get(_ context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*TaskView, error) {
	task, err := q.registry.Get(taskID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	return q.viewOf(task), nil
}

// List returns a page of the owner's tasks, newest first, with the total
// count of the owner's tasks.
func (q *Queue) List(_ context.Context, ownerID uuid.UUID, page, pageSize int) ([]*TaskView, int, error) {
	tasks, total := q.registry.List(ownerID, page, pageSize)
	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, q.viewOf(task))
	}
	return views, total, nil
}

// Cancel requests cancellation of a task on behalf of the requester.
// Pending tasks are cancelled immediately. Processing tasks are signalled
// and transition once their worker observes the cancellation. Cancelling a
// terminal task returns ErrAlreadyTerminal.
func (q *Queue) Cancel(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*TaskView, error) {
	statusAtRequest, err := q.registry.RequestCancel(taskID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}

	if statusAtRequest == domain.TaskStatusPending {
		q.persistSnapshot(ctx, taskID)
	}

	q.logger.Info("task cancellation requested",
		slog.String("task_id", taskID.String()),
		slog.String("status_at_request", string(statusAtRequest)))

	task, err := q.registry.Get(taskID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	return q.viewOf(task), nil
}

// Delete removes a task for the requester, enforcing ownership. Live work
// is cancelled first; the task's snapshot and output artifact are removed
// best-effort. Deletion of an already-removed task returns
// ErrTaskNotFound.
func (q *Queue) Delete(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) error {
	if _, err := q.registry.Get(taskID, requesterID, isAdmin); err != nil {
		return err
	}

	// Stop any live execution before removing the entry. The worker's
	// deferred release returns the permit; removal does not need to.
	if _, err := q.registry.RequestCancel(taskID, requesterID, isAdmin); err != nil &&
		err != ErrAlreadyTerminal {
		return err
	}

	task, ok := q.registry.Remove(taskID)
	if !ok {
		return ErrTaskNotFound
	}

	if q.store != nil {
		if err := q.store.DeleteSnapshot(ctx, taskID); err != nil {
			q.logger.Warn("deleting task snapshot",
				slog.String("task_id", taskID.String()),
				slog.String("error", err.Error()))
		}
	}
	if q.artifacts != nil {
		if err := q.artifacts.Remove(taskID); err != nil {
			q.logger.Warn("deleting task artifact",
				slog.String("task_id", taskID.String()),
				slog.String("error", err.Error()))
		}
	}

	q.logger.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("final_status", string(task.Status)))
	return nil
}

// InFlight reports how many execution permits are currently held.
func (q *Queue) InFlight() int {
	return q.gate.InUse()
}

// persistSnapshot saves the task's current registry state, logging rather
// than failing on persistence errors. Registry state wins over snapshots.
func (q *Queue) persistSnapshot(ctx context.Context, taskID uuid.UUID) {
	if q.store == nil {
		return
	}
	task, ok := q.registry.Snapshot(taskID)
	if !ok {
		return
	}
	if err := q.store.SaveSnapshot(ctx, task); err != nil {
		q.logger.Warn("persisting task snapshot",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
	}
}
