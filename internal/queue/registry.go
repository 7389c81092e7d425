package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
)

// registryEntry holds the live state of one task: the task record itself
// plus the execution handles (permit, cancel function) attached while a
// worker runs it.
type registryEntry struct {
	task            *domain.Task
	permit          *Permit
	cancel          context.CancelFunc
	cancelRequested bool
}

// Registry is the in-memory mapping from task ID to live task state, the
// source of truth for status while the process is running. All transitions
// are serialized under one mutex; readers receive clones so they never
// observe a task mid-transition.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*registryEntry
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[uuid.UUID]*registryEntry),
	}
}

// Insert adds a task to the registry.
// Returns ErrDuplicateTask if a task with the same ID is already present.
func (r *Registry) Insert(task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[task.ID]; exists {
		return ErrDuplicateTask
	}
	r.entries[task.ID] = &registryEntry{task: task}
	return nil
}

// Get retrieves a clone of the task with the given ID, enforcing the
// ownership contract: the requester must be the task's owner or an
// administrator.
// Returns ErrTaskNotFound if no such task exists and ErrForbidden if the
// requester lacks rights. The caller decides how distinguishable those are
// on the wire.
func (r *Registry) Get(taskID, requesterID uuid.UUID, isAdmin bool) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if !entry.task.OwnedBy(requesterID, isAdmin) {
		return nil, ErrForbidden
	}
	return entry.task.Clone(), nil
}

// List returns a page of the owner's tasks ordered newest first, plus the
// owner's total task count. Page numbering is 1-based; out-of-range pages
// return an empty slice.
func (r *Registry) List(ownerID uuid.UUID, page, pageSize int) ([]*domain.Task, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	r.mu.RLock()
	owned := make([]*domain.Task, 0)
	for _, entry := range r.entries {
		if entry.task.OwnerID == ownerID {
			owned = append(owned, entry.task.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID.String() > owned[j].ID.String()
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := len(owned)
	start := (page - 1) * pageSize
	if start >= total {
		return []*domain.Task{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return owned[start:end], total
}

// QueuePosition computes the 1-based rank of a pending task among all
// pending tasks, ordered by creation time with ID as the tie-break. It is
// derived on read, never stored, so it cannot drift from the dispatch
// order. Returns 0 for tasks that are not pending.
func (r *Registry) QueuePosition(taskID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[taskID]
	if !ok || entry.task.Status != domain.TaskStatusPending {
		return 0
	}

	position := 1
	target := entry.task
	for _, other := range r.entries {
		if other.task.ID == target.ID || other.task.Status != domain.TaskStatusPending {
			continue
		}
		if createdBefore(other.task, target) {
			position++
		}
	}
	return position
}

// createdBefore orders tasks by creation time, breaking exact-timestamp
// ties by lexical ID order.
func createdBefore(a, b *domain.Task) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID.String() < b.ID.String()
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Start transitions a pending task to processing and attaches its
// execution handles. Returns a clone of the started task, or false if the
// task is missing or no longer pending (e.g. cancelled while the dispatch
// loop was waiting for a permit).
func (r *Registry) Start(taskID uuid.UUID, permit *Permit, cancel context.CancelFunc) (*domain.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return nil, false
	}
	if err := entry.task.Start(time.Now()); err != nil {
		return nil, false
	}
	entry.permit = permit
	entry.cancel = cancel
	return entry.task.Clone(), true
}

// Complete transitions a processing task to completed with its result
// handle and detaches the execution handles.
// Returns domain.ErrInvalidTransition if the task is not processing (for
// example, force-failed by the sweeper while the worker was finishing).
func (r *Registry) Complete(taskID uuid.UUID, result domain.ResultRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if err := entry.task.Complete(result, time.Now()); err != nil {
		return err
	}
	entry.permit = nil
	entry.cancel = nil
	return nil
}

// Fail transitions a processing task to failed with the given cause and
// detaches the execution handles.
// Returns domain.ErrInvalidTransition if the task is not processing.
func (r *Registry) Fail(taskID uuid.UUID, cause string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if err := entry.task.Fail(cause, time.Now()); err != nil {
		return err
	}
	entry.permit = nil
	entry.cancel = nil
	return nil
}

// CancelNow transitions a pending or processing task to cancelled and
// detaches the execution handles. Used by workers that observe the
// cooperative cancellation signal, and directly for pending tasks.
func (r *Registry) CancelNow(taskID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if err := entry.task.Cancel(time.Now()); err != nil {
		return err
	}
	entry.permit = nil
	entry.cancel = nil
	return nil
}

// RequestCancel applies a cancellation request from the given requester,
// enforcing ownership. The returned status is the task's status at the
// moment the request was applied:
//
//   - pending: the task was transitioned to cancelled immediately.
//   - processing: the cancellation flag was set and the worker's context
//     cancelled; the worker completes the transition cooperatively.
//
// Returns ErrTaskNotFound, ErrForbidden, or ErrAlreadyTerminal.
func (r *Registry) RequestCancel(taskID, requesterID uuid.UUID, isAdmin bool) (domain.TaskStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return "", ErrTaskNotFound
	}
	if !entry.task.OwnedBy(requesterID, isAdmin) {
		return "", ErrForbidden
	}

	switch entry.task.Status {
	case domain.TaskStatusPending:
		if err := entry.task.Cancel(time.Now()); err != nil {
			return "", err
		}
		return domain.TaskStatusPending, nil

	case domain.TaskStatusProcessing:
		entry.cancelRequested = true
		if entry.cancel != nil {
			entry.cancel()
		}
		return domain.TaskStatusProcessing, nil

	default:
		return entry.task.Status, ErrAlreadyTerminal
	}
}

// CancelRequested reports whether a cooperative cancellation was requested
// for the task.
func (r *Registry) CancelRequested(taskID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[taskID]
	return ok && entry.cancelRequested
}

// ForceFail transitions a processing task to failed regardless of worker
// cooperation, cancelling its context if attached, and returns the permit
// the worker was holding so the caller can force-release it. Used by the
// sweeper for stuck-task reclamation.
// The second return is false if the task is missing or not processing.
func (r *Registry) ForceFail(taskID uuid.UUID, cause string) (*Permit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return nil, false
	}
	if err := entry.task.Fail(cause, time.Now()); err != nil {
		return nil, false
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	permit := entry.permit
	entry.permit = nil
	entry.cancel = nil
	return permit, true
}

// SetProgress records execution progress for a processing task. Updates on
// missing or non-processing tasks are ignored.
func (r *Registry) SetProgress(taskID uuid.UUID, progress float64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[taskID]; ok {
		entry.task.SetProgress(progress, message)
	}
}

// Remove deletes a task from the registry, returning a clone of its final
// state. Removal is idempotent: false means the task was already gone.
func (r *Registry) Remove(taskID uuid.UUID) (*domain.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return nil, false
	}
	delete(r.entries, taskID)
	return entry.task.Clone(), true
}

// Snapshot returns a clone of the task without ownership checks. Intended
// for internal persistence and worker paths that already hold the task ID
// legitimately.
func (r *Registry) Snapshot(taskID uuid.UUID) (*domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[taskID]
	if !ok {
		return nil, false
	}
	return entry.task.Clone(), true
}

// SnapshotAll returns clones of every task in the registry, in no
// particular order. Used by the sweeper and by tests.
func (r *Registry) SnapshotAll() []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(r.entries))
	for _, entry := range r.entries {
		tasks = append(tasks, entry.task.Clone())
	}
	return tasks
}

// Len returns the number of tasks currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
