package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a synthesis task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwnerID = errors.New("task owner ID cannot be empty")
)

// IsValid reports whether the status is one of the recognized lifecycle states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// ResultRef is a handle to a completed task's output artifact. It is set
// exactly once, on the transition into the completed state, and never
// mutated after.
type ResultRef struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// Task represents one submitted synthesis request and its lifecycle record.
//
// A task moves pending -> processing -> {completed | failed}, and from
// pending or processing to cancelled. Terminal states are immutable.
// Mutations go through the transition methods below; they enforce the
// state machine and the result/error exclusivity invariant.
type Task struct {
	ID          uuid.UUID        `json:"id"`
	OwnerID     uuid.UUID        `json:"owner_id"`
	Status      TaskStatus       `json:"status"`
	Progress    float64          `json:"progress"`
	Message     string           `json:"message"`
	Params      GenerationParams `json:"params"`
	Result      *ResultRef       `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewTask creates a new pending Task owned by the given user, capturing the
// generation parameters at submission time. Returns an error if validation
// fails.
func NewTask(ownerID uuid.UUID, params GenerationParams) (*Task, error) {
	task := &Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Status:    TaskStatusPending,
		Progress:  0,
		Message:   "Task queued",
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwnerID
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}

	if err := t.Params.Validate(); err != nil {
		return err
	}

	return nil
}

// OwnedBy reports whether the requester may view or act on this task.
// Only the owner and administrators have access.
func (t *Task) OwnedBy(requesterID uuid.UUID, isAdmin bool) bool {
	return isAdmin || t.OwnerID == requesterID
}

// Start transitions the task from pending to processing and records the
// start timestamp. Returns ErrInvalidTransition if the task is not pending.
func (t *Task) Start(now time.Time) error {
	if t.Status != TaskStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, TaskStatusProcessing)
	}
	t.Status = TaskStatusProcessing
	t.Message = "Generation started"
	started := now.UTC()
	t.StartedAt = &started
	return nil
}

// Complete transitions the task from processing to completed, records the
// result handle and forces progress to 1.0. Returns ErrInvalidTransition if
// the task is not processing.
func (t *Task) Complete(result ResultRef, now time.Time) error {
	if t.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, TaskStatusCompleted)
	}
	t.Status = TaskStatusCompleted
	t.Progress = 1.0
	t.Message = "Generation completed"
	t.Result = &result
	completed := now.UTC()
	t.CompletedAt = &completed
	return nil
}

// Fail transitions the task from processing to failed and records the
// structured cause. Returns ErrInvalidTransition if the task is not
// processing.
func (t *Task) Fail(cause string, now time.Time) error {
	if t.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, TaskStatusFailed)
	}
	t.Status = TaskStatusFailed
	t.Message = "Generation failed"
	t.Error = cause
	completed := now.UTC()
	t.CompletedAt = &completed
	return nil
}

// Cancel transitions the task from pending or processing to cancelled.
// Returns ErrInvalidTransition if the task is already terminal.
func (t *Task) Cancel(now time.Time) error {
	if t.Status != TaskStatusPending && t.Status != TaskStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, TaskStatusCancelled)
	}
	t.Status = TaskStatusCancelled
	t.Message = "Task cancelled"
	completed := now.UTC()
	t.CompletedAt = &completed
	return nil
}

// SetProgress records execution progress while the task is processing.
// Progress is clamped to [0, 1] and never decreases; updates on a
// non-processing task are ignored.
func (t *Task) SetProgress(progress float64, message string) {
	if t.Status != TaskStatusProcessing {
		return
	}
	if progress > 1 {
		progress = 1
	}
	if progress > t.Progress {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	}
}

// Clone returns a deep copy of the task. Callers hand out clones so that
// readers never observe a task mid-transition.
func (t *Task) Clone() *Task {
	clone := *t
	if t.Result != nil {
		result := *t.Result
		clone.Result = &result
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		clone.StartedAt = &started
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		clone.CompletedAt = &completed
	}
	return &clone
}
