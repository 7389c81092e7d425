package queue

import "errors"

// Common errors returned by the queue's public surface.
var (
	// ErrTaskNotFound is returned when no task with the given ID exists in
	// the registry.
	ErrTaskNotFound = errors.New("task not found")

	// ErrForbidden is returned when the task exists but the requester is
	// neither its owner nor an administrator. The API layer is expected to
	// make this indistinguishable from ErrTaskNotFound on the wire so task
	// existence does not leak across owners; the two are kept distinct here
	// so callers can make that choice.
	ErrForbidden = errors.New("requester does not own task")

	// ErrAlreadyTerminal is returned when a cancellation is attempted on a
	// task that has already completed, failed, or been cancelled.
	ErrAlreadyTerminal = errors.New("task already in a terminal state")

	// ErrDuplicateTask is returned when a task with the same ID is inserted
	// into the registry twice.
	ErrDuplicateTask = errors.New("task already registered")

	// ErrQueueClosed is returned when a submission arrives after the queue
	// has been stopped.
	ErrQueueClosed = errors.New("task queue is closed")
)

// errTimeoutCause is the structured cause recorded on tasks that exceed the
// per-task execution timeout, whether detected by the worker's deadline or
// by the sweeper's stuck-task reclamation.
const errTimeoutCause = "synthesis exceeded execution timeout"

// errInterruptedCause is recorded on tasks found in the processing state
// during boot rehydration: their worker did not survive the restart.
const errInterruptedCause = "synthesis interrupted by process restart"
