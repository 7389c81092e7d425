package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
)

// TaskStore defines the interface for persisting task snapshots.
//
// The registry remains authoritative while the process runs; snapshot
// writes are best-effort durability, not strict consistency. A failed
// write is logged and does not alter in-memory state.
type TaskStore interface {
	// SaveSnapshot persists the current state of a task, inserting or
	// updating as needed.
	SaveSnapshot(ctx context.Context, task *domain.Task) error

	// DeleteSnapshot removes a task's snapshot. Deleting a snapshot that
	// does not exist is a no-op, not an error.
	DeleteSnapshot(ctx context.Context, taskID uuid.UUID) error

	// LoadAllOnBoot retrieves every stored task snapshot so the registry
	// can be rebuilt at process start.
	LoadAllOnBoot(ctx context.Context) ([]*domain.Task, error)
}

// ArtifactStore abstracts where finished audio artifacts live. The queue
// needs only to name an output path per task and to reclaim artifacts when
// tasks are reaped.
type ArtifactStore interface {
	// Path returns the output artifact path for the given task ID.
	Path(taskID uuid.UUID) string

	// Remove deletes the artifact for the given task ID. Removal is
	// idempotent.
	Remove(taskID uuid.UUID) error
}
