package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/platform/logger"
	"github.com/voicebox/voicebox-api/internal/queue"
	"github.com/voicebox/voicebox-api/internal/store"
)

// PostgresTaskStore implements the queue.TaskStore interface using
// PostgreSQL. Snapshots are write-through copies of the in-memory registry
// state; the registry remains authoritative while the process runs, and
// the snapshots exist so the queue can rehydrate after a restart.
type PostgresTaskStore struct {
	db store.DBTX
}

var _ queue.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// SaveSnapshot upserts the task's current state. Called on every lifecycle
// transition, so an existing row is the common case.
func (s *PostgresTaskStore) SaveSnapshot(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	params, err := json.Marshal(task.Params)
	if err != nil {
		return fmt.Errorf("marshalling task params: %w", err)
	}

	var resultPath sql.NullString
	var resultSize sql.NullInt64
	if task.Result != nil {
		resultPath = sql.NullString{String: task.Result.Path, Valid: true}
		resultSize = sql.NullInt64{Int64: task.Result.SizeBytes, Valid: true}
	}

	query := `
		INSERT INTO tasks (id, owner_id, status, progress, message, params,
			result_path, result_size_bytes, error, created_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			message = EXCLUDED.message,
			result_path = EXCLUDED.result_path,
			result_size_bytes = EXCLUDED.result_size_bytes,
			error = EXCLUDED.error,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at
	`
	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.Status,
		task.Progress,
		task.Message,
		params,
		resultPath,
		resultSize,
		task.Error,
		task.CreatedAt,
		task.StartedAt,
		task.CompletedAt,
	)
	if err != nil {
		log.Error("failed to save task snapshot",
			"task_id", task.ID,
			"status", task.Status,
			"error", err)
		return store.NewStoreError("task", "save_snapshot", "failed to upsert task", MapError(err))
	}
	return nil
}

// DeleteSnapshot removes the task's persisted row. Deleting a row that is
// already gone is a no-op.
func (s *PostgresTaskStore) DeleteSnapshot(ctx context.Context, taskID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return store.NewStoreError("task", "delete_snapshot", "failed to delete task", MapError(err))
	}
	return nil
}

// LoadAllOnBoot returns every persisted task ordered by creation time so
// pending tasks rejoin the dispatch order in their original sequence.
func (s *PostgresTaskStore) LoadAllOnBoot(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, owner_id, status, progress, message, params,
			result_path, result_size_bytes, error, created_at, started_at, completed_at
		FROM tasks
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to load task snapshots", "error", err)
		return nil, store.NewStoreError("task", "load_all", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "load_all", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "load_all", "failed to iterate task rows", MapError(err))
	}
	return tasks, nil
}

// scanTask maps one tasks row into a domain.Task.
func scanTask(rows *sql.Rows) (*domain.Task, error) {
	var (
		task       domain.Task
		params     []byte
		resultPath sql.NullString
		resultSize sql.NullInt64
	)
	err := rows.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Status,
		&task.Progress,
		&task.Message,
		&params,
		&resultPath,
		&resultSize,
		&task.Error,
		&task.CreatedAt,
		&task.StartedAt,
		&task.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &task.Params); err != nil {
		return nil, fmt.Errorf("unmarshalling task params: %w", err)
	}
	if resultPath.Valid {
		task.Result = &domain.ResultRef{
			Path:      resultPath.String,
			SizeBytes: resultSize.Int64,
		}
	}
	return &task, nil
}
