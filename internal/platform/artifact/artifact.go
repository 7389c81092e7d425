// Package artifact manages generated audio artifacts on the local
// filesystem. Each task owns at most one artifact, named by its task ID.
package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store places and removes task output artifacts under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates an artifact store rooted at dir, creating the directory
// if it does not exist. If logger is nil, the default logger is used.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &Store{
		dir:    dir,
		logger: logger.With(slog.String("component", "artifact_store")),
	}, nil
}

// Path returns the artifact path for the given task ID. The file may or may
// not exist yet; the scheduler hands this path to the synthesis engine.
func (s *Store) Path(taskID uuid.UUID) string {
	return filepath.Join(s.dir, taskID.String()+".wav")
}

// Remove deletes the artifact for the given task ID. Removal is idempotent:
// a missing artifact is a no-op, not an error.
func (s *Store) Remove(taskID uuid.UUID) error {
	err := os.Remove(s.Path(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.logger.Warn("failed to remove artifact",
			"task_id", taskID,
			"error", err)
		return fmt.Errorf("failed to remove artifact: %w", err)
	}

	s.logger.Debug("removed artifact", "task_id", taskID)
	return nil
}
