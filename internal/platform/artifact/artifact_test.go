package artifact_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicebox/voicebox-api/internal/platform/artifact"
	"github.com/voicebox/voicebox-api/internal/queue"
)

// The store must keep satisfying the queue's artifact contract.
var _ queue.ArtifactStore = (*artifact.Store)(nil)

func TestStorePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := artifact.NewStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	taskID := uuid.New()
	assert.Equal(t, filepath.Join(dir, taskID.String()+".wav"), store.Path(taskID))
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := artifact.NewStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	taskID := uuid.New()
	require.NoError(t, os.WriteFile(store.Path(taskID), []byte("audio"), 0o644))

	// First removal deletes the file.
	require.NoError(t, store.Remove(taskID))
	_, statErr := os.Stat(store.Path(taskID))
	assert.True(t, os.IsNotExist(statErr))

	// Second removal is a no-op, not an error.
	assert.NoError(t, store.Remove(taskID))
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "outputs")
	_, err := artifact.NewStore(dir, nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
