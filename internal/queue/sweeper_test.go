package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicebox/voicebox-api/internal/domain"
)

// newSweepQueue builds a queue without starting its background loops so
// tests can drive sweep passes directly.
func newSweepQueue(t *testing.T, cfg Config, store TaskStore, artifacts ArtifactStore) *Queue {
	t.Helper()
	q := NewQueue(cfg, store, artifacts, &mockSynthesizer{}, discardLogger())
	q.baseCtx, q.baseCancel = context.WithCancel(context.Background())
	t.Cleanup(q.baseCancel)
	return q
}

func TestSweepEvictsStaleTerminalTasks(t *testing.T) {
	t.Parallel()

	store := newMockTaskStore()
	artifacts := newMockArtifactStore()
	retention := time.Hour
	q := newSweepQueue(t, Config{TaskRetention: retention}, store, artifacts)

	owner := uuid.New()
	now := time.Now().UTC()

	stale := newTask(t, owner, "old and done")
	require.NoError(t, stale.Start(now.Add(-3*time.Hour)))
	require.NoError(t, stale.Complete(domain.ResultRef{Path: "stale.wav", SizeBytes: 44}, now.Add(-2*time.Hour)))
	require.NoError(t, q.registry.Insert(stale))
	require.NoError(t, store.SaveSnapshot(context.Background(), stale))

	fresh := newTask(t, owner, "recently done")
	require.NoError(t, fresh.Start(now.Add(-10*time.Minute)))
	require.NoError(t, fresh.Complete(domain.ResultRef{Path: "fresh.wav", SizeBytes: 44}, now.Add(-5*time.Minute)))
	require.NoError(t, q.registry.Insert(fresh))

	pending := newTask(t, owner, "still waiting")
	pending.CreatedAt = now.Add(-3 * time.Hour)
	require.NoError(t, q.registry.Insert(pending))

	q.sweep(now)

	// Only the stale terminal task is gone, snapshot and artifact with it.
	_, ok := q.registry.Snapshot(stale.ID)
	assert.False(t, ok)
	_, ok = store.snapshot(stale.ID)
	assert.False(t, ok)
	assert.Contains(t, artifacts.removedIDs(), stale.ID)

	_, ok = q.registry.Snapshot(fresh.ID)
	assert.True(t, ok)
	_, ok = q.registry.Snapshot(pending.ID)
	assert.True(t, ok, "age alone never evicts a non-terminal task")
}

func TestSweepReclaimsStuckProcessingTasks(t *testing.T) {
	t.Parallel()

	store := newMockTaskStore()
	cfg := Config{
		MaxConcurrent:   1,
		TaskTimeout:     5 * time.Minute,
		CleanupInterval: time.Minute,
	}
	q := newSweepQueue(t, cfg, store, newMockArtifactStore())

	owner := uuid.New()
	now := time.Now().UTC()

	stuck := newTask(t, owner, "wedged")
	require.NoError(t, q.registry.Insert(stuck))
	permit, err := q.gate.Acquire(context.Background())
	require.NoError(t, err)
	_, ok := q.registry.Start(stuck.ID, permit, func() {})
	require.True(t, ok)

	// Not yet past timeout plus one sweep interval: left alone.
	q.sweep(now.Add(cfg.TaskTimeout))
	snap, snapOK := q.registry.Snapshot(stuck.ID)
	require.True(t, snapOK)
	assert.Equal(t, domain.TaskStatusProcessing, snap.Status)
	assert.Equal(t, 1, q.gate.InUse())

	// Past the grace window: force-failed and the permit reclaimed.
	q.sweep(now.Add(cfg.TaskTimeout + cfg.CleanupInterval + time.Second))
	snap, snapOK = q.registry.Snapshot(stuck.ID)
	require.True(t, snapOK)
	assert.Equal(t, domain.TaskStatusFailed, snap.Status)
	assert.Equal(t, errTimeoutCause, snap.Error)
	assert.Equal(t, 0, q.gate.InUse())

	// The failure is persisted for restart durability.
	persisted, persistedOK := store.snapshot(stuck.ID)
	require.True(t, persistedOK)
	assert.Equal(t, domain.TaskStatusFailed, persisted.Status)

	// The worker's own release later is harmless.
	permit.Release()
	assert.Equal(t, 0, q.gate.InUse())
}

func TestSweepIdempotentOnEmptyRegistry(t *testing.T) {
	t.Parallel()

	q := newSweepQueue(t, Config{}, newMockTaskStore(), newMockArtifactStore())
	q.sweep(time.Now())
	q.sweep(time.Now())
	assert.Equal(t, 0, q.registry.Len())
}
