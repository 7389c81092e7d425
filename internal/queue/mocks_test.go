package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/platform/synth"
)

// mockTaskStore is a configurable in-memory TaskStore. Behavior can be
// overridden per test via the Fn fields; unset fields fall back to the
// built-in map.
type mockTaskStore struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*domain.Task

	SaveSnapshotFn   func(ctx context.Context, task *domain.Task) error
	DeleteSnapshotFn func(ctx context.Context, taskID uuid.UUID) error
	LoadAllOnBootFn  func(ctx context.Context) ([]*domain.Task, error)
}

var _ TaskStore = (*mockTaskStore)(nil)

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{snapshots: make(map[uuid.UUID]*domain.Task)}
}

func (m *mockTaskStore) SaveSnapshot(ctx context.Context, task *domain.Task) error {
	if m.SaveSnapshotFn != nil {
		return m.SaveSnapshotFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[task.ID] = task.Clone()
	return nil
}

func (m *mockTaskStore) DeleteSnapshot(ctx context.Context, taskID uuid.UUID) error {
	if m.DeleteSnapshotFn != nil {
		return m.DeleteSnapshotFn(ctx, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, taskID)
	return nil
}

func (m *mockTaskStore) LoadAllOnBoot(ctx context.Context) ([]*domain.Task, error) {
	if m.LoadAllOnBootFn != nil {
		return m.LoadAllOnBootFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]*domain.Task, 0, len(m.snapshots))
	for _, task := range m.snapshots {
		tasks = append(tasks, task.Clone())
	}
	return tasks, nil
}

func (m *mockTaskStore) snapshot(taskID uuid.UUID) (*domain.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.snapshots[taskID]
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// mockArtifactStore records removals without touching the filesystem.
type mockArtifactStore struct {
	mu      sync.Mutex
	removed []uuid.UUID

	RemoveFn func(taskID uuid.UUID) error
}

var _ ArtifactStore = (*mockArtifactStore)(nil)

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{}
}

func (m *mockArtifactStore) Path(taskID uuid.UUID) string {
	return "/tmp/voicebox-test/" + taskID.String() + ".wav"
}

func (m *mockArtifactStore) Remove(taskID uuid.UUID) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, taskID)
	return nil
}

func (m *mockArtifactStore) removedIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uuid.UUID, len(m.removed))
	copy(out, m.removed)
	return out
}

// mockSynthesizer lets tests script synthesis outcomes. With no override
// it succeeds immediately with a fixed-size result.
type mockSynthesizer struct {
	SynthesizeFn func(ctx context.Context, params domain.GenerationParams, outputPath string, progress synth.ProgressFunc) (synth.Result, error)
}

var _ synth.Synthesizer = (*mockSynthesizer)(nil)

func (m *mockSynthesizer) Synthesize(ctx context.Context, params domain.GenerationParams, outputPath string, progress synth.ProgressFunc) (synth.Result, error) {
	if m.SynthesizeFn != nil {
		return m.SynthesizeFn(ctx, params, outputPath, progress)
	}
	if progress != nil {
		progress(1.0, "done")
	}
	return synth.Result{OutputPath: outputPath, SizeBytes: 44}, nil
}

// blockingSynthesizer parks until its context is cancelled or it is told
// to finish, so tests can hold tasks in the processing state.
type blockingSynthesizer struct {
	started chan string
	release chan struct{}
}

func newBlockingSynthesizer() *blockingSynthesizer {
	return &blockingSynthesizer{
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (b *blockingSynthesizer) Synthesize(ctx context.Context, _ domain.GenerationParams, outputPath string, _ synth.ProgressFunc) (synth.Result, error) {
	b.started <- outputPath
	select {
	case <-ctx.Done():
		return synth.Result{}, ctx.Err()
	case <-b.release:
		return synth.Result{OutputPath: outputPath, SizeBytes: 44}, nil
	}
}
