package api

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/queue"
	"github.com/voicebox/voicebox-api/internal/service"
)

// newTestTask builds a valid pending task for handler tests.
func newTestTask(t *testing.T, owner uuid.UUID) *domain.Task {
	t.Helper()
	params := domain.DefaultGenerationParams()
	params.Text = "Read this aloud."
	params.PromptAudioPath = "prompts/reference.wav"
	task, err := domain.NewTask(owner, params)
	require.NoError(t, err)
	return task
}

// mockUserService implements service.UserService with settable behaviors.
type mockUserService struct {
	RegisterFn         func(ctx context.Context, email, password string) (*domain.User, error)
	AuthenticateFn     func(ctx context.Context, email, password string) (*domain.User, error)
	GetUserFn          func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	RecordGenerationFn func(ctx context.Context, userID uuid.UUID) error
	DeleteUserFn       func(ctx context.Context, userID uuid.UUID) error
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email, password)
	}
	return domain.NewUser(email, password)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return domain.NewUser(email, password)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return &domain.User{ID: userID}, nil
}

func (m *mockUserService) RecordGeneration(ctx context.Context, userID uuid.UUID) error {
	if m.RecordGenerationFn != nil {
		return m.RecordGenerationFn(ctx, userID)
	}
	return nil
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, userID)
	}
	return nil
}

// mockTaskQueue implements TaskQueue with settable behaviors.
type mockTaskQueue struct {
	SubmitFn func(ctx context.Context, ownerID uuid.UUID, params domain.GenerationParams) (*queue.TaskView, error)
	GetFn    func(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*queue.TaskView, error)
	ListFn   func(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]*queue.TaskView, int, error)
	CancelFn func(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*queue.TaskView, error)
	DeleteFn func(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) error
}

var _ TaskQueue = (*mockTaskQueue)(nil)

func (m *mockTaskQueue) Submit(ctx context.Context, ownerID uuid.UUID, params domain.GenerationParams) (*queue.TaskView, error) {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, ownerID, params)
	}
	task, err := domain.NewTask(ownerID, params)
	if err != nil {
		return nil, err
	}
	return &queue.TaskView{Task: task, Position: 1}, nil
}

func (m *mockTaskQueue) Get(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*queue.TaskView, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, taskID, requesterID, isAdmin)
	}
	return nil, queue.ErrTaskNotFound
}

func (m *mockTaskQueue) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]*queue.TaskView, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockTaskQueue) Cancel(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*queue.TaskView, error) {
	if m.CancelFn != nil {
		return m.CancelFn(ctx, taskID, requesterID, isAdmin)
	}
	return nil, queue.ErrTaskNotFound
}

func (m *mockTaskQueue) Delete(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, taskID, requesterID, isAdmin)
	}
	return queue.ErrTaskNotFound
}
