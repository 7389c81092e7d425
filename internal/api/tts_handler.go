package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/api/shared"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/queue"
	"github.com/voicebox/voicebox-api/internal/redact"
	"github.com/voicebox/voicebox-api/internal/service"
)

// TaskQueue is the queue surface the handler depends on. Implemented by
// *queue.Queue; narrowed here so handler tests can substitute a mock.
type TaskQueue interface {
	Submit(ctx context.Context, ownerID uuid.UUID, params domain.GenerationParams) (*queue.TaskView, error)
	Get(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*queue.TaskView, error)
	List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]*queue.TaskView, int, error)
	Cancel(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) (*queue.TaskView, error)
	Delete(ctx context.Context, taskID, requesterID uuid.UUID, isAdmin bool) error
}

var _ TaskQueue = (*queue.Queue)(nil)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TTSHandler handles synthesis task API requests.
type TTSHandler struct {
	queue     TaskQueue
	users     service.UserService
	validator *validator.Validate
}

// NewTTSHandler creates a new TTSHandler with the given dependencies.
func NewTTSHandler(taskQueue TaskQueue, users service.UserService) *TTSHandler {
	return &TTSHandler{
		queue:     taskQueue,
		users:     users,
		validator: validator.New(),
	}
}

// Generate handles POST /api/tts/generate. Admission never waits for an
// execution slot: the task is accepted, queued, and returned with 202.
func (h *TTSHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	view, err := h.queue.Submit(r.Context(), userID, req.ToParams())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Counter bookkeeping must not fail the submission.
	if err := h.users.RecordGeneration(r.Context(), userID); err != nil {
		slog.Warn("failed to record generation", "error", redact.Error(err), "user_id", userID)
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, NewTaskResponse(view))
}

// ListTasks handles GET /api/tts/tasks.
func (h *TTSHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	views, total, err := h.queue.List(r.Context(), userID, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks := make([]TaskResponse, 0, len(views))
	for _, view := range views {
		tasks = append(tasks, NewTaskResponse(view))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:    tasks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetTask handles GET /api/tts/tasks/{id}.
func (h *TTSHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, isAdmin, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	view, err := h.queue.Get(r.Context(), taskID, userID, isAdmin)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(view))
}

// DownloadAudio handles GET /api/tts/tasks/{id}/download. Audio is only
// available once the task has completed.
func (h *TTSHandler) DownloadAudio(w http.ResponseWriter, r *http.Request) {
	userID, taskID, isAdmin, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	view, err := h.queue.Get(r.Context(), taskID, userID, isAdmin)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task := view.Task
	if task.Status != domain.TaskStatusCompleted || task.Result == nil {
		shared.RespondWithError(w, r, http.StatusConflict, "Audio is only available for completed tasks")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="`+task.ID.String()+`.wav"`)
	http.ServeFile(w, r, task.Result.Path)
}

// CancelTask handles POST /api/tts/tasks/{id}/cancel.
func (h *TTSHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, isAdmin, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	view, err := h.queue.Cancel(r.Context(), taskID, userID, isAdmin)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(view))
}

// DeleteTask handles DELETE /api/tts/tasks/{id}.
func (h *TTSHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, isAdmin, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	if err := h.queue.Delete(r.Context(), taskID, userID, isAdmin); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
	})
}

// queryInt parses a positive integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
