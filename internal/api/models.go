package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/queue"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// GenerateRequest defines the payload for submitting a synthesis task.
// Omitted sampling fields fall back to the generation defaults.
type GenerateRequest struct {
	Text            string   `json:"text"                        validate:"required,max=500"`
	PromptAudioPath string   `json:"prompt_audio_path"           validate:"required"`
	EmoAudioPath    string   `json:"emo_audio_path,omitempty"`
	SpeechLengthMS  int      `json:"speech_length_ms,omitempty"  validate:"omitempty,gte=0"`
	Temperature     *float64 `json:"temperature,omitempty"       validate:"omitempty,gt=0,lte=2"`
	TopP            *float64 `json:"top_p,omitempty"             validate:"omitempty,gt=0,lte=1"`
	TopK            *int     `json:"top_k,omitempty"             validate:"omitempty,gte=1"`
	EmoWeight       *float64 `json:"emo_weight,omitempty"        validate:"omitempty,gte=0,lte=1"`
	EmoMode         string   `json:"emo_mode,omitempty"          validate:"omitempty,oneof=speaker reference"`
}

// ToParams merges the request onto the generation defaults.
func (req GenerateRequest) ToParams() domain.GenerationParams {
	params := domain.DefaultGenerationParams()
	params.Text = req.Text
	params.PromptAudioPath = req.PromptAudioPath
	params.EmoAudioPath = req.EmoAudioPath
	params.SpeechLengthMS = req.SpeechLengthMS
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		params.TopP = *req.TopP
	}
	if req.TopK != nil {
		params.TopK = *req.TopK
	}
	if req.EmoWeight != nil {
		params.EmoWeight = *req.EmoWeight
	}
	if req.EmoMode != "" {
		params.EmoMode = req.EmoMode
	}
	return params
}

// UserResponse is the wire representation of a user account. Password
// material never leaves the store layer.
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	IsAdmin         bool      `json:"is_admin"`
	GenerationCount int64     `json:"generation_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUserResponse shapes a domain user for the wire.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		IsAdmin:         user.IsAdmin,
		GenerationCount: user.GenerationCount,
		CreatedAt:       user.CreatedAt,
	}
}

// TaskResponse is the wire representation of a synthesis task.
type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	Status        string     `json:"status"`
	Progress      float64    `json:"progress"`
	Message       string     `json:"message,omitempty"`
	QueuePosition int        `json:"queue_position,omitempty"`
	Error         string     `json:"error,omitempty"`
	ResultSize    int64      `json:"result_size_bytes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// TaskListResponse is the paginated task listing payload.
type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// NewTaskResponse shapes a queue view for the wire. Result paths stay
// server-side; clients fetch audio through the download endpoint.
func NewTaskResponse(view *queue.TaskView) TaskResponse {
	task := view.Task
	resp := TaskResponse{
		ID:            task.ID,
		Status:        string(task.Status),
		Progress:      task.Progress,
		Message:       task.Message,
		QueuePosition: view.Position,
		Error:         task.Error,
		CreatedAt:     task.CreatedAt,
		StartedAt:     task.StartedAt,
		CompletedAt:   task.CompletedAt,
	}
	if task.Result != nil {
		resp.ResultSize = task.Result.SizeBytes
	}
	return resp
}
