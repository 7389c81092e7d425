package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validParams() GenerationParams {
	params := DefaultGenerationParams()
	params.Text = "Hello from the synthesizer."
	params.PromptAudioPath = "/tmp/prompt.wav"
	return params
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	task, err := NewTask(ownerID, validParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.OwnerID != ownerID {
		t.Errorf("Expected owner ID %s, got %s", ownerID, task.OwnerID)
	}

	if task.Status != TaskStatusPending {
		t.Errorf("Expected status %s, got %s", TaskStatusPending, task.Status)
	}

	if task.Progress != 0 {
		t.Errorf("Expected zero progress, got %f", task.Progress)
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if task.StartedAt != nil || task.CompletedAt != nil {
		t.Error("Expected nil StartedAt and CompletedAt on a new task")
	}

	// Test invalid owner
	_, err = NewTask(uuid.Nil, validParams())
	if !errors.Is(err, ErrEmptyTaskOwnerID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskOwnerID, err)
	}

	// Test invalid params
	params := validParams()
	params.Text = ""
	_, err = NewTask(ownerID, params)
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected error %v, got %v", ErrEmptyText, err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	task, err := NewTask(uuid.New(), validParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// pending -> processing
	if err := task.Start(now); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if task.Status != TaskStatusProcessing {
		t.Errorf("Expected status %s, got %s", TaskStatusProcessing, task.Status)
	}
	if task.StartedAt == nil {
		t.Error("Expected StartedAt to be set after Start")
	}

	// processing -> completed
	result := ResultRef{Path: "/outputs/x.wav", SizeBytes: 1024}
	if err := task.Complete(result, now); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if task.Status != TaskStatusCompleted {
		t.Errorf("Expected status %s, got %s", TaskStatusCompleted, task.Status)
	}
	if task.Progress != 1.0 {
		t.Errorf("Expected progress 1.0, got %f", task.Progress)
	}
	if task.Result == nil || task.Result.Path != result.Path {
		t.Error("Expected result ref to be recorded")
	}
	if task.Error != "" {
		t.Errorf("Expected empty error on completed task, got %q", task.Error)
	}
	if task.CompletedAt == nil {
		t.Error("Expected CompletedAt to be set after Complete")
	}

	// No transition out of a terminal state.
	if err := task.Start(now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
	if err := task.Fail("late failure", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
	if err := task.Cancel(now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestTaskFail(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	task, _ := NewTask(uuid.New(), validParams())

	// Cannot fail a pending task; it must be started first.
	if err := task.Fail("boom", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}

	if err := task.Start(now); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := task.Fail("synthesis error: boom", now); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	if task.Status != TaskStatusFailed {
		t.Errorf("Expected status %s, got %s", TaskStatusFailed, task.Status)
	}
	if task.Error == "" {
		t.Error("Expected error cause to be recorded")
	}
	if task.Result != nil {
		t.Error("Expected nil result on failed task")
	}
}

func TestTaskCancel(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	// Cancel from pending.
	task, _ := NewTask(uuid.New(), validParams())
	if err := task.Cancel(now); err != nil {
		t.Fatalf("Cancel from pending failed: %v", err)
	}
	if task.Status != TaskStatusCancelled {
		t.Errorf("Expected status %s, got %s", TaskStatusCancelled, task.Status)
	}

	// Cancel from processing.
	task, _ = NewTask(uuid.New(), validParams())
	if err := task.Start(now); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := task.Cancel(now); err != nil {
		t.Fatalf("Cancel from processing failed: %v", err)
	}
	if task.Status != TaskStatusCancelled {
		t.Errorf("Expected status %s, got %s", TaskStatusCancelled, task.Status)
	}
}

func TestTaskSetProgress(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	task, _ := NewTask(uuid.New(), validParams())

	// Ignored while pending.
	task.SetProgress(0.5, "early")
	if task.Progress != 0 {
		t.Errorf("Expected progress update to be ignored while pending, got %f", task.Progress)
	}

	if err := task.Start(now); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	task.SetProgress(0.4, "generating")
	if task.Progress != 0.4 {
		t.Errorf("Expected progress 0.4, got %f", task.Progress)
	}

	// Monotonic: lower values do not regress progress.
	task.SetProgress(0.2, "")
	if task.Progress != 0.4 {
		t.Errorf("Expected progress to stay at 0.4, got %f", task.Progress)
	}

	// Clamped to 1.
	task.SetProgress(1.5, "")
	if task.Progress != 1.0 {
		t.Errorf("Expected progress clamped to 1.0, got %f", task.Progress)
	}
}

func TestTaskOwnedBy(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	task, _ := NewTask(ownerID, validParams())

	if !task.OwnedBy(ownerID, false) {
		t.Error("Expected owner to have access")
	}
	if task.OwnedBy(uuid.New(), false) {
		t.Error("Expected non-owner to be denied")
	}
	if !task.OwnedBy(uuid.New(), true) {
		t.Error("Expected admin to have access")
	}
}

func TestTaskClone(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	task, _ := NewTask(uuid.New(), validParams())
	if err := task.Start(now); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := task.Complete(ResultRef{Path: "/outputs/y.wav", SizeBytes: 42}, now); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	clone := task.Clone()
	clone.Result.Path = "/outputs/mutated.wav"
	clone.Progress = 0.1

	if task.Result.Path != "/outputs/y.wav" {
		t.Error("Expected clone mutation not to affect original result")
	}
	if task.Progress != 1.0 {
		t.Error("Expected clone mutation not to affect original progress")
	}
}
