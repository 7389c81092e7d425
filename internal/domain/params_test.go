package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerationParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*GenerationParams)
		wantErr error
	}{
		{
			name:    "valid defaults",
			mutate:  func(p *GenerationParams) {},
			wantErr: nil,
		},
		{
			name:    "empty text",
			mutate:  func(p *GenerationParams) { p.Text = "" },
			wantErr: ErrEmptyText,
		},
		{
			name:    "text too long",
			mutate:  func(p *GenerationParams) { p.Text = strings.Repeat("a", MaxTextLength+1) },
			wantErr: ErrTextTooLong,
		},
		{
			name:    "missing prompt audio",
			mutate:  func(p *GenerationParams) { p.PromptAudioPath = "" },
			wantErr: ErrEmptyPromptAudio,
		},
		{
			name:    "temperature out of range",
			mutate:  func(p *GenerationParams) { p.Temperature = 2.5 },
			wantErr: ErrValidation,
		},
		{
			name:    "top_p out of range",
			mutate:  func(p *GenerationParams) { p.TopP = 1.5 },
			wantErr: ErrValidation,
		},
		{
			name:    "top_k out of range",
			mutate:  func(p *GenerationParams) { p.TopK = 500 },
			wantErr: ErrValidation,
		},
		{
			name:    "emo_weight out of range",
			mutate:  func(p *GenerationParams) { p.EmoWeight = -0.1 },
			wantErr: ErrValidation,
		},
		{
			name:    "invalid emo mode",
			mutate:  func(p *GenerationParams) { p.EmoMode = "loud" },
			wantErr: ErrInvalidEmoMode,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := DefaultGenerationParams()
			params.Text = "A short sentence."
			params.PromptAudioPath = "/tmp/prompt.wav"
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
