package domain

import (
	"fmt"
)

// Common validation errors for GenerationParams. Each wraps ErrValidation
// so callers can classify them with a single errors.Is check.
var (
	ErrEmptyText        = fmt.Errorf("%w: text cannot be empty", ErrValidation)
	ErrTextTooLong      = fmt.Errorf("%w: text exceeds maximum length", ErrValidation)
	ErrEmptyPromptAudio = fmt.Errorf("%w: prompt audio path cannot be empty", ErrValidation)
	ErrInvalidEmoMode   = fmt.Errorf("%w: invalid emotion mode", ErrValidation)
)

// Emotion control modes accepted by the synthesis engine.
const (
	EmoModeSpeaker   = "speaker"
	EmoModeReference = "reference"
)

// MaxTextLength bounds the input text accepted for a single generation.
const MaxTextLength = 500

// GenerationParams is the immutable synthesis request payload captured at
// submission time: the text to speak, the speaker prompt audio, and the
// sampling knobs forwarded verbatim to the synthesis engine.
type GenerationParams struct {
	Text            string  `json:"text"`
	PromptAudioPath string  `json:"prompt_audio_path"`
	EmoAudioPath    string  `json:"emo_audio_path,omitempty"`
	SpeechLengthMS  int     `json:"speech_length_ms"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
	EmoWeight       float64 `json:"emo_weight"`
	EmoMode         string  `json:"emo_mode"`
}

// DefaultGenerationParams returns GenerationParams with the engine's
// default sampling knobs applied. Text and prompt audio must still be set
// by the caller.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature: 0.8,
		TopP:        0.8,
		TopK:        30,
		EmoWeight:   0.65,
		EmoMode:     EmoModeSpeaker,
	}
}

// Validate checks if the GenerationParams have valid data.
// Returns an error if any field fails validation.
func (p *GenerationParams) Validate() error {
	if p.Text == "" {
		return ErrEmptyText
	}

	if len(p.Text) > MaxTextLength {
		return fmt.Errorf("%w: %d > %d characters", ErrTextTooLong, len(p.Text), MaxTextLength)
	}

	if p.PromptAudioPath == "" {
		return ErrEmptyPromptAudio
	}

	if p.Temperature < 0.1 || p.Temperature > 2.0 {
		return fmt.Errorf("%w: temperature must be in [0.1, 2.0]", ErrValidation)
	}

	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("%w: top_p must be in [0.0, 1.0]", ErrValidation)
	}

	if p.TopK < 0 || p.TopK > 100 {
		return fmt.Errorf("%w: top_k must be in [0, 100]", ErrValidation)
	}

	if p.EmoWeight < 0 || p.EmoWeight > 1 {
		return fmt.Errorf("%w: emo_weight must be in [0.0, 1.0]", ErrValidation)
	}

	if p.EmoMode != EmoModeSpeaker && p.EmoMode != EmoModeReference {
		return fmt.Errorf("%w: %q", ErrInvalidEmoMode, p.EmoMode)
	}

	return nil
}
