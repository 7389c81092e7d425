// Package synth defines the interface to the speech synthesis engine and a
// local stub implementation. The engine is an opaque collaborator: the rest
// of the application only schedules, bounds, and observes it.
package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voicebox/voicebox-api/internal/domain"
)

// ProgressFunc receives incremental progress from the engine while a
// generation runs: a fraction in [0, 1] and a short human-readable stage
// message. Implementations must be safe to call from the engine's goroutine.
type ProgressFunc func(progress float64, message string)

// Result describes a finished generation: where the audio artifact was
// written and how large it is.
type Result struct {
	OutputPath string
	SizeBytes  int64
}

// Synthesizer converts text to speech. Implementations must honor context
// cancellation at their checkpoint boundaries; engines without checkpoints
// may run to completion, in which case the caller discards the result.
type Synthesizer interface {
	// Synthesize runs one generation with the given parameters, writing the
	// audio artifact to outputPath. The progress callback may be nil.
	Synthesize(ctx context.Context, params domain.GenerationParams, outputPath string, progress ProgressFunc) (Result, error)
}

// StubSynthesizer is a Synthesizer that writes a placeholder artifact
// instead of invoking a real model. It is used in development runs and
// tests, where model checkpoints are unavailable.
type StubSynthesizer struct{}

// NewStubSynthesizer creates a new StubSynthesizer.
func NewStubSynthesizer() *StubSynthesizer {
	return &StubSynthesizer{}
}

var _ Synthesizer = (*StubSynthesizer)(nil)

// Synthesize writes a small placeholder WAV file to outputPath and reports
// full progress. It checks for cancellation before writing.
func (s *StubSynthesizer) Synthesize(
	ctx context.Context,
	params domain.GenerationParams,
	outputPath string,
	progress ProgressFunc,
) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if progress != nil {
		progress(0.5, "Generating audio")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	// A minimal RIFF/WAVE header with no samples.
	header := []byte{
		'R', 'I', 'F', 'F', 36, 0, 0, 0, 'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ', 16, 0, 0, 0, 1, 0, 1, 0,
		0x22, 0x56, 0, 0, 0x44, 0xac, 0, 0, 2, 0, 16, 0,
		'd', 'a', 't', 'a', 0, 0, 0, 0,
	}
	if err := os.WriteFile(outputPath, header, 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write output file: %w", err)
	}

	if progress != nil {
		progress(1.0, "Generation finished")
	}

	return Result{OutputPath: outputPath, SizeBytes: int64(len(header))}, nil
}
