package synth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicebox/voicebox-api/internal/domain"
	"github.com/voicebox/voicebox-api/internal/platform/synth"
)

func testParams() domain.GenerationParams {
	params := domain.DefaultGenerationParams()
	params.Text = "Hello."
	params.PromptAudioPath = "/tmp/prompt.wav"
	return params
}

func TestStubSynthesizer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "out", "task.wav")

	var lastProgress float64
	var lastMessage string

	engine := synth.NewStubSynthesizer()
	result, err := engine.Synthesize(
		context.Background(),
		testParams(),
		outputPath,
		func(progress float64, message string) {
			lastProgress = progress
			lastMessage = message
		},
	)

	require.NoError(t, err)
	assert.Equal(t, outputPath, result.OutputPath)
	assert.Positive(t, result.SizeBytes)
	assert.Equal(t, 1.0, lastProgress)
	assert.NotEmpty(t, lastMessage)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Equal(t, result.SizeBytes, info.Size())
}

func TestStubSynthesizerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := synth.NewStubSynthesizer()
	_, err := engine.Synthesize(ctx, testParams(), filepath.Join(t.TempDir(), "task.wav"), nil)

	assert.ErrorIs(t, err, context.Canceled)
}
