package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/validator"
)

func TestRenderPrompt(t *testing.T) {
	var buf bytes.Buffer
	err := renderPrompt(&buf, &validator.ContentGenerateRequest{
		Type:       models.ContentQuiz,
		Subject:    "Science",
		GradeLevel: "P6",
		Topic:      "Photosynthesis",
		Language:   "lg",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "--- system ---")
	assert.Contains(t, out, "Photosynthesis")
	assert.Contains(t, out, "Language: Local language with English translations")
}

func TestRenderPrompt_RejectsInvalidRequest(t *testing.T) {
	var buf bytes.Buffer
	err := renderPrompt(&buf, &validator.ContentGenerateRequest{
		Type:       "poem",
		Subject:    "Science",
		GradeLevel: "P6",
		Topic:      "Photosynthesis",
	})
	assert.ErrorIs(t, err, services.ErrInvalidContentType)
	assert.Empty(t, buf.String())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "learn-service dev")
}
