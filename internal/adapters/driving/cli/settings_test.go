package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestSettingsCmd_ShowDefaults(t *testing.T) {
	setupTestRuntime(t)

	out, err := execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Chunk size:         1000")
	assert.Contains(t, out, "Overlap:            200")
	assert.Contains(t, out, "Backend:            sqlite")
	assert.Contains(t, out, "not set")
}

func TestSettingsCmd_SetAndShow(t *testing.T) {
	setupTestRuntime(t)

	out, err := execute(t, "settings", "set", "pipeline.chunk_size", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline.chunk_size updated")

	out, err = execute(t, "settings", "set", "llm.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "llm.api_key updated")

	out, err = execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Chunk size:         500")
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestSettingsCmd_SetRejectsInvalid(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "settings", "set", "pipeline.overlap", "1000")
	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)

	_, err = execute(t, "settings", "set", "pipeline.chunk_size", "abc")
	assert.Error(t, err)

	_, err = execute(t, "settings", "set", "nope", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)

	out, err := execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Chunk size:         1000")
	assert.Contains(t, out, "Overlap:            200")
}

func TestSettingsCmd_Keys(t *testing.T) {
	setupTestRuntime(t)

	out, err := execute(t, "settings", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline.chunk_size")
	assert.Contains(t, out, "query.relevance_threshold")
	assert.Contains(t, out, "llm.api_key")
}

func TestSettingsCmd_RuntimeUsesStoredChunking(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "settings", "set", "pipeline.overlap", "2")
	require.NoError(t, err)
	_, err = execute(t, "settings", "set", "pipeline.chunk_size", "10")
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "firstrand.txt", "FirstRand normalised earnings.")
	_, err = execute(t, "ingest", path, "--id", "fsr")
	require.NoError(t, err)
	resetFlags()

	out, err := execute(t, "documents", "show", "fsr")
	require.NoError(t, err)
	assert.Contains(t, out, "Chunks:     4")
}

func TestSettingsCmd_CheckWithoutLLM(t *testing.T) {
	setupTestRuntime(t)

	_, err := execute(t, "settings", "check")
	assert.ErrorIs(t, err, domain.ErrLLMNotConfigured)
}
