package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
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
		{name: "Very long key", input: "sk-proj-1234567890abcdefghijklmnop", expected: "sk-p...mnop"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", orDefault("", "fallback"))
	assert.Equal(t, "value", orDefault("value", "fallback"))
}

func TestSettingsShowCmd(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setTestServices(t, Services{Settings: newMockSettingsService()})

		out, err := executeCommand(t, "settings")
		require.NoError(t, err)
		assert.Contains(t, out, "Text encoder:  Hashing (offline, deterministic)")
		assert.Contains(t, out, "Chunking:       100 tokens, 20 overlap")
		assert.Contains(t, out, "Top-k: text 5, image 3")
		assert.Contains(t, out, "Evidence threshold: 0.40")
		assert.Contains(t, out, "Data dir: ~/.docsight/data")
		assert.Contains(t, out, "Status: valid")
		assert.NotContains(t, out, "API key")
	})

	t.Run("openai key masked", func(t *testing.T) {
		svc := newMockSettingsService()
		svc.settings.Models.TextEncoder = domain.TextEncoderOpenAI
		svc.settings.Embedding.APIKey = "sk-1234567890abcdef"
		setTestServices(t, Services{Settings: svc})

		out, err := executeCommand(t, "settings", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "API key:        sk-1...cdef")
		assert.NotContains(t, out, "1234567890")
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := newMockSettingsService()
		svc.validateErr = errors.New("chunk overlap 120 must be smaller than size 100")
		setTestServices(t, Services{Settings: svc})

		out, err := executeCommand(t, "settings", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "Status: invalid")
		assert.Contains(t, out, "chunk overlap 120")
	})

	t.Run("requires settings service", func(t *testing.T) {
		setTestServices(t, Services{})
		_, err := executeCommand(t, "settings")
		assert.ErrorContains(t, err, "settings service not configured")
	})
}

func TestSettingsSetCmd(t *testing.T) {
	t.Run("sets value", func(t *testing.T) {
		svc := newMockSettingsService()
		setTestServices(t, Services{Settings: svc})

		out, err := executeCommand(t, "settings", "set", "embeddings.chunk_size", "120")
		require.NoError(t, err)
		assert.Equal(t, "120", svc.set["embeddings.chunk_size"])
		assert.Contains(t, out, "embeddings.chunk_size = 120")
	})

	t.Run("api key is masked in output", func(t *testing.T) {
		svc := newMockSettingsService()
		setTestServices(t, Services{Settings: svc})

		out, err := executeCommand(t, "settings", "set", apiKeySetting, "sk-1234567890abcdef")
		require.NoError(t, err)
		assert.Equal(t, "sk-1234567890abcdef", svc.set[apiKeySetting])
		assert.Contains(t, out, "embeddings.api_key = sk-1...cdef")
	})

	t.Run("missing value", func(t *testing.T) {
		setTestServices(t, Services{Settings: newMockSettingsService()})
		_, err := executeCommand(t, "settings", "set", "embeddings.chunk_size")
		assert.ErrorContains(t, err, "missing value for embeddings.chunk_size")
	})

	t.Run("rejected value", func(t *testing.T) {
		svc := newMockSettingsService()
		svc.setErr = domain.ErrInvalidConfiguration
		setTestServices(t, Services{Settings: svc})

		_, err := executeCommand(t, "settings", "set", "models.text_encoder", "bert")
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})

	t.Run("warns when settings become invalid", func(t *testing.T) {
		svc := newMockSettingsService()
		svc.validateErr = errors.New("text encoder openai requires embeddings.api_key")
		setTestServices(t, Services{Settings: svc})

		out, err := executeCommand(t, "settings", "set", "models.text_encoder", "openai")
		require.NoError(t, err)
		assert.Contains(t, out, "Warning: settings are not valid yet")
	})
}

func TestSettingsKeysCmd(t *testing.T) {
	setTestServices(t, Services{Settings: newMockSettingsService()})

	out, err := executeCommand(t, "settings", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "models.text_encoder\n")
	assert.Contains(t, out, "embeddings.chunk_size\n")
}

func TestSettingsCheckCmd(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		setTestServices(t, Services{Settings: newMockSettingsService()})

		out, err := executeCommand(t, "settings", "check")
		require.NoError(t, err)
		assert.Contains(t, out, "encoders reachable")
	})

	t.Run("unreachable encoder", func(t *testing.T) {
		svc := newMockSettingsService()
		svc.checkErr = domain.ErrEmbeddingUnavailable
		setTestServices(t, Services{Settings: svc})

		_, err := executeCommand(t, "settings", "check")
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
