package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

func TestNewTextEmbedder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.Settings)
		wantModel string
		wantDim   int
		wantErr   error
	}{
		{
			name:      "hashing default",
			mutate:    func(*domain.Settings) {},
			wantModel: "hashing-text",
			wantDim:   384,
		},
		{
			name: "ollama",
			mutate: func(s *domain.Settings) {
				s.Models.TextEncoder = domain.TextEncoderOllama
				s.Embedding.TextModel = "nomic-embed-text"
				s.Embedding.TextDim = 768
			},
			wantModel: "nomic-embed-text",
			wantDim:   768,
		},
		{
			name: "openai",
			mutate: func(s *domain.Settings) {
				s.Models.TextEncoder = domain.TextEncoderOpenAI
				s.Embedding.APIKey = "sk-test"
			},
			wantModel: "text-embedding-3-small",
			wantDim:   384,
		},
		{
			name: "openai without key",
			mutate: func(s *domain.Settings) {
				s.Models.TextEncoder = domain.TextEncoderOpenAI
			},
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "unknown encoder",
			mutate: func(s *domain.Settings) {
				s.Models.TextEncoder = "bert"
			},
			wantErr: domain.ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultSettings()
			tt.mutate(&settings)

			svc, err := NewTextEmbedder(&settings)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDim, svc.Dimensions())
		})
	}
}

func TestNewImageEmbedder(t *testing.T) {
	t.Run("hashing default", func(t *testing.T) {
		settings := domain.DefaultSettings()
		svc, err := NewImageEmbedder(&settings, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "hashing-image", svc.ModelName())
		assert.Equal(t, 512, svc.Dimensions())
	})

	t.Run("clip", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Models.ImageEncoder = domain.ImageEncoderCLIP
		settings.Embedding.ImageDim = 768

		svc, err := NewImageEmbedder(&settings, "")
		require.NoError(t, err)
		assert.Equal(t, "ViT-B-32", svc.ModelName())
		assert.Equal(t, 768, svc.Dimensions())
	})

	t.Run("unknown encoder", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Models.ImageEncoder = "siglip"

		_, err := NewImageEmbedder(&settings, "")
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})
}
