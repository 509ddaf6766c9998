// Package ai builds the embedding backends selected in settings.
package ai

import (
	"fmt"

	"github.com/custodia-labs/docsight/internal/adapters/driven/embedding/clip"
	"github.com/custodia-labs/docsight/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docsight/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docsight/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// NewTextEmbedder creates the text encoder selected by settings.
func NewTextEmbedder(settings *domain.Settings) (driven.EmbeddingService, error) {
	e := settings.Embedding
	switch settings.Models.TextEncoder {
	case domain.TextEncoderHashing:
		return hashing.NewEmbeddingService(e.TextDim), nil

	case domain.TextEncoderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    e.BaseURL,
			Model:      e.TextModel,
			Dimensions: e.TextDim,
		}), nil

	case domain.TextEncoderOpenAI:
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     e.APIKey,
			BaseURL:    e.BaseURL,
			Model:      e.TextModel,
			Dimensions: e.TextDim,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unsupported text encoder %q",
			domain.ErrInvalidConfiguration, settings.Models.TextEncoder)
	}
}

// NewImageEmbedder creates the image encoder selected by settings.
// captionDir holds per-page OCR text used by the hashing encoder.
func NewImageEmbedder(settings *domain.Settings, captionDir string) (driven.ImageEmbeddingService, error) {
	e := settings.Embedding
	switch settings.Models.ImageEncoder {
	case domain.ImageEncoderHashing:
		return hashing.NewImageEmbeddingService(e.ImageDim, hashing.WithCaptionDir(captionDir)), nil

	case domain.ImageEncoderCLIP:
		return clip.NewEmbeddingService(clip.Config{
			BaseURL:    e.ImageBaseURL,
			Dimensions: e.ImageDim,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported image encoder %q",
			domain.ErrInvalidConfiguration, settings.Models.ImageEncoder)
	}
}
