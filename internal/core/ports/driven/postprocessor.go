package driven

import (
	"context"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// PostProcessor turns processed document pages into indexable chunks.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the chunks of every page in page order.
	Process(ctx context.Context, meta *domain.DocumentMetadata) ([]domain.Chunk, error)
}
