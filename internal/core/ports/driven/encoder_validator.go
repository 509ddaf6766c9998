package driven

import (
	"context"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// EncoderValidator checks that the configured embedding backends are
// reachable. Implementations build the encoders the settings select and
// ping them.
type EncoderValidator interface {
	// ValidateEncoders returns nil when both encoders answer. Failures
	// wrap domain.ErrEmbeddingUnavailable or domain.ErrInvalidConfiguration.
	ValidateEncoders(ctx context.Context, settings *domain.Settings) error
}
