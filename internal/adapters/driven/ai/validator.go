package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.EncoderValidator = (*ConfigValidator)(nil)

// pingTimeout bounds each connectivity check.
const pingTimeout = 5 * time.Second

// ConfigValidator pings the encoders selected in settings.
type ConfigValidator struct {
	captionDir string
	timeout    time.Duration
}

// NewConfigValidator creates a validator. captionDir is passed to the
// hashing image encoder and may be empty.
func NewConfigValidator(captionDir string) *ConfigValidator {
	return &ConfigValidator{captionDir: captionDir, timeout: pingTimeout}
}

// ValidateEncoders builds both encoders and pings them. Both are checked
// even when the first fails.
func (v *ConfigValidator) ValidateEncoders(ctx context.Context, settings *domain.Settings) error {
	var errs []error

	text, err := NewTextEmbedder(settings)
	if err != nil {
		errs = append(errs, fmt.Errorf("text encoder: %w", err))
	} else {
		errs = append(errs, v.ping(ctx, "text encoder "+text.ModelName(), text.Ping, text.Close))
	}

	image, err := NewImageEmbedder(settings, v.captionDir)
	if err != nil {
		errs = append(errs, fmt.Errorf("image encoder: %w", err))
	} else {
		errs = append(errs, v.ping(ctx, "image encoder "+image.ModelName(), image.Ping, image.Close))
	}

	return errors.Join(errs...)
}

func (v *ConfigValidator) ping(
	ctx context.Context,
	name string,
	ping func(context.Context) error,
	closeFn func() error,
) error {
	defer func() { _ = closeFn() }()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, name, err)
	}
	return nil
}
