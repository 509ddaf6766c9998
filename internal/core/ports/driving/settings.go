package driving

import (
	"context"

	"github.com/custodia-labs/docsight/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the stored settings overlaid on the defaults.
	Get() (*domain.Settings, error)

	// Set parses value according to the key's type and persists it.
	Set(key, value string) error

	// Keys lists every recognised settings key in display order.
	Keys() []string

	// Validate checks the current settings.
	// Failures wrap domain.ErrInvalidConfiguration.
	Validate() error

	// Check validates the settings and pings the configured encoders.
	Check(ctx context.Context) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
