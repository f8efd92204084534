package driving

import "github.com/Cyb-Leon/jse-decision-support/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its config key (e.g. "pipeline.chunk_size").
	// The value is parsed to the key's type and the result validated.
	Set(key, value string) error

	// Validate checks settings against their constraints.
	// Returns an error wrapping domain.ErrInvalidSettings.
	Validate(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys lists the recognised config keys.
	Keys() []string
}
