package driving

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// SettingEntry is one resolved setting for display.
type SettingEntry struct {
	Key    string
	Value  string
	Source string
}

// Setting sources reported in SettingEntry.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with overrides applied.
	Get() (*domain.AppSettings, error)

	// Set validates and stores a single setting by its dotted key.
	Set(key, value string) error

	// Keys lists every supported setting key.
	Keys() []string

	// Entries returns every setting with its resolved value and origin.
	// Secrets are masked.
	Entries() ([]SettingEntry, error)

	// Validate checks settings for structural and semantic errors.
	Validate(settings *domain.AppSettings) error

	// CheckProviders pings the configured embedding and completion services.
	CheckProviders(ctx context.Context) error
}
