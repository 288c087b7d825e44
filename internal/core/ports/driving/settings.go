package driving

import "github.com/custodia-labs/mediascope/internal/core/domain"

// SettingsService loads the effective configuration.
type SettingsService interface {
	// Get returns settings merged from defaults, the config file and the environment.
	Get() (*domain.Settings, error)

	// Set stores a single key in the config file.
	Set(key string, value any) error

	// ConfigPath returns the config file location.
	ConfigPath() string
}
