// Package providers contains dependency injection providers for the Shelfmate client.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/logger"
)

// ProvideConfig provides the application configuration, honoring command-line overrides
// registered as a config.Flags value.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags, err := do.Invoke[config.Flags](i)
	if err != nil {
		flags = config.Flags{}
	}
	return config.LoadConfig(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Debug("Starting Shelfmate",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"prefs_backend", cfg.Storage.Backend,
	)

	return log, nil
}
