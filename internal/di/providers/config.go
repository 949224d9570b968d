// Package providers contains dependency injection providers for the events server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/CheongSzesuen/eventsWeb/internal/config"
	"github.com/CheongSzesuen/eventsWeb/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	source := cfg.Data.BaseURL
	if cfg.Data.BasePath != "" {
		source = cfg.Data.BasePath
	}
	log.Info("Starting events server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_source", source,
		"metadata_path", cfg.Metadata.BasePath,
	)

	return log, nil
}
