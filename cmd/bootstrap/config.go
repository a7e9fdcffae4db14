package bootstrap

import (
	"reservation-engine/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	ConfigSections,
)

// ConfigSections exposes the sections individual components depend on.
var ConfigSections = fx.Provide(
	func(cfg config.Config) config.EngineConfig { return cfg.Engine },
	func(cfg config.Config) config.OutboxConfig { return cfg.Outbox },
)
