package bootstrap

import (
	"context"
	"log/slog"

	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/telemetry"

	"go.uber.org/fx"
)

var TelemetryModule = fx.Module("telemetry",
	fx.Invoke(StartTelemetry),
)

func StartTelemetry(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) {
	var shutdown func(context.Context) error

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = telemetry.Init(ctx, cfg.Telemetry)
			if err != nil {
				return err
			}
			if cfg.Telemetry.Enabled {
				logger.Info("tracing enabled", "endpoint", cfg.Telemetry.Endpoint)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}
