package components

import (
	"log/slog"

	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/metrics"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/events"
	"reservation-engine/internal/usecase/ledger"
	"reservation-engine/internal/usecase/queries"
	"reservation-engine/internal/usecase/scheduler"
	"reservation-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	ledger.New,
	scheduler.New,
	fx.Annotate(
		events.NewLogPublisher,
		fx.As(new(events.Publisher)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger, m *metrics.EngineMetrics, cfg config.EngineConfig) *commands.ReservationCommands {
			return commands.NewReservationCommands(uow, clk, logger, m, cfg)
		},
		commands.NewResourceCommands,
		commands.NewOutboxRelay,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
	),
)
