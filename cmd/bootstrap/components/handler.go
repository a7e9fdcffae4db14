package components

import (
	"reservation-engine/internal/handler"
	"reservation-engine/internal/handler/api"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		NewOpsHandler,
	),
	fx.Invoke(handler.NewRouter),
)

func NewOpsHandler(
	pool *pgxpool.Pool,
	cmds *commands.ReservationCommands,
	relay *commands.OutboxRelay,
	q *queries.ReservationQueries,
	cfg config.Config,
) *api.OpsHandler {
	return api.NewOpsHandler(pool, cmds, relay, q, cfg)
}
