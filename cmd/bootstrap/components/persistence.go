package components

import (
	"reservation-engine/internal/infra/uow"
	"reservation-engine/internal/pkg/metrics"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		metrics.Engine,
		// UnitOfWork; repositories are created per transaction
		uow.NewPostgresUoW,
	),
)
