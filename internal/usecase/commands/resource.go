package commands

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/usecase/shared"
)

// ResourceCommands registers the resources reservations are made against.
type ResourceCommands struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewResourceCommands(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) *ResourceCommands {
	return &ResourceCommands{uow: uow, clock: clk, logger: logger}
}

// CreateCountable registers a stock resource. A nil capacity means unlimited.
func (c *ResourceCommands) CreateCountable(ctx context.Context, name string, capacity *int) (*resource.Resource, error) {
	res, err := resource.NewCountable(name, capacity, c.clock.Now())
	if err != nil {
		return nil, err
	}
	return c.create(ctx, res)
}

func (c *ResourceCommands) CreateInterval(ctx context.Context, name string, policy resource.IntervalPolicy) (*resource.Resource, error) {
	res, err := resource.NewInterval(name, policy, c.clock.Now())
	if err != nil {
		return nil, err
	}
	return c.create(ctx, res)
}

func (c *ResourceCommands) create(ctx context.Context, res *resource.Resource) (*resource.Resource, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Resources().Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "resource created",
		slog.String("resource_id", res.ID().String()),
		slog.String("kind", res.Kind().String()),
	)
	return res, nil
}
