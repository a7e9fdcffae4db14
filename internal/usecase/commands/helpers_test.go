//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra/memstore"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/logger"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type engine struct {
	store     *memstore.Store
	clock     *clock.MockClock
	cfg       config.Config
	resources *commands.ResourceCommands
	cmds      *commands.ReservationCommands
}

func newEngine(t *testing.T, opts ...commands.Option) *engine {
	t.Helper()
	cfg := config.NewTestConfig()
	store := memstore.New(logger.Nop())
	clk := clock.NewMockClock(baseTime)
	return &engine{
		store:     store,
		clock:     clk,
		cfg:       cfg,
		resources: commands.NewResourceCommands(store, clk, logger.Nop()),
		cmds:      commands.NewReservationCommands(store, clk, logger.Nop(), nil, cfg.Engine, opts...),
	}
}

func (e *engine) countable(t *testing.T, capacity *int) *resource.Resource {
	t.Helper()
	res, err := e.resources.CreateCountable(context.Background(), "tickets", capacity)
	require.NoError(t, err)
	return res
}

func (e *engine) interval(t *testing.T, bufferMinutes int) *resource.Resource {
	t.Helper()
	res, err := e.resources.CreateInterval(context.Background(), "court", resource.IntervalPolicy{BufferMinutes: bufferMinutes})
	require.NoError(t, err)
	return res
}

func (e *engine) stock(t *testing.T, resourceID uuid.UUID) inventory.Stock {
	t.Helper()
	var st inventory.Stock
	err := e.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Resources().FindByID(ctx, resourceID)
		if err != nil {
			return err
		}
		st = res.Stock()
		return nil
	})
	require.NoError(t, err)
	return st
}

func (e *engine) reservation(t *testing.T, id uuid.UUID) *reservation.Reservation {
	t.Helper()
	var r *reservation.Reservation
	err := e.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var ferr error
		r, ferr = tx.Reservations().FindByID(ctx, id)
		return ferr
	})
	require.NoError(t, err)
	return r
}

func (e *engine) history(t *testing.T, id uuid.UUID) []reservation.Transition {
	t.Helper()
	var out []reservation.Transition
	err := e.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var lerr error
		out, lerr = tx.Transitions().ListByReservation(ctx, id)
		return lerr
	})
	require.NoError(t, err)
	return out
}

// slotAt returns a time on the day after baseTime.
func slotAt(hour, minute int) time.Time {
	return baseTime.Truncate(24*time.Hour).Add(24*time.Hour + time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func intPtr(v int) *int { return &v }
