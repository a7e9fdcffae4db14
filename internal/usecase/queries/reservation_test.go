//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra/memstore"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/logger"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/ledger"
	"reservation-engine/internal/usecase/queries"
	"reservation-engine/internal/usecase/scheduler"
	"reservation-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	clock     *clock.MockClock
	resources *commands.ResourceCommands
	cmds      *commands.ReservationCommands
	queries   *queries.ReservationQueries
}

func newFixture() fixture {
	store := memstore.New(logger.Nop())
	clk := clock.NewMockClock(baseTime)
	cfg := config.NewTestConfig()
	return fixture{
		clock:     clk,
		resources: commands.NewResourceCommands(store, clk, logger.Nop()),
		cmds:      commands.NewReservationCommands(store, clk, logger.Nop(), nil, cfg.Engine),
		queries:   queries.NewReservationQueries(store, ledger.New(clk), scheduler.New(clk)),
	}
}

func TestReservationQueries_GetReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	court, err := f.resources.CreateInterval(ctx, "court", resource.IntervalPolicy{BufferMinutes: 15})
	require.NoError(t, err)
	start := baseTime.Add(26 * time.Hour)
	b := builder.NewReservationBuilder().ForResource(court.ID()).WithSlot(start, start.Add(time.Hour))
	r, err := f.cmds.Reserve(ctx, b.BuildIntervalRequest())
	require.NoError(t, err)

	view, err := f.queries.GetReservation(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, r.ID(), view.ID)
	assert.Equal(t, court.ID(), view.ResourceID)
	assert.Equal(t, string(b.RequesterType), view.RequesterType)
	assert.Equal(t, b.RequesterID, view.RequesterID)
	assert.Equal(t, resource.KindInterval, view.Kind)
	assert.Equal(t, reservation.StatusPending, view.Status)
	assert.Nil(t, view.Quantity)
	require.NotNil(t, view.Start)
	assert.Equal(t, start, *view.Start)
	assert.Equal(t, start.Add(75*time.Minute), *view.OccupiedUntil)
	assert.Equal(t, int64(1), view.Version)
	assert.Equal(t, r.ExpiresAt(), view.ExpiresAt)

	t.Run("error: unknown id", func(t *testing.T) {
		_, err := f.queries.GetReservation(ctx, uuid.New())
		assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
	})
}

func TestReservationQueries_ListTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.resources.CreateCountable(ctx, "tickets", nil)
	require.NoError(t, err)
	r, err := f.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).BuildCountableRequest())
	require.NoError(t, err)
	_, err = f.cmds.Confirm(ctx, r.ID(), reservation.ActorSystemEngine)
	require.NoError(t, err)
	_, err = f.cmds.Cancel(ctx, r.ID(), "refund", reservation.ActorSystemEngine)
	require.NoError(t, err)

	views, err := f.queries.ListTransitions(ctx, r.ID())
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, reservation.StatusPending, views[0].To)
	assert.Equal(t, reservation.StatusConfirmed, views[1].To)
	assert.Equal(t, reservation.StatusCancelled, views[2].To)
	assert.Equal(t, "refund", views[2].Reason)
	assert.Equal(t, "system:engine", views[2].Actor)
}

func TestReservationQueries_ListByResource(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.resources.CreateCountable(ctx, "tickets", nil)
	require.NoError(t, err)
	var ids []uuid.UUID
	for range 5 {
		r, err := f.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).BuildCountableRequest())
		require.NoError(t, err)
		ids = append(ids, r.ID())
		f.clock.Add(time.Second)
	}
	_, err = f.cmds.Cancel(ctx, ids[1], "oops", reservation.ActorSystemEngine)
	require.NoError(t, err)

	t.Run("success: pages oldest first", func(t *testing.T) {
		page, next, err := f.queries.ListByResource(ctx, res.ID(), queries.ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.NotNil(t, next)
		assert.Equal(t, ids[0], page[0].ID)
		assert.Equal(t, ids[1], page[1].ID)

		page, next, err = f.queries.ListByResource(ctx, res.ID(), queries.ListOptions{Limit: 2, After: next})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[2], page[0].ID)

		page, next, err = f.queries.ListByResource(ctx, res.ID(), queries.ListOptions{Limit: 2, After: next})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Nil(t, next)
		assert.Equal(t, ids[4], page[0].ID)
	})

	t.Run("success: status filter", func(t *testing.T) {
		page, _, err := f.queries.ListByResource(ctx, res.ID(), queries.ListOptions{
			Statuses: []reservation.Status{reservation.StatusCancelled},
		})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, ids[1], page[0].ID)
	})

	t.Run("error: malformed cursor", func(t *testing.T) {
		_, _, err := f.queries.ListByResource(ctx, res.ID(), queries.ListOptions{After: &queries.Cursor{After: "%%%"}})
		assert.True(t, errs.Is(err, queries.ErrInvalidCursor))
	})
}

func TestReservationQueries_Availability(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	t.Run("success: countable", func(t *testing.T) {
		res, err := f.resources.CreateCountable(ctx, "seats", intPtr(3))
		require.NoError(t, err)
		_, err = f.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).WithQuantity(2).BuildCountableRequest())
		require.NoError(t, err)

		avail, err := f.queries.AvailableCount(ctx, res.ID())
		require.NoError(t, err)
		assert.Equal(t, 1, avail.Count())
	})

	t.Run("success: unlimited", func(t *testing.T) {
		res, err := f.resources.CreateCountable(ctx, "stream", nil)
		require.NoError(t, err)

		avail, err := f.queries.AvailableCount(ctx, res.ID())
		require.NoError(t, err)
		assert.True(t, avail.IsUnlimited())
	})

	t.Run("success: slot respects the resource buffer", func(t *testing.T) {
		court, err := f.resources.CreateInterval(ctx, "court", resource.IntervalPolicy{BufferMinutes: 10})
		require.NoError(t, err)
		start := baseTime.Add(26 * time.Hour)
		_, err = f.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(court.ID()).
			WithSlot(start, start.Add(time.Hour)).BuildIntervalRequest())
		require.NoError(t, err)

		ok, err := f.queries.IsSlotAvailable(ctx, court.ID(), start.Add(65*time.Minute), start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.queries.IsSlotAvailable(ctx, court.ID(), start.Add(75*time.Minute), start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("error: slot query on countable", func(t *testing.T) {
		res, err := f.resources.CreateCountable(ctx, "boxes", nil)
		require.NoError(t, err)
		start := baseTime.Add(time.Hour)
		_, err = f.queries.IsSlotAvailable(ctx, res.ID(), start, start.Add(time.Hour))
		assert.True(t, errs.Is(err, scheduler.ErrNotInterval))
	})
}

func intPtr(v int) *int { return &v }
