//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationCommands_SweepExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("success: lapsed holds expire and give back capacity and slots", func(t *testing.T) {
		e := newEngine(t)
		stock := e.countable(t, intPtr(3))
		court := e.interval(t, 10)

		var lapsed []*reservation.Reservation
		for range 2 {
			r, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(stock.ID()).
				WithHold(time.Minute).BuildCountableRequest())
			require.NoError(t, err)
			lapsed = append(lapsed, r)
		}
		booking, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(court.ID()).
			WithSlot(slotAt(9, 0), slotAt(10, 0)).WithHold(time.Minute).BuildIntervalRequest())
		require.NoError(t, err)
		lapsed = append(lapsed, booking)

		confirmed, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(stock.ID()).
			WithHold(time.Minute).BuildCountableRequest())
		require.NoError(t, err)
		_, err = e.cmds.Confirm(ctx, confirmed.ID(), reservation.ActorSystemEngine)
		require.NoError(t, err)

		e.clock.Add(time.Hour)

		result, err := e.cmds.SweepExpired(ctx, 100, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Scanned)
		assert.Equal(t, 3, result.Expired)
		assert.Equal(t, 0, result.Failed)

		for _, r := range lapsed {
			got := e.reservation(t, r.ID())
			assert.Equal(t, reservation.StatusExpired, got.Status())
			history := e.history(t, r.ID())
			last := history[len(history)-1]
			assert.Equal(t, reservation.ReasonExpired, last.Reason)
			assert.Equal(t, reservation.ActorSystemSweeper, last.Actor)
		}
		assert.Equal(t, reservation.StatusConfirmed, e.reservation(t, confirmed.ID()).Status())

		st := e.stock(t, stock.ID())
		assert.Equal(t, 0, st.Reserved)
		assert.Equal(t, 1, st.Sold)
		assert.Equal(t, 2, st.Available().Count())

		_, err = e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(court.ID()).
			WithSlot(slotAt(9, 0), slotAt(10, 0)).BuildIntervalRequest())
		assert.NoError(t, err)
	})

	t.Run("success: holds still inside their window are left alone", func(t *testing.T) {
		e := newEngine(t)
		res := e.countable(t, intPtr(2))
		r, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).
			WithHold(30*time.Minute).BuildCountableRequest())
		require.NoError(t, err)

		e.clock.Add(29 * time.Minute)
		result, err := e.cmds.SweepExpired(ctx, 100, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Scanned)
		assert.Equal(t, reservation.StatusPending, e.reservation(t, r.ID()).Status())
	})

	t.Run("success: batch limit bounds one pass", func(t *testing.T) {
		e := newEngine(t)
		res := e.countable(t, nil)
		for range 5 {
			_, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).
				WithHold(time.Minute).BuildCountableRequest())
			require.NoError(t, err)
		}
		e.clock.Add(time.Hour)

		first, err := e.cmds.SweepExpired(ctx, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, first.Expired)

		second, err := e.cmds.SweepExpired(ctx, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, second.Expired)
	})

	t.Run("success: holds without expiry are never swept", func(t *testing.T) {
		e := newEngine(t)
		res := e.countable(t, intPtr(1))
		_, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).
			WithHold(0).BuildCountableRequest())
		require.NoError(t, err)

		e.clock.Add(24 * time.Hour)
		result, err := e.cmds.SweepExpired(ctx, 100, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Scanned)
	})
}
