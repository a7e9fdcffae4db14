//go:build unit

package scheduler_test

import (
	"context"
	"testing"
	"time"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/infra/memstore"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/logger"
	"reservation-engine/internal/usecase/scheduler"
	"reservation-engine/internal/usecase/shared"
	"reservation-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func mustSlot(t *testing.T, start, end time.Time) schedule.Slot {
	t.Helper()
	slot, err := schedule.NewSlot(start, end)
	require.NoError(t, err)
	return slot
}

type fixture struct {
	store     *memstore.Store
	scheduler *scheduler.Scheduler
	resource  *resource.Resource
}

func newFixture(t *testing.T, bufferMinutes int) fixture {
	t.Helper()
	f := fixture{
		store:     memstore.New(logger.Nop()),
		scheduler: scheduler.New(clock.NewMockClock(day)),
	}
	res, err := builder.NewResourceBuilder().WithBuffer(bufferMinutes).BuildInterval()
	require.NoError(t, err)
	err = f.store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Resources().Create(ctx, res)
	})
	require.NoError(t, err)
	f.resource = res
	return f
}

func (f fixture) claim(ctx context.Context, slot schedule.Slot) (schedule.Claim, error) {
	var c schedule.Claim
	err := f.store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var cerr error
		c, cerr = f.scheduler.TryClaim(ctx, tx, f.resource.ID(), uuid.New(), slot, f.resource.Policy().Buffer())
		return cerr
	})
	return c, err
}

func (f fixture) available(t *testing.T, slot schedule.Slot) bool {
	t.Helper()
	var ok bool
	err := f.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var aerr error
		ok, aerr = f.scheduler.IsAvailable(ctx, tx, f.resource.ID(), slot, f.resource.Policy().Buffer())
		return aerr
	})
	require.NoError(t, err)
	return ok
}

// =============================================================================
// TryClaim Tests
// =============================================================================

func TestScheduler_TryClaim_Buffer(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantClash bool
	}{
		{name: "error: starts inside the trailing buffer", start: at(11, 5), end: at(12, 0), wantClash: true},
		{name: "success: starts after the trailing buffer", start: at(11, 15), end: at(12, 0)},
		{name: "success: starts exactly when the buffer ends", start: at(11, 10), end: at(12, 0)},
		{name: "error: overlaps the booked hour", start: at(10, 30), end: at(10, 45), wantClash: true},
		{name: "error: own buffer runs into the next booking", start: at(9, 0), end: at(9, 55), wantClash: true},
		{name: "success: own buffer ends at the next booking", start: at(9, 0), end: at(9, 50)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 10)
			existing, err := f.claim(ctx, mustSlot(t, at(10, 0), at(11, 0)))
			require.NoError(t, err)
			assert.Equal(t, at(11, 10), existing.Occupied.End())

			_, err = f.claim(ctx, mustSlot(t, tc.start, tc.end))
			if !tc.wantClash {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, schedule.ErrConflict))
			var conflict *schedule.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, existing.ReservationID, conflict.ConflictingReservationID)
		})
	}
}

func TestScheduler_TryClaim_EdgeTouching(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)

	_, err := f.claim(ctx, mustSlot(t, at(10, 0), at(11, 0)))
	require.NoError(t, err)
	_, err = f.claim(ctx, mustSlot(t, at(11, 0), at(12, 0)))
	require.NoError(t, err)
	_, err = f.claim(ctx, mustSlot(t, at(9, 0), at(10, 0)))
	require.NoError(t, err)

	_, err = f.claim(ctx, mustSlot(t, at(10, 59), at(11, 1)))
	assert.True(t, errs.Is(err, schedule.ErrConflict))
}

func TestScheduler_TryClaim_CountableRejected(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(logger.Nop())
	s := scheduler.New(clock.NewMockClock(day))
	res, err := builder.NewResourceBuilder().BuildCountable()
	require.NoError(t, err)

	err = store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Resources().Create(ctx, res); err != nil {
			return err
		}
		_, err := s.TryClaim(ctx, tx, res.ID(), uuid.New(), mustSlot(t, at(10, 0), at(11, 0)), 0)
		return err
	})
	assert.True(t, errs.Is(err, scheduler.ErrNotInterval))
}

// =============================================================================
// Release / IsAvailable Tests
// =============================================================================

func TestScheduler_Release(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	slot := mustSlot(t, at(14, 0), at(15, 0))

	c, err := f.claim(ctx, slot)
	require.NoError(t, err)
	assert.False(t, f.available(t, slot))

	err = f.store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return f.scheduler.Release(ctx, tx, c.ID)
	})
	require.NoError(t, err)
	assert.True(t, f.available(t, slot))

	_, err = f.claim(ctx, slot)
	assert.NoError(t, err)

	t.Run("error: releasing twice", func(t *testing.T) {
		err := f.store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return f.scheduler.Release(ctx, tx, c.ID)
		})
		assert.True(t, errs.Is(err, schedule.ErrClaimInvalid))
	})
}

func TestScheduler_IsAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	_, err := f.claim(ctx, mustSlot(t, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	assert.False(t, f.available(t, mustSlot(t, at(11, 5), at(11, 30))))
	assert.True(t, f.available(t, mustSlot(t, at(11, 15), at(11, 30))))
	assert.True(t, f.available(t, mustSlot(t, at(8, 0), at(9, 50))))
}
