package scheduler

import (
	"context"
	"time"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrNotInterval = errs.New("resource is not interval-booked")

// Scheduler owns the claim set of interval resources. Every method runs
// inside the caller's transaction.
type Scheduler struct {
	clock clock.Clock
}

func New(clk clock.Clock) *Scheduler {
	return &Scheduler{clock: clk}
}

// IsAvailable reports whether slot, extended by buffer, overlaps no active
// claim. Existing claims carry their own buffer in the stored window.
func (s *Scheduler) IsAvailable(ctx context.Context, tx shared.Tx, resourceID uuid.UUID, slot schedule.Slot, buffer time.Duration) (bool, error) {
	conflict, err := tx.Claims().FindConflict(ctx, resourceID, slot.Occupied(buffer))
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

// TryClaim locks the resource row, re-checks availability and inserts the
// claim. The requested slot is never adjusted.
func (s *Scheduler) TryClaim(
	ctx context.Context,
	tx shared.Tx,
	resourceID, reservationID uuid.UUID,
	slot schedule.Slot,
	buffer time.Duration,
) (schedule.Claim, error) {
	res, err := tx.Resources().LockByID(ctx, resourceID)
	if err != nil {
		return schedule.Claim{}, err
	}
	if res.Kind() != resource.KindInterval {
		return schedule.Claim{}, ErrNotInterval
	}

	window := slot.Occupied(buffer)
	conflict, err := tx.Claims().FindConflict(ctx, resourceID, window)
	if err != nil {
		return schedule.Claim{}, err
	}
	if conflict != nil {
		return schedule.Claim{}, &schedule.ConflictError{ConflictingReservationID: conflict.ReservationID}
	}

	claim := schedule.NewClaim(resourceID, reservationID, slot, buffer, s.clock.Now())
	if err := tx.Claims().Create(ctx, claim); err != nil {
		return schedule.Claim{}, err
	}
	return claim, nil
}

// Release deactivates the claim so its window no longer blocks.
func (s *Scheduler) Release(ctx context.Context, tx shared.Tx, claimID uuid.UUID) error {
	claim, err := tx.Claims().FindByID(ctx, claimID)
	if err != nil {
		return err
	}
	if err := claim.Release(s.clock.Now()); err != nil {
		return errs.Wrapf(err, "release claim %s", claimID)
	}
	return tx.Claims().Deactivate(ctx, claim)
}
