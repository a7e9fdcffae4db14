package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConflict     = errors.New("slot conflicts with an existing booking")
	ErrClaimInvalid = errors.New("claim is not active")
)

// ConflictError matches ErrConflict via errors.Is. ConflictingReservationID
// is uuid.Nil when the store could only report the constraint violation.
type ConflictError struct {
	ConflictingReservationID uuid.UUID
}

func (e *ConflictError) Error() string {
	if e.ConflictingReservationID == uuid.Nil {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("slot conflicts with reservation %s", e.ConflictingReservationID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Claim is the stored occupation of a resource by one reservation.
// Occupied already includes the buffer that was in force at claim time.
type Claim struct {
	ID            uuid.UUID
	ResourceID    uuid.UUID
	ReservationID uuid.UUID
	Slot          Slot
	Occupied      Slot
	Active        bool
	CreatedAt     time.Time
	ReleasedAt    *time.Time
}

func NewClaim(resourceID, reservationID uuid.UUID, slot Slot, buffer time.Duration, now time.Time) Claim {
	return Claim{
		ID:            uuid.New(),
		ResourceID:    resourceID,
		ReservationID: reservationID,
		Slot:          slot,
		Occupied:      slot.Occupied(buffer),
		Active:        true,
		CreatedAt:     now,
	}
}

// ReconstructSlot skips validation for rows read back from storage.
func ReconstructSlot(start, end time.Time) Slot {
	return Slot{start: start.UTC(), end: end.UTC()}
}

func (c *Claim) Release(now time.Time) error {
	if !c.Active {
		return ErrClaimInvalid
	}
	c.Active = false
	c.ReleasedAt = &now
	return nil
}

// Blocks reports whether this claim prevents occupying window.
func (c Claim) Blocks(window Slot) bool {
	return c.Active && c.Occupied.Overlaps(window)
}
