//go:build unit || e2e

package builder

import (
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	ResourceID    uuid.UUID
	RequesterType reservation.RequesterType
	RequesterID   uuid.UUID
	Quantity      int
	Start         time.Time
	End           time.Time
	Buffer        time.Duration
	ExpiresAt     *time.Time
	HoldDuration  *time.Duration
	Now           time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Now().UTC().Truncate(time.Minute)
	start := now.Add(24 * time.Hour)
	return &ReservationBuilder{
		ResourceID:    uuid.New(),
		RequesterType: reservation.RequesterUser,
		RequesterID:   uuid.New(),
		Quantity:      1,
		Start:         start,
		End:           start.Add(time.Hour),
		Now:           now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) ForResource(id uuid.UUID) *ReservationBuilder {
	b.ResourceID = id
	return b
}

func (b *ReservationBuilder) WithQuantity(q int) *ReservationBuilder {
	b.Quantity = q
	return b
}

func (b *ReservationBuilder) WithSlot(start, end time.Time) *ReservationBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *ReservationBuilder) WithHold(d time.Duration) *ReservationBuilder {
	b.HoldDuration = &d
	return b
}

func (b *ReservationBuilder) Requester() reservation.RequesterRef {
	return reservation.RequesterRef{Type: b.RequesterType, ID: b.RequesterID}
}

func (b *ReservationBuilder) BuildCountable() (*reservation.Reservation, error) {
	return reservation.NewCountable(reservation.CountableParams{
		ResourceID: b.ResourceID,
		Requester:  b.Requester(),
		Quantity:   b.Quantity,
		TokenID:    uuid.New(),
		ExpiresAt:  b.ExpiresAt,
		Now:        b.Now,
	})
}

func (b *ReservationBuilder) BuildInterval() (*reservation.Reservation, error) {
	slot, err := schedule.NewSlot(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	return reservation.NewInterval(reservation.IntervalParams{
		ID:         id,
		ResourceID: b.ResourceID,
		Requester:  b.Requester(),
		Claim:      schedule.NewClaim(b.ResourceID, id, slot, b.Buffer, b.Now),
		ExpiresAt:  b.ExpiresAt,
		Now:        b.Now,
	})
}

func (b *ReservationBuilder) BuildCountableRequest() commands.ReserveRequest {
	qty := b.Quantity
	return commands.ReserveRequest{
		ResourceID:   b.ResourceID,
		Requester:    b.Requester(),
		Quantity:     &qty,
		HoldDuration: b.HoldDuration,
	}
}

func (b *ReservationBuilder) BuildIntervalRequest() commands.ReserveRequest {
	start, end := b.Start, b.End
	return commands.ReserveRequest{
		ResourceID:   b.ResourceID,
		Requester:    b.Requester(),
		Start:        &start,
		End:          &end,
		HoldDuration: b.HoldDuration,
	}
}
