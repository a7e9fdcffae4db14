package reservation

import (
	"time"

	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"

	"github.com/google/uuid"
)

// Reservation is created pending and afterwards changes only through
// TransitionTo. It is never deleted.
type Reservation struct {
	id           uuid.UUID
	resourceID   uuid.UUID
	requester    RequesterRef
	kind         resource.Kind
	quantity     *int
	slot         schedule.Slot
	occupied     schedule.Slot
	status       Status
	stockTokenID *uuid.UUID
	claimID      *uuid.UUID
	externalRef  *string
	expiresAt    *time.Time
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

type CountableParams struct {
	ID         uuid.UUID
	ResourceID uuid.UUID
	Requester  RequesterRef
	Quantity   int
	TokenID    uuid.UUID
	ExpiresAt  *time.Time
	Now        time.Time
}

func NewCountable(p CountableParams) (*Reservation, error) {
	if err := p.Requester.Validate(); err != nil {
		return nil, err
	}
	if p.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	qty := p.Quantity
	token := p.TokenID
	return &Reservation{
		id:           id,
		resourceID:   p.ResourceID,
		requester:    p.Requester,
		kind:         resource.KindCountable,
		quantity:     &qty,
		status:       StatusPending,
		stockTokenID: &token,
		expiresAt:    p.ExpiresAt,
		version:      1,
		createdAt:    p.Now,
		updatedAt:    p.Now,
	}, nil
}

type IntervalParams struct {
	ID         uuid.UUID
	ResourceID uuid.UUID
	Requester  RequesterRef
	Claim      schedule.Claim
	ExpiresAt  *time.Time
	Now        time.Time
}

func NewInterval(p IntervalParams) (*Reservation, error) {
	if err := p.Requester.Validate(); err != nil {
		return nil, err
	}
	if p.Claim.Slot.IsZero() {
		return nil, schedule.ErrInvalidSlot
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	claimID := p.Claim.ID
	return &Reservation{
		id:         id,
		resourceID: p.ResourceID,
		requester:  p.Requester,
		kind:       resource.KindInterval,
		slot:       p.Claim.Slot,
		occupied:   p.Claim.Occupied,
		status:     StatusPending,
		claimID:    &claimID,
		expiresAt:  p.ExpiresAt,
		version:    1,
		createdAt:  p.Now,
		updatedAt:  p.Now,
	}, nil
}

type ReconstructParams struct {
	ID           uuid.UUID
	ResourceID   uuid.UUID
	Requester    RequesterRef
	Kind         resource.Kind
	Quantity     *int
	Slot         schedule.Slot
	Occupied     schedule.Slot
	Status       Status
	StockTokenID *uuid.UUID
	ClaimID      *uuid.UUID
	ExternalRef  *string
	ExpiresAt    *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func Reconstruct(p ReconstructParams) *Reservation {
	return &Reservation{
		id:           p.ID,
		resourceID:   p.ResourceID,
		requester:    p.Requester,
		kind:         p.Kind,
		quantity:     p.Quantity,
		slot:         p.Slot,
		occupied:     p.Occupied,
		status:       p.Status,
		stockTokenID: p.StockTokenID,
		claimID:      p.ClaimID,
		externalRef:  p.ExternalRef,
		expiresAt:    p.ExpiresAt,
		version:      p.Version,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}
}

// IsExpiredAt is true for a pending hold whose expires_at has passed,
// whether or not the sweep has run yet.
func (r *Reservation) IsExpiredAt(now time.Time) bool {
	return r.status == StatusPending && r.expiresAt != nil && !now.Before(*r.expiresAt)
}

// TransitionTo applies the status change and returns its audit record.
// The status is left untouched when the transition is not allowed.
func (r *Reservation) TransitionTo(target Status, reason string, actor Actor, now time.Time) (Transition, error) {
	if !CanTransition(r.status, target) {
		return Transition{}, &InvalidTransitionError{From: r.status, To: target}
	}
	tr := Transition{
		ID:            uuid.New(),
		ReservationID: r.id,
		From:          r.status,
		To:            target,
		Reason:        reason,
		Actor:         actor,
		OccurredAt:    now,
	}
	r.status = target
	r.version++
	r.updatedAt = now
	return tr, nil
}

func (r *Reservation) CreationRecord(actor Actor) Transition {
	return Transition{
		ID:            uuid.New(),
		ReservationID: r.id,
		To:            StatusPending,
		Reason:        ReasonCreated,
		Actor:         actor,
		OccurredAt:    r.createdAt,
	}
}

// AttachExternalRef records the payment reference ahead of a confirm.
func (r *Reservation) AttachExternalRef(ref string) error {
	if ref == "" {
		return ErrEmptyExternalRef
	}
	r.externalRef = &ref
	return nil
}

func (r *Reservation) IsCountable() bool { return r.kind == resource.KindCountable }
func (r *Reservation) IsInterval() bool  { return r.kind == resource.KindInterval }

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) ResourceID() uuid.UUID    { return r.resourceID }
func (r *Reservation) Requester() RequesterRef  { return r.requester }
func (r *Reservation) Kind() resource.Kind      { return r.kind }
func (r *Reservation) Quantity() *int           { return r.quantity }
func (r *Reservation) Slot() schedule.Slot      { return r.slot }
func (r *Reservation) Occupied() schedule.Slot  { return r.occupied }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) StockTokenID() *uuid.UUID { return r.stockTokenID }
func (r *Reservation) ClaimID() *uuid.UUID      { return r.claimID }
func (r *Reservation) ExternalRef() *string     { return r.externalRef }
func (r *Reservation) ExpiresAt() *time.Time    { return r.expiresAt }
func (r *Reservation) Version() int64           { return r.version }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }
