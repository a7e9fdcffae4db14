package shared

import (
	"context"
	"time"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: read-committed transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for consistent multi-table reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes repositories bound to one transaction. Every counter, claim and
// status mutation of a single engine operation goes through the same Tx.
type Tx interface {
	Resources() ResourceRepository
	StockTokens() StockTokenRepository
	Claims() ClaimRepository
	Reservations() ReservationRepository
	Transitions() TransitionRepository
	Outbox() OutboxRepository
}

type ResourceRepository interface {
	Create(ctx context.Context, res *resource.Resource) error
	FindByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error)
	// LockByID holds the row lock until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error)
	UpdateStock(ctx context.Context, res *resource.Resource) error
}

type StockTokenRepository interface {
	Create(ctx context.Context, token inventory.Token) error
	LockByID(ctx context.Context, id uuid.UUID) (inventory.Token, error)
	UpdateState(ctx context.Context, token inventory.Token) error
}

type ClaimRepository interface {
	Create(ctx context.Context, claim schedule.Claim) error
	FindByID(ctx context.Context, id uuid.UUID) (schedule.Claim, error)
	// FindConflict returns the first active claim whose occupied window
	// overlaps window, or nil.
	FindConflict(ctx context.Context, resourceID uuid.UUID, window schedule.Slot) (*schedule.Claim, error)
	Deactivate(ctx context.Context, claim schedule.Claim) error
}

// ReservationFilter lists by (created_at, id) ascending, starting after the
// keyset position when AfterCreatedAt is set.
type ReservationFilter struct {
	ResourceID     uuid.UUID
	Statuses       []reservation.Status
	AfterCreatedAt *time.Time
	AfterID        uuid.UUID
	Limit          int
}

type ReservationRepository interface {
	Create(ctx context.Context, r *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	LockByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// Update fails with errs.ErrVersionConflict when the stored version is
	// no longer expectedVersion.
	Update(ctx context.Context, r *reservation.Reservation, expectedVersion int64) error
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	List(ctx context.Context, filter ReservationFilter) ([]*reservation.Reservation, error)
}

type TransitionRepository interface {
	Append(ctx context.Context, tr reservation.Transition) error
	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Transition, error)
}

type OutboxEntry struct {
	Event    reservation.Event
	Attempts int
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, ev reservation.Event) error
	// ClaimBatch locks undelivered entries so concurrent relays skip them.
	ClaimBatch(ctx context.Context, limit, maxAttempts int) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
