package queries

import (
	"context"
	"time"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/ledger"
	"reservation-engine/internal/usecase/scheduler"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var ErrInvalidCursor = errs.New("invalid cursor")

// Read models (DTO for read side)
type ReservationView struct {
	ID            uuid.UUID          `json:"id"`
	ResourceID    uuid.UUID          `json:"resource_id"`
	RequesterType string             `json:"requester_type"`
	RequesterID   uuid.UUID          `json:"requester_id"`
	Kind          resource.Kind      `json:"kind"`
	Quantity      *int               `json:"quantity,omitempty"`
	Start         *time.Time         `json:"start,omitempty"`
	End           *time.Time         `json:"end,omitempty"`
	OccupiedUntil *time.Time         `json:"occupied_until,omitempty"`
	Status        reservation.Status `json:"status"`
	ExternalRef   *string            `json:"external_ref,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type TransitionView struct {
	From       reservation.Status `json:"from,omitempty"`
	To         reservation.Status `json:"to"`
	Reason     string             `json:"reason"`
	Actor      string             `json:"actor"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type ListOptions struct {
	Statuses []reservation.Status
	After    *Cursor
	Limit    int
}

type ReservationQueries struct {
	uow       shared.UnitOfWork
	ledger    *ledger.Ledger
	scheduler *scheduler.Scheduler
}

func NewReservationQueries(uow shared.UnitOfWork, l *ledger.Ledger, s *scheduler.Scheduler) *ReservationQueries {
	return &ReservationQueries{uow: uow, ledger: l, scheduler: s}
}

func (q *ReservationQueries) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	var view *ReservationView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		view, err = toView(r)
		return err
	})
	return view, err
}

func (q *ReservationQueries) ListTransitions(ctx context.Context, reservationID uuid.UUID) ([]TransitionView, error) {
	var views []TransitionView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Reservations().FindByID(ctx, reservationID); err != nil {
			return err
		}
		records, err := tx.Transitions().ListByReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		views = make([]TransitionView, 0, len(records))
		for _, tr := range records {
			views = append(views, TransitionView{
				From:       tr.From,
				To:         tr.To,
				Reason:     tr.Reason,
				Actor:      tr.Actor.String(),
				OccurredAt: tr.OccurredAt,
			})
		}
		return nil
	})
	return views, err
}

// ListByResource pages through a resource's reservations oldest first.
func (q *ReservationQueries) ListByResource(ctx context.Context, resourceID uuid.UUID, opts ListOptions) ([]*ReservationView, *Cursor, error) {
	limit := ValidateLimit(opts.Limit)
	filter := shared.ReservationFilter{
		ResourceID: resourceID,
		Statuses:   opts.Statuses,
		Limit:      limit + 1,
	}
	if opts.After != nil && opts.After.After != "" {
		at, id, err := DecodeAfterCursor(opts.After.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		filter.AfterCreatedAt = &at
		filter.AfterID = id
	}

	var views []*ReservationView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		rows, err := tx.Reservations().List(ctx, filter)
		if err != nil {
			return err
		}
		views = make([]*ReservationView, 0, len(rows))
		for _, r := range rows {
			v, err := toView(r)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(views) > limit {
		views = views[:limit]
		last := views[len(views)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return views, next, nil
}

func (q *ReservationQueries) AvailableCount(ctx context.Context, resourceID uuid.UUID) (inventory.Availability, error) {
	var avail inventory.Availability
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		avail, err = q.ledger.AvailableCount(ctx, tx, resourceID)
		return err
	})
	return avail, err
}

// IsSlotAvailable applies the resource's current buffer to the requested slot.
func (q *ReservationQueries) IsSlotAvailable(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (bool, error) {
	slot, err := schedule.NewSlot(start, end)
	if err != nil {
		return false, err
	}
	var ok bool
	err = q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Resources().FindByID(ctx, resourceID)
		if err != nil {
			return err
		}
		if !res.IsInterval() {
			return scheduler.ErrNotInterval
		}
		ok, err = q.scheduler.IsAvailable(ctx, tx, resourceID, slot, res.Policy().Buffer())
		return err
	})
	return ok, err
}

func toView(r *reservation.Reservation) (*ReservationView, error) {
	view := &ReservationView{}
	if err := copier.Copy(view, r); err != nil {
		return nil, errs.Wrap(err, "map reservation view")
	}
	view.RequesterType = string(r.Requester().Type)
	view.RequesterID = r.Requester().ID
	if r.IsInterval() {
		start, end, until := r.Slot().Start(), r.Slot().End(), r.Occupied().End()
		view.Start, view.End, view.OccupiedUntil = &start, &end, &until
	}
	return view, nil
}
