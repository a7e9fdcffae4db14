package memstore

import (
	"bytes"
	"context"
	"slices"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type reservationRepo struct{ tx *memTx }

func reservationParams(r *reservation.Reservation) reservation.ReconstructParams {
	return reservation.ReconstructParams{
		ID:           r.ID(),
		ResourceID:   r.ResourceID(),
		Requester:    r.Requester(),
		Kind:         r.Kind(),
		Quantity:     r.Quantity(),
		Slot:         r.Slot(),
		Occupied:     r.Occupied(),
		Status:       r.Status(),
		StockTokenID: r.StockTokenID(),
		ClaimID:      r.ClaimID(),
		ExternalRef:  r.ExternalRef(),
		ExpiresAt:    r.ExpiresAt(),
		Version:      r.Version(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
}

func (r reservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	if _, ok := s.data.reservations[res.ID()]; ok {
		return s.duplicate("reservation exists")
	}
	s.data.reservations[res.ID()] = reservationParams(res)
	return nil
}

func (r reservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	p, ok := r.tx.store.data.reservations[id]
	if !ok {
		return nil, r.tx.store.notFound("reservation not found", errs.ErrReservationNotFound)
	}
	return reservation.Reconstruct(p), nil
}

func (r reservationRepo) LockByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.FindByID(ctx, id)
}

func (r reservationRepo) Update(_ context.Context, res *reservation.Reservation, expectedVersion int64) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	stored, ok := s.data.reservations[res.ID()]
	if !ok || stored.Version != expectedVersion {
		return s.versionConflict("reservation changed concurrently")
	}
	s.data.reservations[res.ID()] = reservationParams(res)
	return nil
}

func (r reservationRepo) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var due []reservation.ReconstructParams
	for _, p := range r.tx.store.data.reservations {
		if p.Status == reservation.StatusPending && p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
			due = append(due, p)
		}
	}
	slices.SortFunc(due, func(a, b reservation.ReconstructParams) int {
		if c := a.ExpiresAt.Compare(*b.ExpiresAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	ids := make([]uuid.UUID, len(due))
	for i, p := range due {
		ids[i] = p.ID
	}
	return ids, nil
}

func (r reservationRepo) List(_ context.Context, filter shared.ReservationFilter) ([]*reservation.Reservation, error) {
	var matched []reservation.ReconstructParams
	for _, p := range r.tx.store.data.reservations {
		if p.ResourceID != filter.ResourceID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, p.Status) {
			continue
		}
		if filter.AfterCreatedAt != nil && compareKey(p, *filter.AfterCreatedAt, filter.AfterID) <= 0 {
			continue
		}
		matched = append(matched, p)
	}
	slices.SortFunc(matched, func(a, b reservation.ReconstructParams) int {
		return compareKey(a, b.CreatedAt, b.ID)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	out := make([]*reservation.Reservation, len(matched))
	for i, p := range matched {
		out[i] = reservation.Reconstruct(p)
	}
	return out, nil
}

// compareKey orders by (created_at, id) like the keyset index.
func compareKey(p reservation.ReconstructParams, createdAt time.Time, id uuid.UUID) int {
	if c := p.CreatedAt.Compare(createdAt); c != 0 {
		return c
	}
	return bytes.Compare(p.ID[:], id[:])
}

type transitionRepo struct{ tx *memTx }

func (r transitionRepo) Append(_ context.Context, tr reservation.Transition) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.store.data.transitions = append(r.tx.store.data.transitions, tr)
	return nil
}

func (r transitionRepo) ListByReservation(_ context.Context, reservationID uuid.UUID) ([]reservation.Transition, error) {
	var out []reservation.Transition
	for _, tr := range r.tx.store.data.transitions {
		if tr.ReservationID == reservationID {
			out = append(out, tr)
		}
	}
	return out, nil
}
