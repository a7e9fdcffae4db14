package memstore

import (
	"context"

	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type claimRepo struct{ tx *memTx }

// Create rejects an overlapping active claim the way the exclusion constraint
// does: a conflict without the other reservation's id.
func (r claimRepo) Create(_ context.Context, c schedule.Claim) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	if _, ok := s.data.claims[c.ID]; ok {
		return s.duplicate("claim exists")
	}
	if c.Active {
		for _, other := range s.data.claims {
			if other.ResourceID == c.ResourceID && other.Blocks(c.Occupied) {
				return &schedule.ConflictError{}
			}
		}
	}
	s.data.claims[c.ID] = c
	return nil
}

func (r claimRepo) FindByID(_ context.Context, id uuid.UUID) (schedule.Claim, error) {
	c, ok := r.tx.store.data.claims[id]
	if !ok {
		return schedule.Claim{}, r.tx.store.notFound("claim not found", errs.ErrNotFound)
	}
	return c, nil
}

func (r claimRepo) FindConflict(_ context.Context, resourceID uuid.UUID, window schedule.Slot) (*schedule.Claim, error) {
	var first *schedule.Claim
	for _, c := range r.tx.store.data.claims {
		if c.ResourceID != resourceID || !c.Blocks(window) {
			continue
		}
		if first == nil || c.Occupied.Start().Before(first.Occupied.Start()) {
			first = &c
		}
	}
	return first, nil
}

func (r claimRepo) Deactivate(_ context.Context, c schedule.Claim) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	stored, ok := s.data.claims[c.ID]
	if !ok || !stored.Active {
		return s.notFound("active claim not found", schedule.ErrClaimInvalid)
	}
	stored.Active = false
	stored.ReleasedAt = c.ReleasedAt
	s.data.claims[c.ID] = stored
	return nil
}
