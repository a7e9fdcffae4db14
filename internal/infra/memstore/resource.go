package memstore

import (
	"context"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type resourceRepo struct{ tx *memTx }

func resourceParams(r *resource.Resource) resource.ReconstructParams {
	return resource.ReconstructParams{
		ID:        r.ID(),
		Name:      r.Name(),
		Kind:      r.Kind(),
		Stock:     r.Stock(),
		Policy:    r.Policy(),
		Version:   r.Version(),
		CreatedAt: r.CreatedAt(),
		UpdatedAt: r.UpdatedAt(),
	}
}

func (r resourceRepo) Create(_ context.Context, res *resource.Resource) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	if _, ok := s.data.resources[res.ID()]; ok {
		return s.duplicate("resource exists")
	}
	s.data.resources[res.ID()] = resourceParams(res)
	return nil
}

func (r resourceRepo) FindByID(_ context.Context, id uuid.UUID) (*resource.Resource, error) {
	p, ok := r.tx.store.data.resources[id]
	if !ok {
		return nil, r.tx.store.notFound("resource not found", errs.ErrResourceNotFound)
	}
	return resource.Reconstruct(p), nil
}

// LockByID is FindByID: transactions already run one at a time.
func (r resourceRepo) LockByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	return r.FindByID(ctx, id)
}

func (r resourceRepo) UpdateStock(_ context.Context, res *resource.Resource) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	stored, ok := s.data.resources[res.ID()]
	if !ok || stored.Version != res.Version()-1 {
		return s.versionConflict("resource changed concurrently")
	}
	if err := checkStock(res.Stock()); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindCheckViolated, "stock counters out of range", err)
	}
	s.data.resources[res.ID()] = resourceParams(res)
	return nil
}

// checkStock mirrors the table constraints on the counters.
func checkStock(st inventory.Stock) error {
	if st.Sold < 0 || st.Reserved < 0 {
		return inventory.ErrCounterUnderflow
	}
	if st.TotalCapacity != nil && st.Sold+st.Reserved > *st.TotalCapacity {
		return inventory.ErrInsufficientStock
	}
	return nil
}
