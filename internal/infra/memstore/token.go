package memstore

import (
	"context"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type tokenRepo struct{ tx *memTx }

func (r tokenRepo) Create(_ context.Context, token inventory.Token) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	if _, ok := s.data.tokens[token.ID]; ok {
		return s.duplicate("stock token exists")
	}
	s.data.tokens[token.ID] = token
	return nil
}

func (r tokenRepo) LockByID(_ context.Context, id uuid.UUID) (inventory.Token, error) {
	token, ok := r.tx.store.data.tokens[id]
	if !ok {
		return inventory.Token{}, r.tx.store.notFound("stock token not found", errs.ErrNotFound)
	}
	return token, nil
}

func (r tokenRepo) UpdateState(_ context.Context, token inventory.Token) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	s := r.tx.store
	if _, ok := s.data.tokens[token.ID]; !ok {
		return s.notFound("stock token not found", inventory.ErrInvalidToken)
	}
	s.data.tokens[token.ID] = token
	return nil
}
