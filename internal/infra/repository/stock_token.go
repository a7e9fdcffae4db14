package repository

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/pkg/errs"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type StockTokenRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewStockTokenRepository(db DBTX, logger *slog.Logger) *StockTokenRepository {
	return &StockTokenRepository{db: db, logger: logger}
}

func (r *StockTokenRepository) Create(ctx context.Context, token inventory.Token) error {
	query, args, err := psql.Insert("stock_tokens").
		Columns("id", "resource_id", "quantity", "state", "created_at", "updated_at").
		Values(token.ID, token.ResourceID, token.Quantity, string(token.State), token.CreatedAt, token.UpdatedAt).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "create stock token", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to create stock token", err, nil)
	}
	return nil
}

func (r *StockTokenRepository) LockByID(ctx context.Context, id uuid.UUID) (inventory.Token, error) {
	query, args, err := psql.Select("id", "resource_id", "quantity", "state", "created_at", "updated_at").
		From("stock_tokens").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return inventory.Token{}, buildErr(r.logger, "lock stock token", err)
	}

	var (
		t     inventory.Token
		qty   int32
		state string
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.ResourceID, &qty, &state, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return inventory.Token{}, wrapErr(r.logger, "failed to lock stock token", err, errs.ErrNotFound)
	}
	t.Quantity = int(qty)
	t.State = inventory.TokenState(state)
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return t, nil
}

func (r *StockTokenRepository) UpdateState(ctx context.Context, token inventory.Token) error {
	query, args, err := psql.Update("stock_tokens").
		Set("state", string(token.State)).
		Set("updated_at", token.UpdatedAt).
		Where(squirrel.Eq{"id": token.ID}).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "update stock token", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(r.logger, "failed to update stock token", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.logger, "stock token not found", inventory.ErrInvalidToken)
	}
	return nil
}
