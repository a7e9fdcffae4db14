package repository

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var resourceColumns = []string{
	"id", "name", "kind", "total_capacity", "sold_count", "reserved_count",
	"buffer_minutes", "min_booking_minutes", "max_booking_minutes",
	"version", "created_at", "updated_at",
}

type ResourceRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewResourceRepository(db DBTX, logger *slog.Logger) *ResourceRepository {
	return &ResourceRepository{db: db, logger: logger}
}

func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	stock, policy := res.Stock(), res.Policy()
	query, args, err := psql.Insert("resources").
		Columns(resourceColumns...).
		Values(
			res.ID(), res.Name(), string(res.Kind()),
			pgconv.IntPtrToPgtype(stock.TotalCapacity), stock.Sold, stock.Reserved,
			policy.BufferMinutes, policy.MinBookingMinutes, pgconv.IntPtrToPgtype(policy.MaxBookingMinutes),
			res.Version(), res.CreatedAt(), res.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "create resource", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to create resource", err, nil)
	}
	return nil
}

func (r *ResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	return r.find(ctx, id, "")
}

func (r *ResourceRepository) LockByID(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	return r.find(ctx, id, "FOR UPDATE")
}

func (r *ResourceRepository) find(ctx context.Context, id uuid.UUID, suffix string) (*resource.Resource, error) {
	q := psql.Select(resourceColumns...).From("resources").Where(squirrel.Eq{"id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "find resource", err)
	}
	res, err := scanResource(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, wrapErr(r.logger, "failed to find resource", err, errs.ErrResourceNotFound)
	}
	return res, nil
}

// UpdateStock writes the counters. The caller holds the row lock; the version
// check still guards against a caller that does not.
func (r *ResourceRepository) UpdateStock(ctx context.Context, res *resource.Resource) error {
	stock := res.Stock()
	query, args, err := psql.Update("resources").
		Set("sold_count", stock.Sold).
		Set("reserved_count", stock.Reserved).
		Set("version", res.Version()).
		Set("updated_at", res.UpdatedAt()).
		Where(squirrel.Eq{"id": res.ID(), "version": res.Version() - 1}).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "update stock", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(r.logger, "failed to update stock", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(r.logger, "resource changed concurrently")
	}
	return nil
}

func scanResource(row pgx.Row) (*resource.Resource, error) {
	var (
		p        resource.ReconstructParams
		kind     string
		capacity pgtype.Int4
		maxMin   pgtype.Int4
		sold     int32
		reserved int32
		buffer   int32
		minMin   int32
	)
	if err := row.Scan(
		&p.ID, &p.Name, &kind, &capacity, &sold, &reserved,
		&buffer, &minMin, &maxMin,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Kind = resource.Kind(kind)
	p.Stock = inventory.Stock{
		TotalCapacity: pgconv.IntPtrFromPgtype(capacity),
		Sold:          int(sold),
		Reserved:      int(reserved),
	}
	p.Policy = resource.IntervalPolicy{
		BufferMinutes:     int(buffer),
		MinBookingMinutes: int(minMin),
		MaxBookingMinutes: pgconv.IntPtrFromPgtype(maxMin),
	}
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return resource.Reconstruct(p), nil
}
