package repository

import (
	"context"
	"log/slog"
	"time"

	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var claimColumns = []string{
	"id", "resource_id", "reservation_id", "slot_start", "slot_end",
	"occupied_start", "occupied_end", "active", "created_at", "released_at",
}

type ClaimRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewClaimRepository(db DBTX, logger *slog.Logger) *ClaimRepository {
	return &ClaimRepository{db: db, logger: logger}
}

// Create inserts an active claim. The exclusion constraint on occupied
// rejects overlaps the caller's check missed; that surfaces as a conflict.
func (r *ClaimRepository) Create(ctx context.Context, c schedule.Claim) error {
	query, args, err := psql.Insert("interval_claims").
		Columns(claimColumns...).
		Values(
			c.ID, c.ResourceID, c.ReservationID, c.Slot.Start(), c.Slot.End(),
			c.Occupied.Start(), c.Occupied.End(), c.Active, c.CreatedAt, pgconv.TimePtrToPgtype(c.ReleasedAt),
		).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "create claim", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		wrapped := wrapErr(r.logger, "failed to create claim", err, nil)
		if infra.IsKind(wrapped, infra.KindExclusionViolated) {
			return &schedule.ConflictError{}
		}
		return wrapped
	}
	return nil
}

func (r *ClaimRepository) FindByID(ctx context.Context, id uuid.UUID) (schedule.Claim, error) {
	query, args, err := psql.Select(claimColumns...).
		From("interval_claims").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return schedule.Claim{}, buildErr(r.logger, "find claim", err)
	}
	c, err := scanClaim(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return schedule.Claim{}, wrapErr(r.logger, "failed to find claim", err, errs.ErrNotFound)
	}
	return c, nil
}

func (r *ClaimRepository) FindConflict(ctx context.Context, resourceID uuid.UUID, window schedule.Slot) (*schedule.Claim, error) {
	query, args, err := conflictQuery(resourceID, window).ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "find conflict", err)
	}
	c, err := scanClaim(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr(r.logger, "failed to find conflicting claim", err, nil)
	}
	return &c, nil
}

func conflictQuery(resourceID uuid.UUID, window schedule.Slot) squirrel.SelectBuilder {
	return psql.Select(claimColumns...).
		From("interval_claims").
		Where(squirrel.Eq{"resource_id": resourceID, "active": true}).
		Where(squirrel.Expr("occupied && tstzrange(?::timestamptz, ?::timestamptz, '[)')", window.Start(), window.End())).
		OrderBy("occupied_start").
		Limit(1)
}

func (r *ClaimRepository) Deactivate(ctx context.Context, c schedule.Claim) error {
	query, args, err := psql.Update("interval_claims").
		Set("active", false).
		Set("released_at", pgconv.TimePtrToPgtype(c.ReleasedAt)).
		Where(squirrel.Eq{"id": c.ID, "active": true}).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "deactivate claim", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(r.logger, "failed to deactivate claim", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.logger, "active claim not found", schedule.ErrClaimInvalid)
	}
	return nil
}

func scanClaim(row pgx.Row) (schedule.Claim, error) {
	var (
		c                          schedule.Claim
		slotStart, slotEnd         time.Time
		occupiedStart, occupiedEnd time.Time
		releasedAt                 pgtype.Timestamptz
	)
	if err := row.Scan(
		&c.ID, &c.ResourceID, &c.ReservationID, &slotStart, &slotEnd,
		&occupiedStart, &occupiedEnd, &c.Active, &c.CreatedAt, &releasedAt,
	); err != nil {
		return schedule.Claim{}, err
	}
	c.Slot = schedule.ReconstructSlot(slotStart, slotEnd)
	c.Occupied = schedule.ReconstructSlot(occupiedStart, occupiedEnd)
	c.CreatedAt = c.CreatedAt.UTC()
	c.ReleasedAt = pgconv.TimePtrFromPgtype(releasedAt)
	return c, nil
}
