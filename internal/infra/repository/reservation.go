package repository

import (
	"context"
	"log/slog"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/pgconv"
	"reservation-engine/internal/usecase/shared"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var reservationColumns = []string{
	"id", "resource_id", "requester_type", "requester_id", "kind", "quantity",
	"start_time", "end_time", "occupied_end", "status", "stock_token_id", "claim_id",
	"external_ref", "expires_at", "version", "created_at", "updated_at",
}

type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{db: db, logger: logger}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	var start, end, occupiedEnd *time.Time
	if res.IsInterval() {
		s, e, o := res.Slot().Start(), res.Slot().End(), res.Occupied().End()
		start, end, occupiedEnd = &s, &e, &o
	}
	query, args, err := psql.Insert("reservations").
		Columns(reservationColumns...).
		Values(
			res.ID(), res.ResourceID(), string(res.Requester().Type), res.Requester().ID, string(res.Kind()),
			pgconv.IntPtrToPgtype(res.Quantity()),
			pgconv.TimePtrToPgtype(start), pgconv.TimePtrToPgtype(end), pgconv.TimePtrToPgtype(occupiedEnd),
			string(res.Status()), pgconv.UUIDPtrToPgtype(res.StockTokenID()), pgconv.UUIDPtrToPgtype(res.ClaimID()),
			pgconv.StringPtrToPgtype(res.ExternalRef()), pgconv.TimePtrToPgtype(res.ExpiresAt()),
			res.Version(), res.CreatedAt(), res.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "create reservation", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to create reservation", err, nil)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.find(ctx, id, "")
}

func (r *ReservationRepository) LockByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return r.find(ctx, id, "FOR UPDATE")
}

func (r *ReservationRepository) find(ctx context.Context, id uuid.UUID, suffix string) (*reservation.Reservation, error) {
	q := psql.Select(reservationColumns...).From("reservations").Where(squirrel.Eq{"id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "find reservation", err)
	}
	res, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, wrapErr(r.logger, "failed to find reservation", err, errs.ErrReservationNotFound)
	}
	return res, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation, expectedVersion int64) error {
	query, args, err := psql.Update("reservations").
		Set("status", string(res.Status())).
		Set("external_ref", pgconv.StringPtrToPgtype(res.ExternalRef())).
		Set("version", res.Version()).
		Set("updated_at", res.UpdatedAt()).
		Where(squirrel.Eq{"id": res.ID(), "version": expectedVersion}).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "update reservation", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr(r.logger, "failed to update reservation", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(r.logger, "reservation changed concurrently")
	}
	return nil
}

func (r *ReservationRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query, args, err := expiredPendingQuery(now, limit).ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "list expired", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list expired reservations", err, nil)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, wrapErr(r.logger, "failed to scan expired reservations", err, nil)
	}
	return ids, nil
}

func expiredPendingQuery(now time.Time, limit int) squirrel.SelectBuilder {
	q := psql.Select("id").
		From("reservations").
		Where(squirrel.Eq{"status": string(reservation.StatusPending)}).
		Where(squirrel.NotEq{"expires_at": nil}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		OrderBy("expires_at", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

func (r *ReservationRepository) List(ctx context.Context, filter shared.ReservationFilter) ([]*reservation.Reservation, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "list reservations", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list reservations", err, nil)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, wrapErr(r.logger, "failed to scan reservation", err, nil)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.logger, "failed to iterate reservations", err, nil)
	}
	return out, nil
}

func listQuery(filter shared.ReservationFilter) squirrel.SelectBuilder {
	q := psql.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"resource_id": filter.ResourceID}).
		OrderBy("created_at", "id")
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where(squirrel.Eq{"status": statuses})
	}
	if filter.AfterCreatedAt != nil {
		q = q.Where(squirrel.Expr("(created_at, id) > (?, ?)", *filter.AfterCreatedAt, filter.AfterID))
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		p                       reservation.ReconstructParams
		requesterType, kind     string
		status                  string
		quantity                pgtype.Int4
		start, end, occupiedEnd pgtype.Timestamptz
		stockTokenID, claimID   pgtype.UUID
		externalRef             pgtype.Text
		expiresAt               pgtype.Timestamptz
	)
	if err := row.Scan(
		&p.ID, &p.ResourceID, &requesterType, &p.Requester.ID, &kind, &quantity,
		&start, &end, &occupiedEnd, &status, &stockTokenID, &claimID,
		&externalRef, &expiresAt, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Requester.Type = reservation.RequesterType(requesterType)
	p.Kind = resource.Kind(kind)
	p.Status = reservation.Status(status)
	p.Quantity = pgconv.IntPtrFromPgtype(quantity)
	if start.Valid && end.Valid {
		p.Slot = schedule.ReconstructSlot(start.Time, end.Time)
		occupied := end.Time
		if occupiedEnd.Valid {
			occupied = occupiedEnd.Time
		}
		p.Occupied = schedule.ReconstructSlot(start.Time, occupied)
	}
	p.StockTokenID = pgconv.UUIDPtrFromPgtype(stockTokenID)
	p.ClaimID = pgconv.UUIDPtrFromPgtype(claimID)
	p.ExternalRef = pgconv.StringPtrFromPgtype(externalRef)
	p.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return reservation.Reconstruct(p), nil
}
