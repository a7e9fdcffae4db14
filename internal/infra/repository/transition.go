package repository

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TransitionRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewTransitionRepository(db DBTX, logger *slog.Logger) *TransitionRepository {
	return &TransitionRepository{db: db, logger: logger}
}

func (r *TransitionRepository) Append(ctx context.Context, tr reservation.Transition) error {
	query, args, err := psql.Insert("reservation_transitions").
		Columns("id", "reservation_id", "from_status", "to_status", "reason", "actor", "occurred_at").
		Values(
			tr.ID, tr.ReservationID, pgconv.StringOrNull(string(tr.From)), string(tr.To),
			tr.Reason, tr.Actor.String(), tr.OccurredAt,
		).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "append transition", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to append transition", err, nil)
	}
	return nil
}

// ListByReservation returns the history in the order it was recorded.
func (r *TransitionRepository) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Transition, error) {
	query, args, err := psql.Select("id", "reservation_id", "from_status", "to_status", "reason", "actor", "occurred_at").
		From("reservation_transitions").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "list transitions", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list transitions", err, nil)
	}
	defer rows.Close()

	var out []reservation.Transition
	for rows.Next() {
		var (
			tr    reservation.Transition
			from  pgtype.Text
			to    string
			actor string
		)
		if err := rows.Scan(&tr.ID, &tr.ReservationID, &from, &to, &tr.Reason, &actor, &tr.OccurredAt); err != nil {
			return nil, wrapErr(r.logger, "failed to scan transition", err, nil)
		}
		if from.Valid {
			tr.From = reservation.Status(from.String)
		}
		tr.To = reservation.Status(to)
		tr.Actor = reservation.ParseActor(actor)
		tr.OccurredAt = tr.OccurredAt.UTC()
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.logger, "failed to iterate transitions", err, nil)
	}
	return out, nil
}
