package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type OutboxRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewOutboxRepository(db DBTX, logger *slog.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, ev reservation.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}
	query, args, err := psql.Insert("reservation_events").
		Columns("id", "reservation_id", "event_type", "payload", "occurred_at").
		Values(ev.ID, ev.ReservationID, string(ev.Type), payload, ev.OccurredAt).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "enqueue event", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to enqueue event", err, nil)
	}
	return nil
}

// ClaimBatch locks the oldest undelivered rows; a concurrent relay skips them
// instead of waiting.
func (r *OutboxRepository) ClaimBatch(ctx context.Context, limit, maxAttempts int) ([]shared.OutboxEntry, error) {
	query, args, err := claimBatchQuery(limit, maxAttempts).ToSql()
	if err != nil {
		return nil, buildErr(r.logger, "claim outbox batch", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to claim outbox batch", err, nil)
	}
	defer rows.Close()

	var out []shared.OutboxEntry
	for rows.Next() {
		var (
			payload  []byte
			attempts int32
		)
		if err := rows.Scan(&payload, &attempts); err != nil {
			return nil, wrapErr(r.logger, "failed to scan outbox entry", err, nil)
		}
		var ev reservation.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, errs.Wrap(err, "unmarshal event")
		}
		out = append(out, shared.OutboxEntry{Event: ev, Attempts: int(attempts)})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.logger, "failed to iterate outbox", err, nil)
	}
	return out, nil
}

func claimBatchQuery(limit, maxAttempts int) squirrel.SelectBuilder {
	return psql.Select("payload", "attempts").
		From("reservation_events").
		Where(squirrel.Eq{"delivered_at": nil}).
		Where(squirrel.Lt{"attempts": maxAttempts}).
		OrderBy("seq").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED")
}

func (r *OutboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := psql.Update("reservation_events").
		Set("delivered_at", at).
		Set("last_error", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "mark delivered", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to mark event delivered", err, nil)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query, args, err := psql.Update("reservation_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", reason).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return buildErr(r.logger, "mark failed", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return wrapErr(r.logger, "failed to mark event failed", err, nil)
	}
	return nil
}
