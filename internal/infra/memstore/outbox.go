package memstore

import (
	"context"
	"time"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type outboxRepo struct{ tx *memTx }

func (r outboxRepo) Enqueue(_ context.Context, ev reservation.Event) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.store.data.outbox = append(r.tx.store.data.outbox, outboxRow{event: ev})
	return nil
}

func (r outboxRepo) ClaimBatch(_ context.Context, limit, maxAttempts int) ([]shared.OutboxEntry, error) {
	var out []shared.OutboxEntry
	for _, row := range r.tx.store.data.outbox {
		if len(out) == limit {
			break
		}
		if row.deliveredAt != nil || row.attempts >= maxAttempts {
			continue
		}
		out = append(out, shared.OutboxEntry{Event: row.event, Attempts: row.attempts})
	}
	return out, nil
}

func (r outboxRepo) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.update(id, func(row *outboxRow) {
		row.deliveredAt = &at
		row.lastError = ""
	})
	return nil
}

func (r outboxRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.update(id, func(row *outboxRow) {
		row.attempts++
		row.lastError = reason
	})
	return nil
}

func (r outboxRepo) update(id uuid.UUID, fn func(*outboxRow)) {
	rows := r.tx.store.data.outbox
	for i := range rows {
		if rows[i].event.ID == id {
			fn(&rows[i])
			return
		}
	}
}
