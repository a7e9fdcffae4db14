package commands

import (
	"context"
	"log/slog"
	"sync/atomic"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/telemetry"
	"reservation-engine/internal/usecase/lifecycle"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type SweepResult struct {
	Scanned int
	Expired int
	// Skipped rows changed status between listing and locking.
	Skipped int
	Failed  int
}

// SweepExpired expires pending holds whose expires_at has passed. Each
// reservation gets its own transaction so one failure does not roll back
// the batch. workers bounds the concurrency.
func (c *ReservationCommands) SweepExpired(ctx context.Context, limit, workers int) (SweepResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "commands.SweepExpired")
	defer span.End()

	if workers <= 0 {
		workers = 1
	}

	var ids []uuid.UUID
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var lerr error
		ids, lerr = tx.Reservations().ListExpiredPending(ctx, c.clock.Now(), limit)
		return lerr
	})
	if err != nil {
		return SweepResult{}, c.translate(ctx, "sweep", err)
	}

	var expired, skipped, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			_, terr := c.machine.Transition(ctx, lifecycle.TransitionCommand{
				ReservationID: id,
				Target:        reservation.StatusExpired,
				Reason:        reservation.ReasonExpired,
				Actor:         reservation.ActorSystemSweeper,
			})
			switch {
			case terr == nil:
				expired.Add(1)
			case errs.Is(terr, reservation.ErrInvalidTransition):
				skipped.Add(1)
			default:
				failed.Add(1)
				c.logger.ErrorContext(ctx, "failed to expire reservation",
					slog.String("reservation_id", id.String()),
					slog.String("error", terr.Error()),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := SweepResult{
		Scanned: len(ids),
		Expired: int(expired.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	c.metrics.AddSweepExpired(result.Expired)
	c.metrics.AddSweepFailures(result.Failed)
	span.SetAttributes(
		attribute.Int("sweep.scanned", result.Scanned),
		attribute.Int("sweep.expired", result.Expired),
	)
	if result.Scanned > 0 {
		c.logger.InfoContext(ctx, "expiry sweep finished",
			slog.Int("scanned", result.Scanned),
			slog.Int("expired", result.Expired),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed),
		)
	}
	return result, ctx.Err()
}
