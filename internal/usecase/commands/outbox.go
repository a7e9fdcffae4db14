package commands

import (
	"context"
	"log/slog"

	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/metrics"
	"reservation-engine/internal/usecase/events"
	"reservation-engine/internal/usecase/shared"

	"golang.org/x/time/rate"
)

type RelayResult struct {
	Published int
	Failed    int
}

// OutboxRelay forwards committed reservation events to the publisher.
// Delivery is at-least-once.
type OutboxRelay struct {
	uow       shared.UnitOfWork
	publisher events.Publisher
	limiter   *rate.Limiter
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *metrics.EngineMetrics
	cfg       config.OutboxConfig
}

func NewOutboxRelay(
	uow shared.UnitOfWork,
	publisher events.Publisher,
	clk clock.Clock,
	logger *slog.Logger,
	m *metrics.EngineMetrics,
	cfg config.OutboxConfig,
) *OutboxRelay {
	burst := int(cfg.PublishRPS)
	if burst < 1 {
		burst = 1
	}
	return &OutboxRelay{
		uow:       uow,
		publisher: publisher,
		limiter:   rate.NewLimiter(rate.Limit(cfg.PublishRPS), burst),
		clock:     clk,
		logger:    logger,
		metrics:   m,
		cfg:       cfg,
	}
}

// RelayOnce publishes one batch. Entries stay locked for the duration so
// concurrent relays never publish the same event in parallel.
func (o *OutboxRelay) RelayOnce(ctx context.Context) (RelayResult, error) {
	var result RelayResult
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = RelayResult{}
		entries, err := tx.Outbox().ClaimBatch(ctx, o.cfg.BatchSize, o.cfg.MaxAttempts)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := o.limiter.Wait(ctx); err != nil {
				return err
			}
			if perr := o.publisher.Publish(ctx, entry.Event); perr != nil {
				o.logger.WarnContext(ctx, "event publish failed",
					slog.String("event_id", entry.Event.ID.String()),
					slog.Int("attempts", entry.Attempts+1),
					slog.String("error", perr.Error()),
				)
				if err := tx.Outbox().MarkFailed(ctx, entry.Event.ID, perr.Error()); err != nil {
					return err
				}
				result.Failed++
				continue
			}
			if err := tx.Outbox().MarkDelivered(ctx, entry.Event.ID, o.clock.Now()); err != nil {
				return err
			}
			result.Published++
		}
		return nil
	})
	if err != nil {
		return RelayResult{}, errs.Wrap(err, "relay outbox")
	}

	for range result.Published {
		o.metrics.ObserveOutbox("published")
	}
	for range result.Failed {
		o.metrics.ObserveOutbox("failed")
	}
	return result, nil
}
