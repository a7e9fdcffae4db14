package events

//go:generate mockgen -source=publisher.go -destination=../../../tests/mock/events/publisher_mock.go -package=eventsmock

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/reservation"
)

// Publisher hands reservation events to the notification subsystem. An
// error leaves the event queued for the next relay run.
type Publisher interface {
	Publish(ctx context.Context, ev reservation.Event) error
}

// LogPublisher writes events to the log. It is the default when no
// dispatcher is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, ev reservation.Event) error {
	p.logger.InfoContext(ctx, "reservation event",
		slog.String("event_id", ev.ID.String()),
		slog.String("type", string(ev.Type)),
		slog.String("reservation_id", ev.ReservationID.String()),
		slog.String("status", ev.Status.String()),
	)
	return nil
}
