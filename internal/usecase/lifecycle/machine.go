package lifecycle

//go:generate mockgen -source=machine.go -destination=../../../tests/mock/lifecycle/underlying_mock.go -package=lifecyclemock

import (
	"context"
	"log/slog"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/metrics"
	"reservation-engine/internal/pkg/telemetry"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Underlying performs the inventory side of a status change. It is called
// inside the transaction that persists the status, before the status
// changes, so r still carries its previous status.
type Underlying interface {
	// ReleaseUnderlying frees the stock token or interval claim on cancel/expiry.
	ReleaseUnderlying(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error
	// ConfirmUnderlying settles a held token as sold.
	ConfirmUnderlying(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error
	// RetireUnderlying stops a finished booking from blocking its window.
	RetireUnderlying(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error
}

type TransitionCommand struct {
	ReservationID uuid.UUID
	Target        reservation.Status
	Reason        string
	Actor         reservation.Actor
	// ExternalRef is stored on the reservation before the transition.
	ExternalRef string
}

type Outcome struct {
	Reservation *reservation.Reservation
	Transition  reservation.Transition
	// Expired is set when the hold had lapsed and the requested target was
	// replaced by expired.
	Expired bool
}

type Machine struct {
	uow        shared.UnitOfWork
	underlying Underlying
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.EngineMetrics
}

func NewMachine(uow shared.UnitOfWork, underlying Underlying, clk clock.Clock, logger *slog.Logger, m *metrics.EngineMetrics) *Machine {
	return &Machine{
		uow:        uow,
		underlying: underlying,
		clock:      clk,
		logger:     logger,
		metrics:    m,
	}
}

// Transition runs Apply in its own transaction. When a lapsed hold was routed
// to expired instead of a requested confirm, the expiry is committed and
// reservation.ErrHoldExpired is returned together with the reservation.
func (m *Machine) Transition(ctx context.Context, cmd TransitionCommand) (*reservation.Reservation, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "lifecycle.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("reservation.id", cmd.ReservationID.String()),
		attribute.String("reservation.target", cmd.Target.String()),
	)

	var out Outcome
	err := m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var aerr error
		out, aerr = m.Apply(ctx, tx, cmd)
		return aerr
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.metrics.ObserveTransition(out.Transition.From.String(), out.Transition.To.String())
	m.logger.InfoContext(ctx, "reservation transitioned",
		slog.String("reservation_id", cmd.ReservationID.String()),
		slog.String("from", out.Transition.From.String()),
		slog.String("to", out.Transition.To.String()),
		slog.String("reason", out.Transition.Reason),
		slog.String("actor", out.Transition.Actor.String()),
	)

	if out.Expired && !cmd.Target.ReleasesUnderlying() {
		return out.Reservation, reservation.ErrHoldExpired
	}
	return out.Reservation, nil
}

// Apply performs the transition inside tx.
func (m *Machine) Apply(ctx context.Context, tx shared.Tx, cmd TransitionCommand) (Outcome, error) {
	r, err := tx.Reservations().LockByID(ctx, cmd.ReservationID)
	if err != nil {
		return Outcome{}, err
	}

	now := m.clock.Now()
	target, reason := cmd.Target, cmd.Reason
	expired := false
	if r.IsExpiredAt(now) && target != reservation.StatusExpired {
		target, reason, expired = reservation.StatusExpired, reservation.ReasonExpired, true
	}

	if !reservation.CanTransition(r.Status(), target) {
		return Outcome{}, &reservation.InvalidTransitionError{From: r.Status(), To: target}
	}

	if cmd.ExternalRef != "" && !expired {
		if err := r.AttachExternalRef(cmd.ExternalRef); err != nil {
			return Outcome{}, err
		}
	}

	switch {
	case target.ReleasesUnderlying():
		err = m.underlying.ReleaseUnderlying(ctx, tx, r)
	case target == reservation.StatusConfirmed:
		err = m.underlying.ConfirmUnderlying(ctx, tx, r)
	case target.IsTerminal():
		err = m.underlying.RetireUnderlying(ctx, tx, r)
	}
	if err != nil {
		return Outcome{}, err
	}

	prevVersion := r.Version()
	tr, err := r.TransitionTo(target, reason, cmd.Actor, now)
	if err != nil {
		return Outcome{}, err
	}
	if err := tx.Reservations().Update(ctx, r, prevVersion); err != nil {
		return Outcome{}, err
	}
	if err := tx.Transitions().Append(ctx, tr); err != nil {
		return Outcome{}, err
	}
	if err := tx.Outbox().Enqueue(ctx, reservation.EventFor(r, tr)); err != nil {
		return Outcome{}, err
	}

	return Outcome{Reservation: r, Transition: tr, Expired: expired}, nil
}
