package commands

import (
	"context"
	"log/slog"
	"time"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/metrics"
	"reservation-engine/internal/pkg/telemetry"
	"reservation-engine/internal/usecase/ledger"
	"reservation-engine/internal/usecase/lifecycle"
	"reservation-engine/internal/usecase/scheduler"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ReserveRequest carries either Quantity (countable resources) or Start/End
// (interval resources), never both.
type ReserveRequest struct {
	ResourceID uuid.UUID
	Requester  reservation.RequesterRef
	Quantity   *int
	Start      *time.Time
	End        *time.Time
	// HoldDuration overrides the configured default hold. Zero disables expiry.
	HoldDuration *time.Duration
}

// ReservationCommands is the single write path into ledger counters and
// scheduler claims.
type ReservationCommands struct {
	uow       shared.UnitOfWork
	ledger    *ledger.Ledger
	scheduler *scheduler.Scheduler
	machine   *lifecycle.Machine
	verifier  RequesterVerifier
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *metrics.EngineMetrics
	cfg       config.EngineConfig
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	clk clock.Clock,
	logger *slog.Logger,
	m *metrics.EngineMetrics,
	cfg config.EngineConfig,
	opts ...Option,
) *ReservationCommands {
	c := &ReservationCommands{
		uow:       uow,
		ledger:    ledger.New(clk),
		scheduler: scheduler.New(clk),
		verifier:  acceptAllVerifier{},
		clock:     clk,
		logger:    logger,
		metrics:   m,
		cfg:       cfg,
	}
	c.machine = lifecycle.NewMachine(uow, c, clk, logger, m)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ReservationCommands) Reserve(ctx context.Context, req ReserveRequest) (*reservation.Reservation, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "commands.Reserve")
	defer span.End()
	span.SetAttributes(attribute.String("resource.id", req.ResourceID.String()))

	started := c.clock.Now()
	kind := ""
	r, err := c.reserve(ctx, req, &kind)
	outcome := "ok"
	if err != nil {
		err = c.translate(ctx, "reserve", err)
		outcome = reserveOutcome(err)
		span.RecordError(err)
	}
	c.metrics.ObserveReserve(kind, outcome, c.clock.Now().Sub(started).Seconds())
	return r, err
}

func (c *ReservationCommands) reserve(ctx context.Context, req ReserveRequest, kind *string) (*reservation.Reservation, error) {
	if err := req.Requester.Validate(); err != nil {
		return nil, err
	}
	if err := c.verifier.Verify(ctx, req.Requester); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "verify requester"), reservation.ErrInvalidRequester)
	}
	expiresAt, err := c.expiry(req.HoldDuration)
	if err != nil {
		return nil, err
	}

	var created *reservation.Reservation
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Resources().FindByID(ctx, req.ResourceID)
		if err != nil {
			return err
		}
		*kind = res.Kind().String()

		var r *reservation.Reservation
		switch {
		case res.IsCountable() && req.Quantity != nil && req.Start == nil && req.End == nil:
			r, err = c.reserveCountable(ctx, tx, res, req, expiresAt)
		case res.IsInterval() && req.Quantity == nil && req.Start != nil && req.End != nil:
			r, err = c.reserveInterval(ctx, tx, res, req, expiresAt)
		default:
			return reservation.ErrKindMismatch
		}
		if err != nil {
			return err
		}

		if err := tx.Reservations().Create(ctx, r); err != nil {
			return err
		}
		record := r.CreationRecord(reservation.ActorFromRequester(req.Requester))
		if err := tx.Transitions().Append(ctx, record); err != nil {
			return err
		}
		if err := tx.Outbox().Enqueue(ctx, reservation.EventFor(r, record)); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "reservation created",
		slog.String("reservation_id", created.ID().String()),
		slog.String("resource_id", created.ResourceID().String()),
		slog.String("kind", created.Kind().String()),
	)
	return created, nil
}

func (c *ReservationCommands) reserveCountable(
	ctx context.Context,
	tx shared.Tx,
	res *resource.Resource,
	req ReserveRequest,
	expiresAt *time.Time,
) (*reservation.Reservation, error) {
	if *req.Quantity <= 0 {
		return nil, reservation.ErrInvalidQuantity
	}
	token, err := c.ledger.TryReserve(ctx, tx, res.ID(), *req.Quantity)
	if err != nil {
		return nil, err
	}
	return reservation.NewCountable(reservation.CountableParams{
		ResourceID: res.ID(),
		Requester:  req.Requester,
		Quantity:   *req.Quantity,
		TokenID:    token.ID,
		ExpiresAt:  expiresAt,
		Now:        c.clock.Now(),
	})
}

func (c *ReservationCommands) reserveInterval(
	ctx context.Context,
	tx shared.Tx,
	res *resource.Resource,
	req ReserveRequest,
	expiresAt *time.Time,
) (*reservation.Reservation, error) {
	slot, err := schedule.NewSlot(*req.Start, *req.End)
	if err != nil {
		return nil, err
	}
	if slot.Start().Before(c.clock.Now()) {
		return nil, reservation.ErrSlotInPast
	}
	policy := res.Policy()
	if err := policy.ValidateDuration(slot.Duration()); err != nil {
		return nil, err
	}

	id := uuid.New()
	claim, err := c.scheduler.TryClaim(ctx, tx, res.ID(), id, slot, policy.Buffer())
	if err != nil {
		return nil, err
	}
	return reservation.NewInterval(reservation.IntervalParams{
		ID:         id,
		ResourceID: res.ID(),
		Requester:  req.Requester,
		Claim:      claim,
		ExpiresAt:  expiresAt,
		Now:        c.clock.Now(),
	})
}

func (c *ReservationCommands) expiry(hold *time.Duration) (*time.Time, error) {
	d := c.cfg.DefaultHold
	if hold != nil {
		d = *hold
	}
	if d < 0 {
		return nil, reservation.ErrInvalidHold
	}
	if d == 0 {
		return nil, nil
	}
	at := c.clock.Now().Add(d)
	return &at, nil
}

func (c *ReservationCommands) Cancel(ctx context.Context, reservationID uuid.UUID, reason string, actor reservation.Actor) (*reservation.Reservation, error) {
	return c.transition(ctx, lifecycle.TransitionCommand{
		ReservationID: reservationID,
		Target:        reservation.StatusCancelled,
		Reason:        reason,
		Actor:         actor,
	})
}

func (c *ReservationCommands) Confirm(ctx context.Context, reservationID uuid.UUID, actor reservation.Actor) (*reservation.Reservation, error) {
	return c.transition(ctx, lifecycle.TransitionCommand{
		ReservationID: reservationID,
		Target:        reservation.StatusConfirmed,
		Reason:        "confirmed",
		Actor:         actor,
	})
}

// ConfirmByExternalReference is the payment collaborator's entry point.
func (c *ReservationCommands) ConfirmByExternalReference(ctx context.Context, reservationID uuid.UUID, externalRef string) (*reservation.Reservation, error) {
	if externalRef == "" {
		return nil, reservation.ErrEmptyExternalRef
	}
	return c.transition(ctx, lifecycle.TransitionCommand{
		ReservationID: reservationID,
		Target:        reservation.StatusConfirmed,
		Reason:        reservation.ReasonPayment,
		Actor:         reservation.ActorSystemPayment,
		ExternalRef:   externalRef,
	})
}

func (c *ReservationCommands) CheckIn(ctx context.Context, reservationID uuid.UUID, actor reservation.Actor) (*reservation.Reservation, error) {
	return c.transition(ctx, lifecycle.TransitionCommand{
		ReservationID: reservationID,
		Target:        reservation.StatusCheckedIn,
		Reason:        "checked_in",
		Actor:         actor,
	})
}

func (c *ReservationCommands) Complete(ctx context.Context, reservationID uuid.UUID, actor reservation.Actor) (*reservation.Reservation, error) {
	return c.transition(ctx, lifecycle.TransitionCommand{
		ReservationID: reservationID,
		Target:        reservation.StatusCompleted,
		Reason:        "completed",
		Actor:         actor,
	})
}

func (c *ReservationCommands) MarkNoShow(ctx context.Context, reservationID uuid.UUID, actor reservation.Actor) (*reservation.Reservation, error) {
	return c.transition(ctx, lifecycle.TransitionCommand{
		ReservationID: reservationID,
		Target:        reservation.StatusNoShow,
		Reason:        "no_show",
		Actor:         actor,
	})
}

func (c *ReservationCommands) transition(ctx context.Context, cmd lifecycle.TransitionCommand) (*reservation.Reservation, error) {
	r, err := c.machine.Transition(ctx, cmd)
	if err != nil {
		return r, c.translate(ctx, "transition", err)
	}
	return r, nil
}

// ReleaseUnderlying gives back the held stock or interval. r still carries
// the status it is leaving.
func (c *ReservationCommands) ReleaseUnderlying(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error {
	switch {
	case r.IsCountable() && r.StockTokenID() != nil:
		if r.Status() == reservation.StatusPending {
			return c.ledger.Release(ctx, tx, *r.StockTokenID())
		}
		return c.ledger.Refund(ctx, tx, *r.StockTokenID())
	case r.IsInterval() && r.ClaimID() != nil:
		return c.scheduler.Release(ctx, tx, *r.ClaimID())
	default:
		return reservation.ErrKindMismatch
	}
}

func (c *ReservationCommands) ConfirmUnderlying(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error {
	if r.IsCountable() && r.StockTokenID() != nil {
		return c.ledger.Confirm(ctx, tx, *r.StockTokenID())
	}
	return nil
}

// RetireUnderlying frees the window of a finished interval booking. Sold
// stock stays sold.
func (c *ReservationCommands) RetireUnderlying(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error {
	if r.IsInterval() && r.ClaimID() != nil {
		return c.scheduler.Release(ctx, tx, *r.ClaimID())
	}
	return nil
}

var passthrough = []error{
	inventory.ErrInsufficientStock,
	schedule.ErrConflict,
	schedule.ErrInvalidSlot,
	resource.ErrInvalidDuration,
	reservation.ErrHoldExpired,
	reservation.ErrInvalidRequester,
	reservation.ErrInvalidQuantity,
	reservation.ErrSlotInPast,
	reservation.ErrInvalidHold,
	reservation.ErrEmptyExternalRef,
	errs.ErrResourceNotFound,
	errs.ErrReservationNotFound,
	errs.ErrTransient,
	context.Canceled,
	context.DeadlineExceeded,
}

// programmer errors point at a caller bug rather than contention.
var programmer = []error{
	reservation.ErrKindMismatch,
	reservation.ErrInvalidTransition,
	inventory.ErrInvalidToken,
	inventory.ErrCounterUnderflow,
	ledger.ErrNotCountable,
	scheduler.ErrNotInterval,
}

// translate keeps the typed taxonomy and turns everything else into
// ErrTransient. The raw cause stays attached for logging.
func (c *ReservationCommands) translate(ctx context.Context, op string, err error) error {
	for _, p := range programmer {
		if errs.Is(err, p) {
			c.logger.ErrorContext(ctx, "engine rejected request",
				slog.String("op", op),
				slog.String("error", err.Error()),
			)
			return err
		}
	}
	for _, p := range passthrough {
		if errs.Is(err, p) {
			return err
		}
	}
	c.logger.ErrorContext(ctx, "storage failure",
		slog.String("op", op),
		slog.String("error", err.Error()),
		slog.Any("stack", errs.ExtractStackLines(err, 8)),
	)
	return errs.Mark(err, errs.ErrTransient)
}

func reserveOutcome(err error) string {
	switch {
	case errs.Is(err, inventory.ErrInsufficientStock):
		return "insufficient_stock"
	case errs.Is(err, schedule.ErrConflict):
		return "conflict"
	case errs.Is(err, errs.ErrTransient):
		return "transient"
	default:
		return "rejected"
	}
}
