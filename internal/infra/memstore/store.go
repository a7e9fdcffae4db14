// Package memstore keeps engine state in process memory. Transactions run one
// at a time and roll back by restoring a snapshot, which gives the same
// all-or-nothing behaviour as the Postgres unit of work without row locks.
package memstore

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/domain/schedule"
	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var errReadOnly = errs.New("write attempted in read-only transaction")

type outboxRow struct {
	event       reservation.Event
	attempts    int
	lastError   string
	deliveredAt *time.Time
}

type state struct {
	resources    map[uuid.UUID]resource.ReconstructParams
	tokens       map[uuid.UUID]inventory.Token
	claims       map[uuid.UUID]schedule.Claim
	reservations map[uuid.UUID]reservation.ReconstructParams
	transitions  []reservation.Transition
	outbox       []outboxRow
}

func (s state) clone() state {
	return state{
		resources:    maps.Clone(s.resources),
		tokens:       maps.Clone(s.tokens),
		claims:       maps.Clone(s.claims),
		reservations: maps.Clone(s.reservations),
		transitions:  slices.Clone(s.transitions),
		outbox:       slices.Clone(s.outbox),
	}
}

type Store struct {
	mu     sync.Mutex
	data   state
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{
		data: state{
			resources:    map[uuid.UUID]resource.ReconstructParams{},
			tokens:       map[uuid.UUID]inventory.Token{},
			claims:       map[uuid.UUID]schedule.Claim{},
			reservations: map[uuid.UUID]reservation.ReconstructParams{},
		},
		logger: logger,
	}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, &memTx{store: s, readOnly: readOnly}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Events returns every enqueued event in enqueue order.
func (s *Store) Events() []reservation.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]reservation.Event, len(s.data.outbox))
	for i, row := range s.data.outbox {
		out[i] = row.event
	}
	return out
}

func (s *Store) notFound(msg string, sentinel error) error {
	return errs.Mark(infra.WrapRepoErr(s.logger, infra.KindNotFound, msg, nil), sentinel)
}

func (s *Store) versionConflict(msg string) error {
	return infra.WrapRepoErr(s.logger, infra.KindVersionConflict, msg, errs.ErrVersionConflict)
}

func (s *Store) duplicate(msg string) error {
	return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, msg, nil)
}

type memTx struct {
	store    *Store
	readOnly bool
}

func (t *memTx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *memTx) Resources() shared.ResourceRepository       { return resourceRepo{t} }
func (t *memTx) StockTokens() shared.StockTokenRepository   { return tokenRepo{t} }
func (t *memTx) Claims() shared.ClaimRepository             { return claimRepo{t} }
func (t *memTx) Reservations() shared.ReservationRepository { return reservationRepo{t} }
func (t *memTx) Transitions() shared.TransitionRepository   { return transitionRepo{t} }
func (t *memTx) Outbox() shared.OutboxRepository            { return outboxRepo{t} }
