package ledger

import (
	"context"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/domain/resource"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrNotCountable = errs.New("resource is not countable")

// Ledger keeps the sold/reserved counters of countable resources. Every
// method runs inside the caller's transaction.
type Ledger struct {
	clock clock.Clock
}

func New(clk clock.Clock) *Ledger {
	return &Ledger{clock: clk}
}

// TryReserve holds quantity units. The resource row stays locked until the
// transaction ends, which serialises concurrent holds on one resource.
func (l *Ledger) TryReserve(ctx context.Context, tx shared.Tx, resourceID uuid.UUID, quantity int) (inventory.Token, error) {
	res, err := lockCountable(ctx, tx, resourceID)
	if err != nil {
		return inventory.Token{}, err
	}

	stock, err := res.Stock().Reserve(quantity)
	if err != nil {
		return inventory.Token{}, err
	}

	now := l.clock.Now()
	token, err := inventory.NewToken(resourceID, quantity, now)
	if err != nil {
		return inventory.Token{}, err
	}

	res.ApplyStock(stock, now)
	if err := tx.Resources().UpdateStock(ctx, res); err != nil {
		return inventory.Token{}, err
	}
	if err := tx.StockTokens().Create(ctx, token); err != nil {
		return inventory.Token{}, err
	}
	return token, nil
}

// Confirm moves a held token to sold. Confirming a sold token is a no-op.
func (l *Ledger) Confirm(ctx context.Context, tx shared.Tx, tokenID uuid.UUID) error {
	token, err := lockToken(ctx, tx, tokenID)
	if err != nil {
		return err
	}

	now := l.clock.Now()
	changed, err := token.Confirm(now)
	if err != nil || !changed {
		return err
	}

	return l.adjust(ctx, tx, token, func(s inventory.Stock) (inventory.Stock, error) {
		return s.Sell(token.Quantity)
	})
}

// Release returns a held token's quantity to the pool.
func (l *Ledger) Release(ctx context.Context, tx shared.Tx, tokenID uuid.UUID) error {
	token, err := lockToken(ctx, tx, tokenID)
	if err != nil {
		return err
	}
	if err := token.Release(l.clock.Now()); err != nil {
		return err
	}
	return l.adjust(ctx, tx, token, func(s inventory.Stock) (inventory.Stock, error) {
		return s.Unreserve(token.Quantity)
	})
}

// Refund returns a sold token's quantity to the pool.
func (l *Ledger) Refund(ctx context.Context, tx shared.Tx, tokenID uuid.UUID) error {
	token, err := lockToken(ctx, tx, tokenID)
	if err != nil {
		return err
	}
	if err := token.Refund(l.clock.Now()); err != nil {
		return err
	}
	return l.adjust(ctx, tx, token, func(s inventory.Stock) (inventory.Stock, error) {
		return s.Refund(token.Quantity)
	})
}

func (l *Ledger) AvailableCount(ctx context.Context, tx shared.Tx, resourceID uuid.UUID) (inventory.Availability, error) {
	res, err := tx.Resources().FindByID(ctx, resourceID)
	if err != nil {
		return inventory.Availability{}, err
	}
	if !res.IsCountable() {
		return inventory.Availability{}, ErrNotCountable
	}
	return res.Stock().Available(), nil
}

func (l *Ledger) adjust(ctx context.Context, tx shared.Tx, token inventory.Token, apply func(inventory.Stock) (inventory.Stock, error)) error {
	res, err := lockCountable(ctx, tx, token.ResourceID)
	if err != nil {
		return err
	}
	stock, err := apply(res.Stock())
	if err != nil {
		return errs.Wrapf(err, "adjust stock of resource %s", res.ID())
	}
	res.ApplyStock(stock, token.UpdatedAt)
	if err := tx.Resources().UpdateStock(ctx, res); err != nil {
		return err
	}
	return tx.StockTokens().UpdateState(ctx, token)
}

func lockCountable(ctx context.Context, tx shared.Tx, resourceID uuid.UUID) (*resource.Resource, error) {
	res, err := tx.Resources().LockByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !res.IsCountable() {
		return nil, ErrNotCountable
	}
	return res, nil
}

func lockToken(ctx context.Context, tx shared.Tx, tokenID uuid.UUID) (inventory.Token, error) {
	token, err := tx.StockTokens().LockByID(ctx, tokenID)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			return inventory.Token{}, errs.Mark(err, inventory.ErrInvalidToken)
		}
		return inventory.Token{}, err
	}
	return token, nil
}
