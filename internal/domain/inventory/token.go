package inventory

import (
	"time"

	"github.com/google/uuid"
)

type TokenState string

const (
	TokenHeld     TokenState = "held"
	TokenSold     TokenState = "sold"
	TokenReleased TokenState = "released"
)

func (s TokenState) IsValid() bool {
	switch s {
	case TokenHeld, TokenSold, TokenReleased:
		return true
	default:
		return false
	}
}

// Token records an amount held against a countable resource.
type Token struct {
	ID         uuid.UUID
	ResourceID uuid.UUID
	Quantity   int
	State      TokenState
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewToken(resourceID uuid.UUID, quantity int, now time.Time) (Token, error) {
	if quantity <= 0 {
		return Token{}, ErrInvalidQuantity
	}
	return Token{
		ID:         uuid.New(),
		ResourceID: resourceID,
		Quantity:   quantity,
		State:      TokenHeld,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Confirm reports whether the counters must move. A sold token is a no-op.
func (t *Token) Confirm(now time.Time) (changed bool, err error) {
	switch t.State {
	case TokenSold:
		return false, nil
	case TokenHeld:
		t.State = TokenSold
		t.UpdatedAt = now
		return true, nil
	default:
		return false, ErrInvalidToken
	}
}

// Release is only legal from held.
func (t *Token) Release(now time.Time) error {
	if t.State != TokenHeld {
		return ErrInvalidToken
	}
	t.State = TokenReleased
	t.UpdatedAt = now
	return nil
}

// Refund is only legal from sold.
func (t *Token) Refund(now time.Time) error {
	if t.State != TokenSold {
		return ErrInvalidToken
	}
	t.State = TokenReleased
	t.UpdatedAt = now
	return nil
}
