package commands

import (
	"context"

	"reservation-engine/internal/domain/reservation"
)

// RequesterVerifier lets the identity service veto unknown requesters.
// The engine never looks past the reference itself.
type RequesterVerifier interface {
	Verify(ctx context.Context, ref reservation.RequesterRef) error
}

type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(context.Context, reservation.RequesterRef) error { return nil }

type Option func(*ReservationCommands)

func WithRequesterVerifier(v RequesterVerifier) Option {
	return func(c *ReservationCommands) {
		if v != nil {
			c.verifier = v
		}
	}
}
