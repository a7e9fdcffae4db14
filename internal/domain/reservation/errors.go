package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrKindMismatch      = errors.New("request shape does not match resource kind")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrHoldExpired       = errors.New("reservation hold has expired")
	ErrInvalidRequester  = errors.New("invalid requester reference")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrSlotInPast        = errors.New("start time cannot be in the past")
	ErrInvalidHold       = errors.New("hold duration cannot be negative")
	ErrEmptyExternalRef  = errors.New("external reference cannot be empty")
)

// InvalidTransitionError matches ErrInvalidTransition via errors.Is.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
