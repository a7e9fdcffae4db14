package inventory

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidToken      = errors.New("invalid stock token")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNegativeCapacity  = errors.New("capacity cannot be negative")
	ErrCounterUnderflow  = errors.New("stock counter would become negative")
)

// InsufficientStockError matches ErrInsufficientStock via errors.Is.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Availability is either a finite count or Unlimited.
type Availability struct {
	count     int
	unlimited bool
}

func Unlimited() Availability            { return Availability{unlimited: true} }
func Limited(count int) Availability     { return Availability{count: count} }
func (a Availability) IsUnlimited() bool { return a.unlimited }

// Count is meaningless when IsUnlimited is true.
func (a Availability) Count() int { return a.count }

// Covers reports whether quantity fits into what is available.
func (a Availability) Covers(quantity int) bool {
	return a.unlimited || quantity <= a.count
}

func (a Availability) String() string {
	if a.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(a.count)
}

// Stock holds the counters of a countable resource.
// Invariant: Sold+Reserved <= *TotalCapacity when TotalCapacity is set; all counts >= 0.
type Stock struct {
	TotalCapacity *int
	Sold          int
	Reserved      int
}

func NewStock(totalCapacity *int) (Stock, error) {
	if totalCapacity != nil && *totalCapacity < 0 {
		return Stock{}, ErrNegativeCapacity
	}
	return Stock{TotalCapacity: totalCapacity}, nil
}

func (s Stock) Available() Availability {
	if s.TotalCapacity == nil {
		return Unlimited()
	}
	remaining := *s.TotalCapacity - s.Sold - s.Reserved
	if remaining < 0 {
		remaining = 0
	}
	return Limited(remaining)
}

// Reserve returns the counters after holding quantity, or an
// InsufficientStockError. No partial reservation is ever produced.
func (s Stock) Reserve(quantity int) (Stock, error) {
	if quantity <= 0 {
		return s, ErrInvalidQuantity
	}
	avail := s.Available()
	if !avail.Covers(quantity) {
		return s, &InsufficientStockError{Available: avail.Count(), Requested: quantity}
	}
	s.Reserved += quantity
	return s, nil
}

// Sell moves quantity from reserved to sold.
func (s Stock) Sell(quantity int) (Stock, error) {
	if quantity <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.Reserved < quantity {
		return s, ErrCounterUnderflow
	}
	s.Reserved -= quantity
	s.Sold += quantity
	return s, nil
}

// Unreserve gives quantity back to the pool.
func (s Stock) Unreserve(quantity int) (Stock, error) {
	if quantity <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.Reserved < quantity {
		return s, ErrCounterUnderflow
	}
	s.Reserved -= quantity
	return s, nil
}

// Refund returns sold units to the pool when a confirmed booking is cancelled.
func (s Stock) Refund(quantity int) (Stock, error) {
	if quantity <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.Sold < quantity {
		return s, ErrCounterUnderflow
	}
	s.Sold -= quantity
	return s, nil
}
