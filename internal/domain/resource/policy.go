package resource

import "time"

// IntervalPolicy bounds the bookings of an interval resource.
// A nil MaxBookingMinutes means no upper bound.
type IntervalPolicy struct {
	BufferMinutes     int
	MinBookingMinutes int
	MaxBookingMinutes *int
}

func (p IntervalPolicy) Validate() error {
	if p.BufferMinutes < 0 || p.MinBookingMinutes < 0 {
		return ErrInvalidPolicy
	}
	if p.MaxBookingMinutes != nil && *p.MaxBookingMinutes < p.MinBookingMinutes {
		return ErrInvalidPolicy
	}
	return nil
}

func (p IntervalPolicy) Buffer() time.Duration {
	return time.Duration(p.BufferMinutes) * time.Minute
}

func (p IntervalPolicy) ValidateDuration(d time.Duration) error {
	if d < time.Duration(p.MinBookingMinutes)*time.Minute {
		return ErrInvalidDuration
	}
	if p.MaxBookingMinutes != nil && d > time.Duration(*p.MaxBookingMinutes)*time.Minute {
		return ErrInvalidDuration
	}
	return nil
}
