package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSlot = errors.New("start time must be before end time")

// Slot is a half-open interval [start, end).
type Slot struct {
	start time.Time
	end   time.Time
}

func NewSlot(start, end time.Time) (Slot, error) {
	if !start.Before(end) {
		return Slot{}, ErrInvalidSlot
	}
	return Slot{start: start.UTC(), end: end.UTC()}, nil
}

func (s Slot) Start() time.Time        { return s.start }
func (s Slot) End() time.Time          { return s.end }
func (s Slot) Duration() time.Duration { return s.end.Sub(s.start) }
func (s Slot) IsZero() bool            { return s.start.IsZero() && s.end.IsZero() }

// Occupied extends the end of the slot by the turnover buffer.
func (s Slot) Occupied(buffer time.Duration) Slot {
	if buffer <= 0 {
		return s
	}
	return Slot{start: s.start, end: s.end.Add(buffer)}
}

// Overlaps treats touching edges as free.
func (s Slot) Overlaps(other Slot) bool {
	return s.start.Before(other.end) && other.start.Before(s.end)
}

func (s Slot) String() string {
	return fmt.Sprintf("[%s,%s)", s.start.Format(time.RFC3339), s.end.Format(time.RFC3339))
}
