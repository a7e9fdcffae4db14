//go:build unit || e2e

package builder

import (
	"time"

	"reservation-engine/internal/domain/resource"
)

type ResourceBuilder struct {
	Name              string
	Capacity          *int
	BufferMinutes     int
	MinBookingMinutes int
	MaxBookingMinutes *int
	Now               time.Time
}

func NewResourceBuilder() *ResourceBuilder {
	capacity := 10
	return &ResourceBuilder{
		Name:     "Test Resource",
		Capacity: &capacity,
		Now:      time.Now().UTC(),
	}
}

func (b *ResourceBuilder) With(mutate func(*ResourceBuilder)) *ResourceBuilder {
	mutate(b)
	return b
}

func (b *ResourceBuilder) WithCapacity(capacity int) *ResourceBuilder {
	b.Capacity = &capacity
	return b
}

func (b *ResourceBuilder) Unlimited() *ResourceBuilder {
	b.Capacity = nil
	return b
}

func (b *ResourceBuilder) WithBuffer(minutes int) *ResourceBuilder {
	b.BufferMinutes = minutes
	return b
}

func (b *ResourceBuilder) WithBookingBounds(minMinutes int, maxMinutes *int) *ResourceBuilder {
	b.MinBookingMinutes = minMinutes
	b.MaxBookingMinutes = maxMinutes
	return b
}

func (b *ResourceBuilder) BuildCountable() (*resource.Resource, error) {
	return resource.NewCountable(b.Name, b.Capacity, b.Now)
}

func (b *ResourceBuilder) BuildInterval() (*resource.Resource, error) {
	return resource.NewInterval(b.Name, resource.IntervalPolicy{
		BufferMinutes:     b.BufferMinutes,
		MinBookingMinutes: b.MinBookingMinutes,
		MaxBookingMinutes: b.MaxBookingMinutes,
	}, b.Now)
}
