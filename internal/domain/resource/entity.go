package resource

import (
	"errors"
	"strings"
	"time"

	"reservation-engine/internal/domain/inventory"

	"github.com/google/uuid"
)

var (
	ErrEmptyResourceName   = errors.New("resource name cannot be empty")
	ErrResourceNameTooLong = errors.New("resource name is too long (max 255 characters)")
	ErrInvalidKind         = errors.New("invalid resource kind")
	ErrInvalidPolicy       = errors.New("invalid interval policy")
	ErrInvalidDuration     = errors.New("booking duration outside allowed bounds")
)

const (
	MaxResourceNameLength = 255
)

type Kind string

const (
	KindCountable Kind = "countable"
	KindInterval  Kind = "interval"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindCountable, KindInterval:
		return true
	default:
		return false
	}
}

// Resource is either a countable stock (tickets) or an interval-booked
// space. Only the fields of its own kind are meaningful.
type Resource struct {
	id        uuid.UUID
	name      string
	kind      Kind
	stock     inventory.Stock
	policy    IntervalPolicy
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

func NewCountable(name string, totalCapacity *int, now time.Time) (*Resource, error) {
	if err := validateResourceName(name); err != nil {
		return nil, err
	}
	stock, err := inventory.NewStock(totalCapacity)
	if err != nil {
		return nil, err
	}
	return &Resource{
		id:        uuid.New(),
		name:      strings.TrimSpace(name),
		kind:      KindCountable,
		stock:     stock,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func NewInterval(name string, policy IntervalPolicy, now time.Time) (*Resource, error) {
	if err := validateResourceName(name); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Resource{
		id:        uuid.New(),
		name:      strings.TrimSpace(name),
		kind:      KindInterval,
		policy:    policy,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type ReconstructParams struct {
	ID        uuid.UUID
	Name      string
	Kind      Kind
	Stock     inventory.Stock
	Policy    IntervalPolicy
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func Reconstruct(p ReconstructParams) *Resource {
	return &Resource{
		id:        p.ID,
		name:      p.Name,
		kind:      p.Kind,
		stock:     p.Stock,
		policy:    p.Policy,
		version:   p.Version,
		createdAt: p.CreatedAt,
		updatedAt: p.UpdatedAt,
	}
}

// ApplyStock replaces the counters after a ledger operation.
func (r *Resource) ApplyStock(stock inventory.Stock, now time.Time) {
	r.stock = stock
	r.version++
	r.updatedAt = now
}

func (r *Resource) IsCountable() bool { return r.kind == KindCountable }
func (r *Resource) IsInterval() bool  { return r.kind == KindInterval }

func validateResourceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyResourceName
	}
	if len(name) > MaxResourceNameLength {
		return ErrResourceNameTooLong
	}
	return nil
}

func (r *Resource) ID() uuid.UUID          { return r.id }
func (r *Resource) Name() string           { return r.name }
func (r *Resource) Kind() Kind             { return r.kind }
func (r *Resource) Stock() inventory.Stock { return r.stock }
func (r *Resource) Policy() IntervalPolicy { return r.policy }
func (r *Resource) Version() int64         { return r.version }
func (r *Resource) CreatedAt() time.Time   { return r.createdAt }
func (r *Resource) UpdatedAt() time.Time   { return r.updatedAt }
