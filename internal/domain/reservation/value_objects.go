package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequesterRef is an opaque reference into the identity service.
type RequesterRef struct {
	Type RequesterType
	ID   uuid.UUID
}

func NewRequesterRef(t RequesterType, id uuid.UUID) (RequesterRef, error) {
	ref := RequesterRef{Type: t, ID: id}
	if err := ref.Validate(); err != nil {
		return RequesterRef{}, err
	}
	return ref, nil
}

func (r RequesterRef) Validate() error {
	if !r.Type.IsValid() || r.ID == uuid.Nil {
		return ErrInvalidRequester
	}
	return nil
}

func (r RequesterRef) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}

// Actor identifies who caused a transition, e.g. "system:payment".
type Actor struct {
	Type string
	ID   string
}

var (
	ActorSystemPayment = Actor{Type: "system", ID: "payment"}
	ActorSystemSweeper = Actor{Type: "system", ID: "sweeper"}
	ActorSystemEngine  = Actor{Type: "system", ID: "engine"}
)

func ActorFromRequester(r RequesterRef) Actor {
	return Actor{Type: string(r.Type), ID: r.ID.String()}
}

func ParseActor(s string) Actor {
	typ, id, found := strings.Cut(s, ":")
	if !found {
		return Actor{Type: s}
	}
	return Actor{Type: typ, ID: id}
}

func (a Actor) String() string {
	if a.ID == "" {
		return a.Type
	}
	return a.Type + ":" + a.ID
}

const (
	ReasonCreated = "created"
	ReasonExpired = "expired"
	ReasonPayment = "payment_received"
)

// Transition is an append-only audit record. From is empty for the
// creation record.
type Transition struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	From          Status
	To            Status
	Reason        string
	Actor         Actor
	OccurredAt    time.Time
}
