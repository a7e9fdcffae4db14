package reservation

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated   EventType = "ReservationCreated"
	EventConfirmed EventType = "ReservationConfirmed"
	EventCancelled EventType = "ReservationCancelled"
	EventExpired   EventType = "ReservationExpired"
	EventCheckedIn EventType = "ReservationCheckedIn"
	EventCompleted EventType = "ReservationCompleted"
	EventNoShow    EventType = "ReservationNoShow"
)

var eventByStatus = map[Status]EventType{
	StatusPending:   EventCreated,
	StatusConfirmed: EventConfirmed,
	StatusCancelled: EventCancelled,
	StatusExpired:   EventExpired,
	StatusCheckedIn: EventCheckedIn,
	StatusCompleted: EventCompleted,
	StatusNoShow:    EventNoShow,
}

// Event is the payload handed to the notification subsystem.
type Event struct {
	ID            uuid.UUID         `json:"id"`
	Type          EventType         `json:"type"`
	ReservationID uuid.UUID         `json:"reservation_id"`
	ResourceID    uuid.UUID         `json:"resource_id"`
	Requester     string            `json:"requester"`
	Status        Status            `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	Actor         string            `json:"actor,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// EventFor builds the event emitted for a recorded transition.
func EventFor(r *Reservation, tr Transition) Event {
	ev := Event{
		ID:            uuid.New(),
		Type:          eventByStatus[tr.To],
		ReservationID: r.ID(),
		ResourceID:    r.ResourceID(),
		Requester:     r.Requester().String(),
		Status:        tr.To,
		Reason:        tr.Reason,
		Actor:         tr.Actor.String(),
		OccurredAt:    tr.OccurredAt,
	}
	if ref := r.ExternalRef(); ref != nil {
		ev.Attributes = map[string]string{"external_ref": *ref}
	}
	return ev
}
