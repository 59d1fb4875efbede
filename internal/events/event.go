package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	PetCreated       Type = "pet.created"
	PetUpdated       Type = "pet.updated"
	PetStatusChanged Type = "pet.status_changed"
	PetDeleted       Type = "pet.deleted"
)

// Event is a listing lifecycle notification.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	PetID      uuid.UUID `json:"petId"`
	OwnerID    uuid.UUID `json:"ownerId"`
	ActorID    uuid.UUID `json:"actorId"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func New(t Type, petID, ownerID, actorID uuid.UUID, status string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		PetID:      petID,
		OwnerID:    ownerID,
		ActorID:    actorID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Closer is implemented by publishers holding a connection.
type Closer interface {
	Close() error
}
