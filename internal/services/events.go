package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// Routing keys of the domain events.
const (
	EventUserRegistered = "user.registered"
	EventStoreCreated   = "store.created"
	EventStoreDeleted   = "store.deleted"
	EventItemCreated    = "item.created"
	EventItemUpdated    = "item.updated"
	EventItemDeleted    = "item.deleted"
)

// EventPublisher sends a message to an exchange. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Event is the body of every published message.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// events publishes best-effort: a nil publisher disables events and failures are only logged.
type events struct {
	publisher EventPublisher
	exchange  string
}

func (e events) publish(eventType string, payload any) {
	if e.publisher == nil {
		return
	}
	body, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := e.publisher.Publish(e.exchange, eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
