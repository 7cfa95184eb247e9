package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published on the reservation and payment streams
const (
	TypeReservationCreated   = "RESERVATION_CREATED"
	TypeReservationConfirmed = "RESERVATION_CONFIRMED"
	TypeReservationExpired   = "RESERVATION_EXPIRED"
	TypeReservationCancelled = "RESERVATION_CANCELLED"
	TypePaymentCompleted     = "PAYMENT_COMPLETED"
	TypePaymentFailed        = "PAYMENT_FAILED"
	TypePaymentReview        = "PAYMENT_REVIEW_REQUIRED"
)

// Event is the message written to Kafka for downstream consumers (email,
// push, audit). EntityID doubles as the partition key so every event for one
// reservation lands on the same partition in order.
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	EntityID  uuid.UUID              `json:"entity_id"`
	UserID    uuid.UUID              `json:"user_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewEvent builds an event with a fresh id and timestamp
func NewEvent(eventType string, entityID, userID uuid.UUID, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		EntityID:  entityID,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// ToJSON serializes the event for the wire
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events for one entity to the same partition
func (e *Event) PartitionKey() string {
	return e.EntityID.String()
}
