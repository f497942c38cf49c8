package kafka

import (
	"encoding/json"
	"fmt"
	"time"
)

// User event types consumed from the platform topic
const (
	EventTypeUserCreated = "user.created"
	EventTypeUserUpdated = "user.updated"
)

// UserEvent is a platform user lifecycle message
type UserEvent struct {
	EventType string           `json:"event_type"`
	TenantID  string           `json:"tenant_id"`
	User      UserEventPayload `json:"user"`
	Timestamp time.Time        `json:"timestamp"`
}

// UserEventPayload carries the user fields relevant to enrollment
type UserEventPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Location  string `json:"location"`
}

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	UserEvent *UserEvent
}

// ParseUserEvent parses the message value as a user lifecycle event
func (m *IncomingMessage) ParseUserEvent() error {
	var event UserEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return err
	}
	if event.EventType != EventTypeUserCreated && event.EventType != EventTypeUserUpdated {
		return fmt.Errorf("unsupported event type %q", event.EventType)
	}
	if event.User.ID == "" {
		return fmt.Errorf("user event is missing user.id")
	}
	m.UserEvent = &event
	return nil
}

// GetTenantID returns the tenant ID from the event body, falling back to the
// message header.
func (m *IncomingMessage) GetTenantID() string {
	if m.UserEvent != nil && m.UserEvent.TenantID != "" {
		return m.UserEvent.TenantID
	}
	return m.Headers["tenant_id"]
}

// GetEventType returns the event type from the event body, falling back to
// the message header.
func (m *IncomingMessage) GetEventType() string {
	if m.UserEvent != nil {
		return m.UserEvent.EventType
	}
	return m.Headers["event_type"]
}
