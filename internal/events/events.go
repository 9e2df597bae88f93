// Package events publishes domain events after successful mutations and
// content generations. Payloads carry identifiers and request parameters
// only; generated text is never published.
package events

import (
	"context"
	"time"
)

const (
	TopicProfileCreated   = "profile.created"
	TopicProfileUpdated   = "profile.updated"
	TopicSubjectCreated   = "subject.created"
	TopicContentGenerated = "content.generated"
)

// Event is the JSON envelope written to the message bus
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	UserID     string                 `json:"user_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Publisher delivers events to a backend. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

func NewEvent(eventType, userID string, data map[string]interface{}) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
