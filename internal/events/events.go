// Package events publishes candidate lifecycle notifications.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	CandidateCreated   = "candidate.created"
	CandidateInvited   = "candidate.invited"
	CandidateCompleted = "candidate.completed"
)

// Event is the JSON body of a lifecycle notification.
type Event struct {
	Type        string         `json:"type"`
	CandidateID string         `json:"candidate_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// New returns an event stamped with the current UTC time.
func New(eventType, candidateID string, data map[string]any) Event {
	return Event{
		Type:        eventType,
		CandidateID: candidateID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
}

// RoutingKey is the topic routing key for the event.
func (e Event) RoutingKey() string {
	return "candidate." + e.CandidateID
}

// Publisher sends lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
