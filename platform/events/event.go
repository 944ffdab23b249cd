// Package events carries the in-process publish/subscribe plumbing modules
// communicate through. Domain event definitions live in internal/events;
// this package knows nothing about what the events mean.
package events

import (
	"context"
	"time"
)

// Event is implemented by every published domain event.
type Event interface {
	// EventName identifies the event type; subscriptions key on it.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp shared by all events. Embed it and add
// the event's own payload fields.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of one registered type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to the handlers subscribed to their name.
type Bus interface {
	// Publish fans the event out without waiting for handlers.
	Publish(ctx context.Context, event Event)

	// PublishSync runs every handler before returning and reports the
	// first handler failure.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the named event type, matching
	// Event.EventName.
	Subscribe(eventName string, handler Handler)
}
