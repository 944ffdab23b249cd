package events

import (
	"context"
	"sync"

	"meeting_assistant_backend/platform/logger"
)

// InMemoryBus is a simple in-process Bus implementation. Handlers for the
// same event run sequentially; Publish detaches from the caller's goroutine.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to its handlers on a separate goroutine.
// Handler errors are logged, not surfaced to the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	go func() {
		if err := b.PublishSync(context.WithoutCancel(ctx), event); err != nil {
			b.log.Error("event handler failed",
				"event", event.EventName(),
				"error", err.Error(),
			)
		}
	}()
}

// PublishSync dispatches the event and waits for all handlers to complete.
// The first handler error aborts the remaining handlers.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

var _ Bus = (*InMemoryBus)(nil)
