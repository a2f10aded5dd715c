package events

import (
	"context"
	"errors"
	"sync"
)

// EventHandler consumes one authentication event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans login and gate events out to subscribers such as the audit log.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher delivers events on the publishing goroutine, so a login or
// gate rejection returns only after every subscriber has seen it.
type inMemoryDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a process-local dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{handlers: make(map[EventType][]EventHandler)}
}

// Publish runs every handler subscribed to event.Type. All handlers run even
// when some fail; the failures are joined.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribed := d.handlers[event.Type]
	d.mu.RUnlock()

	var errs []error
	for _, handle := range subscribed {
		if err := handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Copy on write: Publish iterates a snapshot without holding the lock.
	next := make([]EventHandler, 0, len(d.handlers[eventType])+1)
	next = append(next, d.handlers[eventType]...)
	d.handlers[eventType] = append(next, handler)
}
