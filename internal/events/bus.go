// Package events provides the in-process event bus connecting input
// backends (keyboard, file watcher) to the render and conversion loops.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(KeyPressedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so fan out through a
	// type switch.
	switch e := ev.(type) {
	case KeyPressedEvent:
		event.Publish(b.dispatcher, e)
	case SourceChangedEvent:
		event.Publish(b.dispatcher, e)
	case FrameProcessedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler function; the handler's parameter type
// selects which events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e KeyPressedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(KeyPressedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SourceChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FrameProcessedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
