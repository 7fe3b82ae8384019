// Package events is a small synchronous publish/subscribe channel. It
// decouples cart mutation call sites from display surfaces such as the
// item-count badge.
package events

import "sync"

// Event is anything published on the bus, keyed by topic.
type Event interface {
	Topic() string
}

// CartChanged is published after every successful cart mutation with
// the new authoritative item count.
type CartChanged struct {
	ItemCount int
}

// Topic implements Event.
func (CartChanged) Topic() string { return "cart.changed" }

// AuthChanged is published on every authentication transition.
type AuthChanged struct {
	Authenticated bool
}

// Topic implements Event.
func (AuthChanged) Topic() string { return "auth.changed" }

// Handler receives published events for one topic.
type Handler func(Event)

// Bus dispatches events synchronously, in subscription order. Safe for
// concurrent use.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

// Publish delivers the event to every handler of its topic before
// returning.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.subs[e.Topic()]...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(e)
	}
}
