// Package bus carries the process-wide "user data updated" signal between
// otherwise independent page sessions: after any progress-affecting action
// the publishing session notifies every subscribed surface so it can
// refetch its own server-derived state.
//
// The bus is a single unnamed channel, injected from application wiring
// rather than hanging off a global. Fan-out is synchronous, at-most-once
// and unordered; a publish with no subscribers is simply lost.
package bus

import "sync"

// Handler is invoked once per publish. Handlers receive no payload: the
// event only means "refetch what you depend on".
type Handler func()

// Bus is a zero-payload publish/subscribe channel.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
}

// Subscription identifies one registered handler. Unsubscribe must be
// called on the owning component's teardown so a dead surface is never
// notified.
type Subscription struct {
	bus *Bus
	id  int
}

func New() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler for every future publish.
func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[id] = h
	return &Subscription{bus: b, id: id}
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.bus = nil
}

// Publish invokes every currently-registered handler exactly once, in
// unspecified order, then returns. No buffering: subscribers registered
// after Publish returns never see the event.
func (b *Bus) Publish() {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
