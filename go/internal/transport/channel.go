package transport

import (
	"encoding/json"
	"sync"
)

// Handler receives the raw payload of one topic event. Handlers for the same
// topic are invoked in arrival order; the adapter never reorders events
// within a topic.
type Handler func(data json.RawMessage)

// Status reports a connectivity transition of the underlying transport.
type Status struct {
	Connected bool
	Reason    string
}

// StatusHandler receives connect/disconnect notifications.
type StatusHandler func(s Status)

// Channel is the duplex capability the client core depends on. Sends are
// fire-and-forget; delivery guarantees (at-least-once, in-order per topic)
// come from the concrete adapter.
type Channel interface {
	// Send emits one topic event toward the server. A nil payload sends an
	// empty event.
	Send(topic string, payload any) error

	// Subscribe registers a handler for a topic and returns its
	// unsubscription.
	Subscribe(topic string, h Handler) (unsub func())

	// NotifyStatus registers a connectivity handler and returns its
	// unsubscription.
	NotifyStatus(h StatusHandler) (unsub func())

	// Close tears the transport down. Pending handlers are not invoked after
	// Close returns.
	Close() error
}

// registry is the shared topic→handler table used by every Channel adapter.
type registry struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
	status   map[int]StatusHandler
}

func newRegistry() *registry {
	return &registry{
		handlers: make(map[string]map[int]Handler),
		status:   make(map[int]StatusHandler),
	}
}

func (r *registry) subscribe(topic string, h Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	if r.handlers[topic] == nil {
		r.handlers[topic] = make(map[int]Handler)
	}
	r.handlers[topic][id] = h

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.handlers[topic], id)
		if len(r.handlers[topic]) == 0 {
			delete(r.handlers, topic)
		}
	}
}

func (r *registry) notifyStatus(h StatusHandler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.status[id] = h

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.status, id)
	}
}

// dispatch invokes every handler registered for the topic, synchronously, in
// the caller's goroutine. Adapters call it from a single reader goroutine so
// per-topic ordering is preserved.
func (r *registry) dispatch(topic string, data json.RawMessage) {
	r.mu.RLock()
	hs := make([]Handler, 0, len(r.handlers[topic]))
	for _, h := range r.handlers[topic] {
		hs = append(hs, h)
	}
	r.mu.RUnlock()

	for _, h := range hs {
		h(data)
	}
}

func (r *registry) dispatchStatus(s Status) {
	r.mu.RLock()
	hs := make([]StatusHandler, 0, len(r.status))
	for _, h := range r.status {
		hs = append(hs, h)
	}
	r.mu.RUnlock()

	for _, h := range hs {
		h(s)
	}
}
