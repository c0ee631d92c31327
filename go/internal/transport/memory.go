package transport

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Sent records one outgoing event for inspection.
type Sent struct {
	Topic string
	Data  json.RawMessage
}

// MemoryChannel is an in-process Channel used by tests and local wiring.
// Deliver and EmitStatus invoke handlers synchronously in the caller's
// goroutine, matching the single-reader dispatch of the real adapters.
type MemoryChannel struct {
	reg *registry

	mu     sync.Mutex
	sent   []Sent
	closed bool
}

// NewMemoryChannel creates an in-process channel.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{reg: newRegistry()}
}

// Send records the outgoing event.
func (c *MemoryChannel) Send(topic string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("send %s: channel closed", topic)
	}

	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", topic, err)
		}
		data = b
	}
	c.sent = append(c.sent, Sent{Topic: topic, Data: data})
	return nil
}

// Subscribe registers a topic handler.
func (c *MemoryChannel) Subscribe(topic string, h Handler) func() {
	return c.reg.subscribe(topic, h)
}

// NotifyStatus registers a connectivity handler.
func (c *MemoryChannel) NotifyStatus(h StatusHandler) func() {
	return c.reg.notifyStatus(h)
}

// Close marks the channel closed; further sends fail.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Deliver simulates one incoming server event.
func (c *MemoryChannel) Deliver(topic string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", topic, err)
		}
		data = b
	}
	c.reg.dispatch(topic, data)
	return nil
}

// EmitStatus simulates a connectivity transition.
func (c *MemoryChannel) EmitStatus(s Status) {
	c.reg.dispatchStatus(s)
}

// SentEvents returns a copy of everything sent so far.
func (c *MemoryChannel) SentEvents() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sent, len(c.sent))
	copy(out, c.sent)
	return out
}

// SentOn returns the events sent on one topic.
func (c *MemoryChannel) SentOn(topic string) []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Sent
	for _, s := range c.sent {
		if s.Topic == topic {
			out = append(out, s)
		}
	}
	return out
}
