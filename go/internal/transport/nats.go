package transport

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for the NATS channel.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "room.<roomID>"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSChannel carries topic events over a NATS bus, one subject per topic
// under a room prefix. Used when a room is bridged over the internal bus
// instead of a direct websocket.
type NATSChannel struct {
	nc     *nats.Conn
	config NATSConfig

	reg *registry

	mu   sync.Mutex
	subs []*nats.Subscription
}

// DialNATS connects to the bus and returns a channel scoped to the
// configured subject prefix.
func DialNATS(config NATSConfig) (*NATSChannel, error) {
	if config.SubjectPrefix == "" {
		return nil, fmt.Errorf("nats channel: subject prefix is required")
	}

	ch := &NATSChannel{config: config, reg: newRegistry()}

	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			reason := ""
			if err != nil {
				reason = err.Error()
			}
			log.Error().Err(err).Msg("NATS disconnected")
			ch.reg.dispatchStatus(Status{Connected: false, Reason: reason})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			ch.reg.dispatchStatus(Status{Connected: true})
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	ch.nc = nc

	log.Info().
		Str("url", config.URL).
		Str("prefix", config.SubjectPrefix).
		Msg("NATS channel established")

	ch.reg.dispatchStatus(Status{Connected: true})
	return ch, nil
}

func (c *NATSChannel) subject(topic string) string {
	return c.config.SubjectPrefix + "." + topic
}

// Send publishes the payload on the topic's subject.
func (c *NATSChannel) Send(topic string, payload any) error {
	data := []byte(nil)
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", topic, err)
		}
	}
	if err := c.nc.Publish(c.subject(topic), data); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a topic handler backed by a NATS subscription.
// Per-subject delivery order is preserved by the bus.
func (c *NATSChannel) Subscribe(topic string, h Handler) func() {
	unsub := c.reg.subscribe(topic, h)

	c.mu.Lock()
	defer c.mu.Unlock()

	sub, err := c.nc.Subscribe(c.subject(topic), func(msg *nats.Msg) {
		c.reg.dispatch(topic, msg.Data)
	})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("NATS subscribe failed")
		return unsub
	}
	c.subs = append(c.subs, sub)

	return func() {
		unsub()
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("NATS unsubscribe failed")
		}
	}
}

// NotifyStatus registers a connectivity handler.
func (c *NATSChannel) NotifyStatus(h StatusHandler) func() {
	return c.reg.notifyStatus(h)
}

// Close drains subscriptions and closes the connection.
func (c *NATSChannel) Close() error {
	c.mu.Lock()
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()

	c.nc.Close()
	return nil
}
