package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/justone/go/internal/protocol"
)

// WebSocketConfig holds configuration for the WebSocket channel.
type WebSocketConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	SendBufferSize  int
	RequestHeader   http.Header
}

// DefaultWebSocketConfig returns default WebSocket configuration.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBufferSize: 64,
	}
}

// WebSocketChannel carries topic events over a single gorilla/websocket
// connection. One reader goroutine dispatches incoming events in arrival
// order; one writer goroutine serializes outgoing frames and protocol pings.
type WebSocketChannel struct {
	id     string
	conn   *websocket.Conn
	config WebSocketConfig

	reg  *registry
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// DialWebSocket connects to the server and starts the channel pumps.
func DialWebSocket(ctx context.Context, url string, config WebSocketConfig) (*WebSocketChannel, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: config.WriteTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, config.RequestHeader)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}

	ch := &WebSocketChannel{
		id:     uuid.New().String(),
		conn:   conn,
		config: config,
		reg:    newRegistry(),
		send:   make(chan []byte, config.SendBufferSize),
		done:   make(chan struct{}),
	}

	go ch.writePump()
	go ch.readPump()

	log.Info().
		Str("connection_id", ch.id).
		Str("url", url).
		Msg("websocket channel established")

	ch.reg.dispatchStatus(Status{Connected: true})
	return ch, nil
}

// Send marshals the payload into a topic envelope and queues it for the
// writer. Sends are fire-and-forget; a full queue drops the frame.
func (c *WebSocketChannel) Send(topic string, payload any) error {
	msg := protocol.Message{Topic: topic}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", topic, err)
		}
		msg.Data = data
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", topic, err)
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return fmt.Errorf("send %s: channel closed", topic)
	default:
		log.Warn().
			Str("connection_id", c.id).
			Str("topic", topic).
			Msg("send buffer full, dropping frame")
		return nil
	}
}

// Subscribe registers a topic handler.
func (c *WebSocketChannel) Subscribe(topic string, h Handler) func() {
	return c.reg.subscribe(topic, h)
}

// NotifyStatus registers a connectivity handler.
func (c *WebSocketChannel) NotifyStatus(h StatusHandler) func() {
	return c.reg.notifyStatus(h)
}

// Close shuts the channel down. Idempotent.
func (c *WebSocketChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

// writePump serializes outgoing frames and keeps the connection alive with
// protocol-level pings.
func (c *WebSocketChannel) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump decodes incoming envelopes and dispatches them in arrival order.
// On read failure it reports a disconnect with the close reason, if any.
func (c *WebSocketChannel) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			reason := ""
			if closeErr, ok := err.(*websocket.CloseError); ok {
				reason = closeErr.Text
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("unexpected websocket close")
			}
			c.reg.dispatchStatus(Status{Connected: false, Reason: reason})
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		var msg protocol.Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", c.id).
				Msg("dropping malformed frame")
			continue
		}

		c.reg.dispatch(msg.Topic, msg.Data)
	}
}
