package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcdev12/justone/go/internal/protocol"
)

var upgrader = websocket.Upgrader{}

// wsServer runs one handler per connection over an httptest server and
// returns the ws:// URL.
func wsServer(t *testing.T, handle func(conn *websocket.Conn)) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketChannel_DeliversIncomingEnvelopes(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		frame, _ := json.Marshal(protocol.Message{
			Topic: protocol.TopicState,
			Data:  json.RawMessage(`{"phase":2}`),
		})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			t.Errorf("server write: %v", err)
		}
		// Hold the connection open until the client is done.
		conn.ReadMessage()
	})

	ch, err := DialWebSocket(context.Background(), url, DefaultWebSocketConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	got := make(chan json.RawMessage, 1)
	ch.Subscribe(protocol.TopicState, func(data json.RawMessage) {
		got <- data
	})

	select {
	case data := <-got:
		var s protocol.Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			t.Fatal(err)
		}
		if s.Phase != protocol.PhaseHintWriting {
			t.Fatalf("want phase 2 delivered, got %d", s.Phase)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state delivery")
	}
}

func TestWebSocketChannel_SendReachesServerAsEnvelope(t *testing.T) {
	frames := make(chan []byte, 1)
	url := wsServer(t, func(conn *websocket.Conn) {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames <- frame
	})

	ch, err := DialWebSocket(context.Background(), url, DefaultWebSocketConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	if err := ch.Send(protocol.TopicInit, protocol.InitArgs{RoomID: "room-1"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case frame := <-frames:
		var msg protocol.Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Topic != protocol.TopicInit {
			t.Fatalf("want init envelope, got topic %q", msg.Topic)
		}
		var args protocol.InitArgs
		if err := json.Unmarshal(msg.Data, &args); err != nil {
			t.Fatal(err)
		}
		if args.RoomID != "room-1" {
			t.Fatalf("want room-1, got %q", args.RoomID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the server to read the frame")
	}
}

func TestWebSocketChannel_ServerCloseReportsDisconnectReason(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room deleted"))
	})

	ch, err := DialWebSocket(context.Background(), url, DefaultWebSocketConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ch.Close()

	statuses := make(chan Status, 1)
	ch.NotifyStatus(func(s Status) {
		if !s.Connected {
			statuses <- s
		}
	})

	select {
	case s := <-statuses:
		if s.Reason != "room deleted" {
			t.Fatalf("want close reason carried, got %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnect status")
	}
}
