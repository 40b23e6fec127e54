package websocket_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/pitchside/internal/api/websocket"
	"github.com/fortuna/pitchside/internal/notify"
	gws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type received struct {
	Type    string `json:"type"`
	Payload struct {
		ID       string `json:"id"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
		Code     string `json:"code"`
	} `json:"payload"`
}

func startHub(t *testing.T) (*websocket.Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(websocket.NewHandler(ctx, hub, nil, zap.NewNop()))
	t.Cleanup(srv.Close)

	return hub, srv
}

func dial(t *testing.T, hub *websocket.Hub, srv *httptest.Server, want int) *gws.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readMessage(t *testing.T, conn *gws.Conn) received {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHub_DeliversToasts(t *testing.T) {
	hub, srv := startHub(t)
	first := dial(t, hub, srv, 1)
	second := dial(t, hub, srv, 2)

	toast := notify.Toast{ID: "t-1", Severity: notify.SeveritySuccess, Message: "Análise concluída com sucesso"}
	if err := hub.Deliver(context.Background(), toast); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, conn := range []*gws.Conn{first, second} {
		msg := readMessage(t, conn)
		if msg.Type != websocket.MessageTypeToast {
			t.Errorf("expected type toast, got %s", msg.Type)
		}
		if msg.Payload.ID != "t-1" || msg.Payload.Message != toast.Message {
			t.Errorf("unexpected payload %+v", msg.Payload)
		}
	}
}

func TestHub_SeverityFilter(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, hub, srv, 1)

	err := conn.WriteJSON(map[string]interface{}{
		"type":    websocket.MessageTypeSubscribe,
		"payload": map[string]interface{}{"severities": []string{"error"}},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	// A heartbeat round trip guarantees the subscribe was processed.
	if err := conn.WriteJSON(map[string]string{"type": websocket.MessageTypeHeartbeat}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != websocket.MessageTypeHeartbeat {
		t.Fatalf("expected heartbeat, got %s", msg.Type)
	}

	_ = hub.Deliver(context.Background(), notify.Toast{ID: "info", Severity: notify.SeverityInfo, Message: "ignored"})
	_ = hub.Deliver(context.Background(), notify.Toast{ID: "err", Severity: notify.SeverityError, Message: "Erro"})

	msg := readMessage(t, conn)
	if msg.Payload.ID != "err" {
		t.Errorf("expected only the error toast, got %+v", msg.Payload)
	}
}

func TestHub_UnknownMessageType(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, hub, srv, 1)

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != websocket.MessageTypeError || msg.Payload.Code != "unknown_message_type" {
		t.Errorf("expected unknown_message_type error, got %+v", msg)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, hub, srv, 1)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected client to be unregistered, got %d", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_DeliverWithoutClients(t *testing.T) {
	hub, _ := startHub(t)

	if err := hub.Deliver(context.Background(), notify.Toast{ID: "x"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
