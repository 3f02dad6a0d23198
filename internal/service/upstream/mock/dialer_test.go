package mock

import (
	"context"
	"testing"

	"github.com/gorilla/websocket"

	"ai-voice-relay-service/internal/service/upstream"
)

func TestDial_AlwaysOpens(t *testing.T) {
	d := New()

	conn, err := d.Dial(context.Background(), upstream.Candidate{Name: "v1beta-bidi"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn == nil {
		t.Fatal("expected a connection")
	}
	conn.Close()
}

func TestConn_SetupAck(t *testing.T) {
	c := newConn()
	defer c.Close()

	if err := c.WriteMessage(websocket.TextMessage, []byte(`{"setup":{"model":"models/m"}}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	mt, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Errorf("expected text message, got %d", mt)
	}
	if string(data) != `{"setupComplete":{}}` {
		t.Errorf("expected setupComplete ack, got %s", data)
	}
}

func TestConn_BinaryEcho(t *testing.T) {
	c := newConn()
	defer c.Close()

	sent := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := c.WriteMessage(websocket.BinaryMessage, sent); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	mt, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Errorf("expected binary echo, got message type %d", mt)
	}
	if string(data) != string(sent) {
		t.Errorf("expected byte-identical echo, got %v", data)
	}
}

func TestConn_ReadAfterClose(t *testing.T) {
	c := newConn()
	c.Close()

	_, _, err := c.ReadMessage()
	ce, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("expected CloseError, got %v", err)
	}
	if ce.Code != websocket.CloseNormalClosure {
		t.Errorf("expected normal closure, got %d", ce.Code)
	}
}

func TestConn_CloseStatusRecorded(t *testing.T) {
	c := newConn()
	defer c.Close()

	if err := c.WriteClose(1008, "limit exceeded"); err != nil {
		t.Fatalf("WriteClose failed: %v", err)
	}

	code, reason := c.CloseStatus()
	if code != 1008 || reason != "limit exceeded" {
		t.Errorf("expected (1008, limit exceeded), got (%d, %s)", code, reason)
	}
}
