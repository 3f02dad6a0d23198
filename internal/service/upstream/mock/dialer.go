// Package mock provides an in-memory upstream for keyless local development
// and tests. It acknowledges setup and echoes audio frames back.
package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"ai-voice-relay-service/internal/service/upstream"
)

// Dialer implements upstream.Dialer without any network.
type Dialer struct{}

// New creates a mock dialer. Every candidate "opens" on the first attempt.
func New() *Dialer {
	return &Dialer{}
}

// Dial returns a loopback connection.
func (d *Dialer) Dial(ctx context.Context, candidate upstream.Candidate, apiKey string) (upstream.Conn, error) {
	return newConn(), nil
}

type frame struct {
	messageType int
	data        []byte
}

// Conn is a loopback upstream connection. Frames written to it produce
// scripted responses on the read side.
type Conn struct {
	out       chan frame
	done      chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	closeCode   int
	closeReason string
}

func newConn() *Conn {
	return &Conn{
		out:  make(chan frame, 64),
		done: make(chan struct{}),
	}
}

func (c *Conn) ReadMessage() (int, []byte, error) {
	select {
	case f := <-c.out:
		return f.messageType, f.data, nil
	case <-c.done:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "mock upstream closed"}
	}
}

func (c *Conn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.done:
		return &websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "mock upstream closed"}
	default:
	}

	if messageType == websocket.BinaryMessage {
		// Echo audio straight back.
		echoed := make([]byte, len(data))
		copy(echoed, data)
		c.respond(frame{messageType: websocket.BinaryMessage, data: echoed})
		return nil
	}

	var msg map[string]json.RawMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil
	}

	switch {
	case hasKey(msg, "setup"):
		c.respond(frame{messageType: websocket.TextMessage, data: []byte(`{"setupComplete":{}}`)})
	case hasKey(msg, "clientContent"), hasKey(msg, "clientEvent"):
		c.respond(frame{messageType: websocket.TextMessage, data: []byte(`{"serverContent":{"turnComplete":true}}`)})
	}
	return nil
}

func (c *Conn) WriteClose(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCode = code
	c.closeReason = reason
	return nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// CloseStatus reports the close code and reason the relay sent, for tests.
func (c *Conn) CloseStatus() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCode, c.closeReason
}

func (c *Conn) respond(f frame) {
	select {
	case c.out <- f:
	case <-c.done:
	}
}

func hasKey(msg map[string]json.RawMessage, key string) bool {
	_, ok := msg[key]
	return ok
}
