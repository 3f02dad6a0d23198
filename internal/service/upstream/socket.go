package upstream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// closeWriteTimeout bounds the control-frame write when tearing down.
const closeWriteTimeout = time.Second

// Socket adapts a gorilla websocket connection to Conn. Writes are
// serialized; gorilla allows only one concurrent writer per connection.
type Socket struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewSocket wraps a gorilla connection.
func NewSocket(ws *websocket.Conn) *Socket {
	return &Socket{ws: ws}
}

func (s *Socket) ReadMessage() (int, []byte, error) {
	return s.ws.ReadMessage()
}

func (s *Socket) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.WriteMessage(messageType, data)
}

func (s *Socket) WriteClose(code int, reason string) error {
	// WriteControl is safe to call concurrently with WriteMessage.
	msg := websocket.FormatCloseMessage(code, reason)
	return s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
}

func (s *Socket) Close() error {
	return s.ws.Close()
}
