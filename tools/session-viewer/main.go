// Session Viewer - Real-time relay session lifecycle display
// Consumes from Kafka topics and displays via WebSocket to browser
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
)

// SessionEvent represents a session lifecycle message from Kafka
type SessionEvent struct {
	EventType      string `json:"eventType"`
	SessionID      string `json:"sessionId"`
	Model          string `json:"model"`
	Endpoint       string `json:"endpoint,omitempty"`
	RemoteAddr     string `json:"remoteAddr,omitempty"`
	CloseCode      int    `json:"closeCode,omitempty"`
	CloseReason    string `json:"closeReason,omitempty"`
	ClientFrames   int64  `json:"clientFrames,omitempty"`
	UpstreamFrames int64  `json:"upstreamFrames,omitempty"`
	ClientBytes    int64  `json:"clientBytes,omitempty"`
	UpstreamBytes  int64  `json:"upstreamBytes,omitempty"`
	DurationMs     int64  `json:"durationMs,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// Hub manages WebSocket connections
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan SessionEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan SessionEvent, 100),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			log.Printf("Client connected. Total: %d", len(h.clients))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			log.Printf("Client disconnected. Total: %d", len(h.clients))

		case event := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				err := conn.WriteJSON(event)
				if err != nil {
					log.Printf("Write error: %v", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
}

func wsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}
		hub.register <- conn

		// Keep connection alive, handle disconnects
		go func() {
			defer func() {
				hub.unregister <- conn
			}()
			for {
				_, _, err := conn.ReadMessage()
				if err != nil {
					break
				}
			}
		}()
	}
}

func consumeKafka(ctx context.Context, hub *Hub, brokers, topic string) {
	// Use partition reader without consumer group (works better through port-forward)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   strings.Split(brokers, ","),
		Topic:     topic,
		Partition: 0, // Read from partition 0 only (simplest for demo)
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	// Start from the latest offset (only show new messages)
	reader.SetOffsetAt(ctx, time.Now().Add(-1*time.Hour)) // Last hour of messages

	log.Printf("Consuming from Kafka topic: %s partition 0 (last hour)", topic)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Kafka read error on %s: %v", topic, err)
				time.Sleep(time.Second)
				continue
			}

			var event SessionEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("JSON unmarshal error: %v", err)
				continue
			}

			log.Printf("Received %s: session=%s endpoint=%s", event.EventType, event.SessionID, event.Endpoint)
			hub.broadcast <- event
		}
	}
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<title>Session Viewer</title>
<style>
  body { font-family: monospace; background: #1e1e1e; color: #d4d4d4; margin: 2em; }
  h1 { color: #569cd6; }
  .started { color: #6a9955; }
  .ended { color: #ce9178; }
  table { border-collapse: collapse; width: 100%; }
  td, th { border-bottom: 1px solid #333; padding: 4px 10px; text-align: left; }
</style>
</head>
<body>
<h1>Relay Sessions</h1>
<table id="events">
  <tr><th>Time</th><th>Event</th><th>Session</th><th>Model</th><th>Endpoint</th><th>Detail</th></tr>
</table>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (msg) => {
  const e = JSON.parse(msg.data);
  const row = document.getElementById("events").insertRow(1);
  const kind = e.eventType.endsWith("started") ? "started" : "ended";
  row.className = kind;
  let detail = "";
  if (kind === "ended") {
    detail = "close=" + e.closeCode + " frames=" + (e.clientFrames || 0) + "/" + (e.upstreamFrames || 0) +
             " duration=" + ((e.durationMs || 0) / 1000).toFixed(1) + "s";
    if (e.closeReason) detail += " (" + e.closeReason + ")";
  } else {
    detail = e.remoteAddr || "";
  }
  row.innerHTML = "<td>" + new Date(e.timestamp).toLocaleTimeString() + "</td>" +
    "<td>" + e.eventType + "</td><td>" + e.sessionId + "</td><td>" + e.model + "</td>" +
    "<td>" + (e.endpoint || "") + "</td><td>" + detail + "</td>";
};
</script>
</body>
</html>`

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicStarted := flag.String("topic-started", "voice.session.started", "Session started topic")
	topicEnded := flag.String("topic-ended", "voice.session.ended", "Session ended topic")
	flag.Parse()

	hub := newHub()
	go hub.run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Kafka consumers
	go consumeKafka(ctx, hub, *brokers, *topicStarted)
	go consumeKafka(ctx, hub, *brokers, *topicEnded)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexPage))
	})

	// WebSocket endpoint
	http.HandleFunc("/ws", wsHandler(hub))

	log.Printf("Session Viewer starting on http://localhost:%s", *port)
	log.Printf("   Kafka brokers: %s", *brokers)
	log.Printf("   Topics: %s, %s", *topicStarted, *topicEnded)

	if err := http.ListenAndServe(":"+*port, nil); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
