// Package models defines the data structures for session lifecycle events.
package models

// SessionStarted is emitted when a relay session finishes upstream
// negotiation and enters the relaying phase.
type SessionStarted struct {
	EventType  string `json:"eventType"`
	SessionID  string `json:"sessionId"`
	Model      string `json:"model"`
	Endpoint   string `json:"endpoint"`
	RemoteAddr string `json:"remoteAddr"`
	Timestamp  int64  `json:"timestamp"`
}

// SessionEnded is emitted when a relay session terminates, from any phase.
type SessionEnded struct {
	EventType      string `json:"eventType"`
	SessionID      string `json:"sessionId"`
	Model          string `json:"model"`
	Endpoint       string `json:"endpoint,omitempty"`
	CloseCode      int    `json:"closeCode"`
	CloseReason    string `json:"closeReason,omitempty"`
	ClientFrames   int64  `json:"clientFrames"`
	UpstreamFrames int64  `json:"upstreamFrames"`
	ClientBytes    int64  `json:"clientBytes"`
	UpstreamBytes  int64  `json:"upstreamBytes"`
	DurationMs     int64  `json:"durationMs"`
	Timestamp      int64  `json:"timestamp"`
}
