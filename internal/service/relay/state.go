// Package relay accepts client websocket connections and pipes them to a
// negotiated upstream for the life of the session.
package relay

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a relay session.
type State int

const (
	// StateIdle - Accepted, credential resolved, upstream not yet attempted.
	StateIdle State = iota
	// StateNegotiating - Trying upstream candidates in order.
	StateNegotiating
	// StateRelaying - Upstream open, frames flowing both ways.
	StateRelaying
	// StateTerminated - Both sockets closed. Terminal state.
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateNegotiating:
		return "NEGOTIATING"
	case StateRelaying:
		return "RELAYING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal.
func (s State) IsTerminal() bool {
	return s == StateTerminated
}

// Errors for invalid state transitions.
var (
	ErrSessionTerminated = errors.New("session is terminated")
	ErrNotIdle           = errors.New("negotiation can only begin from idle")
	ErrNotNegotiating    = errors.New("relay can only begin from negotiating")
)

// Lifecycle manages the state machine for a single session.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	IDLE → NEGOTIATING → RELAYING → TERMINATED
//	  │         │            │
//	  │         └────────────┴── Terminate() ──→ from any state
//	  │
//	  └── no credential / client gone ──→ TERMINATED directly
//
// Rules:
//   - IDLE: can begin negotiation, can terminate
//   - NEGOTIATING: can begin relay (candidate opened), can terminate
//     (candidates exhausted or client gone)
//   - RELAYING: can only terminate
//   - TERMINATED: all operations are no-ops or return errors
type Lifecycle struct {
	mu        sync.RWMutex
	sessionId string
	state     State
}

// NewLifecycle creates a new session lifecycle in IDLE state.
func NewLifecycle(sessionId string) *Lifecycle {
	return &Lifecycle{
		sessionId: sessionId,
		state:     StateIdle,
	}
}

// SessionId returns the session ID.
func (l *Lifecycle) SessionId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionId
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// IsTerminated returns true if the session has reached its terminal state.
func (l *Lifecycle) IsTerminated() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.IsTerminal()
}

// BeginNegotiation transitions IDLE → NEGOTIATING.
func (l *Lifecycle) BeginNegotiation() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateIdle:
		l.state = StateNegotiating
		return nil
	case StateTerminated:
		return ErrSessionTerminated
	default:
		return ErrNotIdle
	}
}

// BeginRelay transitions NEGOTIATING → RELAYING.
func (l *Lifecycle) BeginRelay() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateNegotiating:
		l.state = StateRelaying
		return nil
	case StateTerminated:
		return ErrSessionTerminated
	default:
		return ErrNotNegotiating
	}
}

// Terminate transitions the session to TERMINATED from any state.
// Idempotent. Returns true on the first call, false if already terminal.
func (l *Lifecycle) Terminate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateTerminated
	return true
}
