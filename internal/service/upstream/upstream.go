// Package upstream defines the interface to generative-voice providers and
// the ordered candidate negotiation over their endpoint variants.
package upstream

import (
	"context"
	"fmt"
)

// Conn is the minimal socket surface the relay needs. Both legs of a relay
// session (client and upstream) are driven through this interface so the
// negotiation and forwarding logic can run against fakes.
type Conn interface {
	// ReadMessage returns the next frame. The message type follows
	// RFC 6455 opcodes (1 text, 2 binary).
	ReadMessage() (messageType int, data []byte, err error)

	// WriteMessage sends one frame. Safe for concurrent use.
	WriteMessage(messageType int, data []byte) error

	// WriteClose sends a close frame with the given status code and reason.
	WriteClose(code int, reason string) error

	// Close tears down the underlying transport.
	Close() error
}

// Dialer opens a connection to one upstream candidate. The credential goes
// into the x-goog-api-key request header, never into the URL.
type Dialer interface {
	Dial(ctx context.Context, candidate Candidate, apiKey string) (Conn, error)
}

// Candidate is one upstream endpoint shape. The provider exposes the realtime
// capability under several evolving, version-specific paths; candidates are
// tried strictly in the order Candidates returns them.
type Candidate struct {
	// Name identifies the candidate in logs and metrics.
	Name string

	// URL is the websocket endpoint. Model-scoped for the connect/live
	// variants, model-free for the bidirectional protocol path.
	URL string

	// Bidirectional marks the richer envelope format: client control
	// messages must be translated into setup/clientContent/clientEvent
	// envelopes before forwarding.
	Bidirectional bool
}

// Candidates returns the endpoint shapes for one host and model, in
// negotiation order. First open wins.
func Candidates(host, model string) []Candidate {
	base := "wss://" + host
	return []Candidate{
		{
			Name:          "v1beta-bidi",
			URL:           base + "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent",
			Bidirectional: true,
		},
		{
			Name: "v1beta-connect",
			URL:  fmt.Sprintf("%s/v1beta/models/%s:connect", base, model),
		},
		{
			Name: "v1beta-live",
			URL:  fmt.Sprintf("%s/v1beta/models/%s:live", base, model),
		},
		{
			Name: "v1alpha-connect",
			URL:  fmt.Sprintf("%s/v1alpha/models/%s:connect", base, model),
		},
		{
			Name: "v1alpha-live",
			URL:  fmt.Sprintf("%s/v1alpha/models/%s:live", base, model),
		},
	}
}
