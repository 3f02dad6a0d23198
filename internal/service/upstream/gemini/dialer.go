// Package gemini dials the Gemini Live websocket endpoints.
package gemini

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"ai-voice-relay-service/internal/service/upstream"
)

// apiKeyHeader carries the credential. Header-only: keys are never
// formatted into a URL where proxies and access logs could capture them.
const apiKeyHeader = "x-goog-api-key"

// Dialer implements upstream.Dialer against the live Gemini API.
type Dialer struct {
	ws *websocket.Dialer
}

// New creates a Dialer with a bounded handshake timeout.
func New() *Dialer {
	return &Dialer{
		ws: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Dial opens a websocket to one candidate endpoint.
func (d *Dialer) Dial(ctx context.Context, candidate upstream.Candidate, apiKey string) (upstream.Conn, error) {
	header := http.Header{}
	header.Set(apiKeyHeader, apiKey)

	conn, resp, err := d.ws.DialContext(ctx, candidate.URL, header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s: status %s", candidate.Name, resp.Status)
		}
		return nil, errors.Wrapf(err, "dial %s", candidate.Name)
	}

	return upstream.NewSocket(conn), nil
}
