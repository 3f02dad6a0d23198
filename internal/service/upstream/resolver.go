package upstream

import (
	"context"
	stderrors "errors"

	"github.com/rs/zerolog"

	"ai-voice-relay-service/internal/observability/logging"
	"ai-voice-relay-service/internal/observability/metrics"
)

// ErrNoUpstream is returned when every candidate endpoint failed to open.
var ErrNoUpstream = stderrors.New("no upstream available")

// Resolver negotiates an upstream connection by attempting candidate
// endpoints in order. Fallback applies only during this initial negotiation;
// once a connection is open, a later failure terminates the session.
type Resolver struct {
	dialer  Dialer
	host    string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewResolver creates a Resolver dialing candidates on the given host.
func NewResolver(dialer Dialer, host string) *Resolver {
	return &Resolver{
		dialer:  dialer,
		host:    host,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("upstream-resolver"),
	}
}

// Resolve attempts each candidate for the model in order and returns the
// first connection that opens. Each candidate is tried exactly once. A
// canceled context (client gone) aborts the remaining attempts.
func (r *Resolver) Resolve(ctx context.Context, model, apiKey string) (Conn, Candidate, error) {
	candidates := Candidates(r.host, model)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, Candidate{}, err
		}

		r.metrics.RecordNegotiationAttempt(candidate.Name)
		conn, err := r.dialer.Dial(ctx, candidate, apiKey)
		if err != nil {
			r.metrics.RecordNegotiationFailure(candidate.Name)
			r.log.Warn().
				Err(err).
				Str("endpoint", candidate.Name).
				Str("model", model).
				Msg("Upstream candidate failed, trying next")
			continue
		}

		r.log.Info().
			Str("endpoint", candidate.Name).
			Str("model", model).
			Bool("bidirectional", candidate.Bidirectional).
			Msg("Upstream connection established")
		return conn, candidate, nil
	}

	r.metrics.RecordNegotiationExhausted()
	return nil, Candidate{}, ErrNoUpstream
}
