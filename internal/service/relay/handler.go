package relay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ai-voice-relay-service/internal/events"
	"ai-voice-relay-service/internal/observability/logging"
	"ai-voice-relay-service/internal/observability/metrics"
	"ai-voice-relay-service/internal/schema"
	"ai-voice-relay-service/internal/service/translate"
	"ai-voice-relay-service/internal/service/upstream"
)

// HandlerConfig carries the per-deployment settings for the relay endpoint.
type HandlerConfig struct {
	// DefaultModel is used when the client does not name one.
	DefaultModel string
	// APIKey is the service-held upstream credential. A client may override
	// it per session via the key query parameter.
	APIKey string
	// Principal namespaces generated session ids.
	Principal string
	Limits    Limits
}

// Handler accepts client websocket connections and runs one Session per
// connection until it terminates.
type Handler struct {
	cfg       HandlerConfig
	resolver  *upstream.Resolver
	publisher *events.Publisher
	validator *schema.Validator
	metrics   *metrics.Metrics
	ids       *Generator
	upgrader  websocket.Upgrader
	log       zerolog.Logger
}

func NewHandler(cfg HandlerConfig, resolver *upstream.Resolver, publisher *events.Publisher) *Handler {
	return &Handler{
		cfg:       cfg,
		resolver:  resolver,
		publisher: publisher,
		validator: schema.New(),
		metrics:   metrics.DefaultMetrics,
		ids:       NewGenerator(cfg.Principal),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The relay fronts browser clients from arbitrary origins;
			// authorization is the credential, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logging.WithComponent("relay"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	if model == "" {
		model = h.cfg.DefaultModel
	}
	apiKey := r.URL.Query().Get("key")
	if apiKey == "" {
		apiKey = h.cfg.APIKey
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Str("remoteAddr", r.RemoteAddr).Msg("Failed to upgrade connection")
		return
	}
	client := upstream.NewSocket(ws)

	// Credential gate: without a key no upstream dial is attempted and the
	// client is turned away immediately.
	if apiKey == "" {
		h.log.Warn().Str("remoteAddr", r.RemoteAddr).Msg("Rejecting session without credential")
		h.metrics.RecordSessionRejected("missing_credential")
		client.WriteClose(websocket.ClosePolicyViolation, "missing api key")
		client.Close()
		return
	}

	id := h.ids.Next()
	h.log.Info().
		Str("sessionId", id).
		Str("model", model).
		Str("remoteAddr", r.RemoteAddr).
		Msg("Client connection accepted")

	sess := &Session{
		id:         id,
		model:      model,
		apiKey:     apiKey,
		remoteAddr: r.RemoteAddr,
		client:     client,
		resolver:   h.resolver,
		translator: translate.New(model),
		publisher:  h.publisher,
		validator:  h.validator,
		metrics:    h.metrics,
		lifecycle:  NewLifecycle(id),
		limits:     h.cfg.Limits,
		log:        logging.WithSession(id, model),
	}
	sess.Run(r.Context())
}
