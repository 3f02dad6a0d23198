// Package http wires the service's HTTP surface: health probes and the
// relay websocket endpoint.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ai-voice-relay-service/internal/app"
	"ai-voice-relay-service/internal/service/relay"
)

// NewRouter builds the main listener's routes.
func NewRouter(a *app.Application, relayHandler *relay.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/v1/liveness", livenessHandler(a))
	r.Get("/v1/readiness", readinessHandler(a))

	// The relay endpoint upgrades to a websocket; no timeout middleware
	// here, sessions are long-lived by design of the protocol.
	r.Handle("/v1/live", relayHandler)

	return r
}

func livenessHandler(a *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
		})
	}
}

func readinessHandler(a *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "ready",
			"uptimeSeconds": int64(time.Since(a.StartupTime).Seconds()),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
