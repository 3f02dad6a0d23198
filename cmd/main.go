package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"ai-voice-relay-service/internal/app"
	"ai-voice-relay-service/internal/config"
	"ai-voice-relay-service/internal/events"
	relayhttp "ai-voice-relay-service/internal/http"
	"ai-voice-relay-service/internal/observability"
	"ai-voice-relay-service/internal/observability/logging"
	"ai-voice-relay-service/internal/service/relay"
	"ai-voice-relay-service/internal/service/upstream"
	"ai-voice-relay-service/internal/service/upstream/gemini"
	"ai-voice-relay-service/internal/service/upstream/mock"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local development convenience; in deployment the environment is
	// injected by the platform.
	_ = godotenv.Load()

	cfg := config.Load()

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Observability.LogLevel
	logCfg.Format = cfg.Observability.LogFormat
	logging.Init(logCfg)

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Application startup failed")
	}

	publisher := events.New(&events.Config{
		Brokers:      cfg.Kafka.Brokers,
		TopicStarted: cfg.Kafka.TopicStarted,
		TopicEnded:   cfg.Kafka.TopicEnded,
		Principal:    cfg.Kafka.Principal,
		Enabled:      cfg.Kafka.Enabled,
	})
	defer publisher.Close()

	var dialer upstream.Dialer
	switch cfg.Upstream.Provider {
	case "mock":
		log.Warn().Msg("Using the mock upstream provider; no real model is attached")
		dialer = mock.New()
	default:
		dialer = gemini.New()
	}
	resolver := upstream.NewResolver(dialer, cfg.Upstream.Host)

	relayHandler := relay.NewHandler(relay.HandlerConfig{
		DefaultModel: cfg.Upstream.DefaultModel,
		APIKey:       cfg.Upstream.APIKey,
		Principal:    cfg.Service.Principal,
		Limits: relay.Limits{
			MaxDuration:   cfg.SessionLimits.MaxDuration,
			MaxAudioBytes: cfg.SessionLimits.MaxAudioBytes,
		},
	}, resolver, publisher)

	obsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)
	obsServer.Start()

	server := &http.Server{
		Addr:    ":" + cfg.Service.HTTPPort,
		Handler: relayhttp.NewRouter(application, relayHandler),
		// No write timeout: relay sessions hold the connection open for
		// the lifetime of the conversation.
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Relay listener starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Relay listener failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Relay listener shutdown error")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown error")
	}
	application.Shutdown()
}
