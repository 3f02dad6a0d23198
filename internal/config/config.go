// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig holds service identity and listener settings.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
}

// UpstreamConfig holds settings for the generative-voice upstream.
type UpstreamConfig struct {
	Provider     string // "gemini" or "mock"
	Host         string
	DefaultModel string
	APIKey       string
}

// SessionLimits defines safety guardrails for relay sessions.
// These prevent unbounded resource usage per connection.
type SessionLimits struct {
	MaxDuration   time.Duration // Max session lifetime
	MaxAudioBytes int64         // Max forwarded client audio per session
}

// KafkaConfig holds event publishing configuration.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicStarted string
	TopicEnded   string
	Principal    string
}

// ObservabilityConfig holds logging and metrics configuration.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

// Config is the full service configuration, read once at startup.
type Config struct {
	Service       ServiceConfig
	Upstream      UpstreamConfig
	SessionLimits SessionLimits
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// DefaultSessionLimits returns sensible default limits.
func DefaultSessionLimits() SessionLimits {
	return SessionLimits{
		MaxDuration:   30 * time.Minute,  // long enough for a full voice conversation
		MaxAudioBytes: 100 * 1024 * 1024, // 100MB (~55 minutes at 16kHz 16-bit mono)
	}
}

// Load reads configuration from the environment.
// Absence of the upstream API key is not fatal here; it is enforced
// per-session only when the client also fails to supply one.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-voice-relay")
	defaults := DefaultSessionLimits()

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			Provider:     envOrDefault("UPSTREAM_PROVIDER", "gemini"),
			Host:         envOrDefault("UPSTREAM_HOST", "generativelanguage.googleapis.com"),
			DefaultModel: envOrDefault("UPSTREAM_DEFAULT_MODEL", "gemini-2.0-flash-exp"),
			APIKey:       os.Getenv("GEMINI_API_KEY"),
		},
		SessionLimits: SessionLimits{
			MaxDuration:   envOrDefaultDuration("SESSION_MAX_DURATION", defaults.MaxDuration),
			MaxAudioBytes: envOrDefaultInt64("SESSION_MAX_AUDIO_BYTES", defaults.MaxAudioBytes),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envOrDefaultList("KAFKA_BROKERS", nil),
			TopicStarted: envOrDefault("KAFKA_TOPIC_SESSION_STARTED", "voice.session.started"),
			TopicEnded:   envOrDefault("KAFKA_TOPIC_SESSION_ENDED", "voice.session.ended"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

func envOrDefaultInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
