package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t,
		"SERVICE_PRINCIPAL", "HTTP_PORT",
		"UPSTREAM_PROVIDER", "UPSTREAM_HOST", "UPSTREAM_DEFAULT_MODEL", "GEMINI_API_KEY",
		"SESSION_MAX_DURATION", "SESSION_MAX_AUDIO_BYTES",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_PRINCIPAL",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_PORT",
	)

	cfg := Load()

	if cfg.Service.Principal != "svc-voice-relay" {
		t.Errorf("expected default principal 'svc-voice-relay', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}

	if cfg.Upstream.Provider != "gemini" {
		t.Errorf("expected default provider 'gemini', got %s", cfg.Upstream.Provider)
	}
	if cfg.Upstream.Host != "generativelanguage.googleapis.com" {
		t.Errorf("expected default host, got %s", cfg.Upstream.Host)
	}
	if cfg.Upstream.DefaultModel != "gemini-2.0-flash-exp" {
		t.Errorf("expected default model, got %s", cfg.Upstream.DefaultModel)
	}
	if cfg.Upstream.APIKey != "" {
		t.Errorf("expected empty API key, got %s", cfg.Upstream.APIKey)
	}

	if cfg.SessionLimits.MaxDuration != 30*time.Minute {
		t.Errorf("expected default max duration 30m, got %v", cfg.SessionLimits.MaxDuration)
	}
	if cfg.SessionLimits.MaxAudioBytes != 100*1024*1024 {
		t.Errorf("expected default max audio bytes 100MB, got %d", cfg.SessionLimits.MaxAudioBytes)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicStarted != "voice.session.started" {
		t.Errorf("expected default started topic, got %s", cfg.Kafka.TopicStarted)
	}
	if cfg.Kafka.TopicEnded != "voice.session.ended" {
		t.Errorf("expected default ended topic, got %s", cfg.Kafka.TopicEnded)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsPort != "9090" {
		t.Errorf("expected default metrics port '9090', got %s", cfg.Observability.MetricsPort)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("UPSTREAM_PROVIDER", "mock")
	os.Setenv("UPSTREAM_DEFAULT_MODEL", "gemini-2.5-flash")
	os.Setenv("GEMINI_API_KEY", "test-key")
	os.Setenv("SESSION_MAX_DURATION", "10m")
	os.Setenv("SESSION_MAX_AUDIO_BYTES", "1048576")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	os.Setenv("LOG_LEVEL", "debug")

	defer clearEnv(t,
		"SERVICE_PRINCIPAL", "HTTP_PORT", "UPSTREAM_PROVIDER", "UPSTREAM_DEFAULT_MODEL",
		"GEMINI_API_KEY", "SESSION_MAX_DURATION", "SESSION_MAX_AUDIO_BYTES",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "LOG_LEVEL",
	)

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Upstream.Provider != "mock" {
		t.Errorf("expected provider 'mock', got %s", cfg.Upstream.Provider)
	}
	if cfg.Upstream.DefaultModel != "gemini-2.5-flash" {
		t.Errorf("expected model 'gemini-2.5-flash', got %s", cfg.Upstream.DefaultModel)
	}
	if cfg.Upstream.APIKey != "test-key" {
		t.Errorf("expected API key 'test-key', got %s", cfg.Upstream.APIKey)
	}
	if cfg.SessionLimits.MaxDuration != 10*time.Minute {
		t.Errorf("expected max duration 10m, got %v", cfg.SessionLimits.MaxDuration)
	}
	if cfg.SessionLimits.MaxAudioBytes != 1048576 {
		t.Errorf("expected max audio bytes 1048576, got %d", cfg.SessionLimits.MaxAudioBytes)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker1:9092" || cfg.Kafka.Brokers[1] != "broker2:9092" {
		t.Errorf("expected two trimmed brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("SESSION_MAX_DURATION", "invalid")
	os.Setenv("SESSION_MAX_AUDIO_BYTES", "not-a-number")
	os.Setenv("KAFKA_ENABLED", "invalid")

	defer clearEnv(t, "SESSION_MAX_DURATION", "SESSION_MAX_AUDIO_BYTES", "KAFKA_ENABLED")

	cfg := Load()

	if cfg.SessionLimits.MaxDuration != 30*time.Minute {
		t.Errorf("expected default max duration on invalid input, got %v", cfg.SessionLimits.MaxDuration)
	}
	if cfg.SessionLimits.MaxAudioBytes != 100*1024*1024 {
		t.Errorf("expected default max audio bytes on invalid input, got %d", cfg.SessionLimits.MaxAudioBytes)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled on invalid input")
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}

func TestEnvOrDefaultList(t *testing.T) {
	key := "TEST_LIST_VAR"

	os.Setenv(key, " a:9092 ,, b:9092 ")
	defer os.Unsetenv(key)

	got := envOrDefaultList(key, nil)
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Errorf("expected [a:9092 b:9092], got %v", got)
	}

	os.Unsetenv(key)
	if got := envOrDefaultList(key, []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Errorf("expected fallback default, got %v", got)
	}
}
