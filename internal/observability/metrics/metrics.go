// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_voice_relay"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal    prometheus.Counter
	SessionsActive   prometheus.Gauge
	SessionsSuccess  prometheus.Counter
	SessionsFailed   prometheus.Counter
	SessionsRejected *prometheus.CounterVec
	SessionDuration  prometheus.Histogram

	// Upstream negotiation metrics
	NegotiationAttempts  *prometheus.CounterVec
	NegotiationFailures  *prometheus.CounterVec
	NegotiationExhausted prometheus.Counter

	// Relay traffic metrics
	FramesForwarded     *prometheus.CounterVec
	AudioBytesForwarded *prometheus.CounterVec

	// Translation metrics
	ControlMessagesTranslated *prometheus.CounterVec
	MessagesDropped           *prometheus.CounterVec

	// Best-effort send metrics
	SendErrorsSwallowed *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Guardrail metrics
	SessionLimitExceeded *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of relay sessions started",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active relay sessions",
		}),
		SessionsSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_success_total",
			Help:      "Total number of sessions that ended with a normal close",
		}),
		SessionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Total number of sessions that ended with an error close",
		}),
		SessionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_rejected_total",
			Help:      "Total number of client connections rejected before relay",
		}, []string{"reason"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of relay sessions in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),

		NegotiationAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiation_attempts_total",
			Help:      "Total number of upstream connection attempts per endpoint",
		}, []string{"endpoint"}),
		NegotiationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiation_failures_total",
			Help:      "Total number of failed upstream connection attempts per endpoint",
		}, []string{"endpoint"}),
		NegotiationExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiation_exhausted_total",
			Help:      "Total number of sessions where every upstream candidate failed",
		}),

		FramesForwarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_forwarded_total",
			Help:      "Total number of frames forwarded per direction",
		}, []string{"direction"}),
		AudioBytesForwarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_forwarded_total",
			Help:      "Total binary audio bytes forwarded per direction",
		}, []string{"direction"}),

		ControlMessagesTranslated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_messages_translated_total",
			Help:      "Total number of client control messages translated per kind",
		}, []string{"kind"}),
		MessagesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Total number of client messages dropped per reason",
		}, []string{"reason"}),

		SendErrorsSwallowed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_swallowed_total",
			Help:      "Total number of best-effort forwarding failures per direction",
		}, []string{"direction"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		SessionLimitExceeded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_limit_exceeded_total",
			Help:      "Total number of times session limits were exceeded",
		}, []string{"limit_type"}),
	}
}

// RecordSessionStart records a new session starting.
func (m *Metrics) RecordSessionStart() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session ending.
func (m *Metrics) RecordSessionEnd(success bool, durationSeconds float64) {
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(durationSeconds)
	if success {
		m.SessionsSuccess.Inc()
	} else {
		m.SessionsFailed.Inc()
	}
}

// RecordSessionRejected records a client connection rejected before relay.
func (m *Metrics) RecordSessionRejected(reason string) {
	m.SessionsRejected.WithLabelValues(reason).Inc()
}

// RecordNegotiationAttempt records one upstream connection attempt.
func (m *Metrics) RecordNegotiationAttempt(endpoint string) {
	m.NegotiationAttempts.WithLabelValues(endpoint).Inc()
}

// RecordNegotiationFailure records one failed upstream connection attempt.
func (m *Metrics) RecordNegotiationFailure(endpoint string) {
	m.NegotiationFailures.WithLabelValues(endpoint).Inc()
}

// RecordNegotiationExhausted records a session with no reachable upstream.
func (m *Metrics) RecordNegotiationExhausted() {
	m.NegotiationExhausted.Inc()
}

// RecordFrameForwarded records a forwarded frame. Binary frames also count
// toward the audio byte totals.
func (m *Metrics) RecordFrameForwarded(direction string, bytes int, binary bool) {
	m.FramesForwarded.WithLabelValues(direction).Inc()
	if binary {
		m.AudioBytesForwarded.WithLabelValues(direction).Add(float64(bytes))
	}
}

// RecordControlTranslated records a translated control message.
func (m *Metrics) RecordControlTranslated(kind string) {
	m.ControlMessagesTranslated.WithLabelValues(kind).Inc()
}

// RecordMessageDropped records a dropped client message.
func (m *Metrics) RecordMessageDropped(reason string) {
	m.MessagesDropped.WithLabelValues(reason).Inc()
}

// RecordSendErrorSwallowed records a best-effort forwarding failure.
func (m *Metrics) RecordSendErrorSwallowed(direction string) {
	m.SendErrorsSwallowed.WithLabelValues(direction).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordLimitExceeded records when a session limit is exceeded.
func (m *Metrics) RecordLimitExceeded(limitType string) {
	m.SessionLimitExceeded.WithLabelValues(limitType).Inc()
}
