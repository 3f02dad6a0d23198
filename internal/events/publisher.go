// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-voice-relay-service/internal/observability/metrics"
)

// Publisher publishes session lifecycle events to separate Kafka topics.
type Publisher struct {
	writerStarted *kafka.Writer
	writerEnded   *kafka.Writer
	principal     string
	topicStarted  string
	topicEnded    string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicStarted string
	TopicEnded   string
	Principal    string
	Enabled      bool
}

// New creates a new Kafka event publisher with separate topics for session
// started and session ended events.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicStarted: cfg.TopicStarted,
			topicEnded:   cfg.TopicEnded,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerStarted := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicStarted,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerEnded := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicEnded,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicStarted", cfg.TopicStarted).
		Str("topicEnded", cfg.TopicEnded).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerStarted: writerStarted,
		writerEnded:   writerEnded,
		principal:     cfg.Principal,
		topicStarted:  cfg.TopicStarted,
		topicEnded:    cfg.TopicEnded,
		enabled:       true,
		metrics:       m,
	}
}

// PublishStarted publishes a session started event.
func (p *Publisher) PublishStarted(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerStarted, p.topicStarted, "started", key, event)
}

// PublishEnded publishes a session ended event.
func (p *Publisher) PublishEnded(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerEnded, p.topicEnded, "ended", key, event)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerStarted != nil {
		if e := p.writerStarted.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing started writer")
			err = e
		}
	}
	if p.writerEnded != nil {
		if e := p.writerEnded.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing ended writer")
			err = e
		}
	}
	return err
}
