package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/apptdesk/libs/kafkax"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	timeout time.Duration
}

type KafkaConfig struct {
	Brokers string
	// Topic defaults to TopicRescheduled.
	Topic        string
	WriteTimeout time.Duration
}

// NewKafkaPublisher returns nil when no brokers are configured; callers fall back to Noop.
func NewKafkaPublisher(logger *slog.Logger, cfg KafkaConfig) *KafkaPublisher {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Balancer: &kafka.Hash{},
	})
	return newKafkaPublisher(writer, logger, cfg)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger, cfg KafkaConfig) *KafkaPublisher {
	if cfg.Topic == "" {
		cfg.Topic = TopicRescheduled
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &KafkaPublisher{writer: w, topic: cfg.Topic, logger: logger, timeout: cfg.WriteTimeout}
}

func (p *KafkaPublisher) PublishRescheduled(ctx context.Context, ev Rescheduled) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	msg := kafkax.NewMessage(ctx, p.topic, ev.TransitionID, payload)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", p.topic, err)
	}
	p.logger.Debug("event published", "topic", p.topic, "transition_id", ev.TransitionID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
