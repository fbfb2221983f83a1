// Package kafka publishes changelog events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
	"github.com/tsethwilliams/isitsafetovisit/internal/observability"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes changelog entries to the events topic.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the events topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish sends one changelog entry, keyed by city id so events for a city
// stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, entry domain.ChangelogEntry) error {
	msg, err := serializeToMessage(entry, observability.RunID(ctx))
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s event for %s: %w", entry.Action, entry.CityID, err)
	}
	p.metrics.EventsPublished.WithLabelValues("success").Inc()
	p.logger.Debug("event published", "action", entry.Action, "city_id", entry.CityID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a changelog entry into a Kafka message.
func serializeToMessage(entry domain.ChangelogEntry, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize changelog entry: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(entry.CityID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(entry.Action)},
			{Key: "run_id", Value: []byte(runID)},
			{Key: "timestamp", Value: []byte(entry.Timestamp)},
		},
	}, nil
}
