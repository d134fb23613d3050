package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/example/shop-assistant/internal/events"
)

// EnvelopeHandler processes one decoded event envelope.
type EnvelopeHandler func(ctx context.Context, envelope events.Envelope) error

// Consumer reads event envelopes from a topic as part of a consumer
// group. Malformed messages are logged and skipped, never retried.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

func (c *Consumer) Consume(ctx context.Context, handler EnvelopeHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Kafka] Error reading message: %v", err)
				continue
			}

			var envelope events.Envelope
			if err := json.Unmarshal(msg.Value, &envelope); err != nil {
				log.Printf("[Kafka] Skipping malformed message at offset %d: %v", msg.Offset, err)
				continue
			}

			if err := handler(ctx, envelope); err != nil {
				log.Printf("[Kafka] Error handling %s event: %v", envelope.Type, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
