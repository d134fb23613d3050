package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/shop-assistant/internal/events"
)

// Producer publishes order events wrapped in typed envelopes. Messages
// are keyed by session id so one session's orders stay ordered.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

func (p *Producer) PublishOrderConfirmed(ctx context.Context, event events.OrderConfirmed) error {
	envelope, err := events.NewEnvelope(events.TypeOrderConfirmed, event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: data,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(envelope.Type)},
		},
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
