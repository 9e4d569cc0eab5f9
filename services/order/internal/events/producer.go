package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/segmentio/kafka-go"
)

// Publisher delivers one outbox event to consumers.
type Publisher interface {
	Publish(ctx context.Context, event models.OutboxEvent) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes to topic on brokers. Messages are keyed by order
// id so all events of one order land on the same partition in order.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID.String()),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "vendor_id", Value: []byte(event.VendorID.String())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", event.EventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events. It is used when no brokers are configured.
type LogPublisher struct {
	Log *slog.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	p.Log.Info("order_event",
		"event_id", event.ID,
		"event_type", event.EventType,
		"order_id", event.AggregateID,
		"payload", string(event.Payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
