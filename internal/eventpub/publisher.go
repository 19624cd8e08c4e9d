// Package eventpub publishes domain events to a message broker.
package eventpub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher sends events keyed by an aggregate id.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// KafkaPublisher writes JSON encoded events to a single topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher returns a publisher writing to topic on the given brokers.
//
// Writes are asynchronous: delivery failures are reported through logger.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	l := logger.With().Str("topic", topic).Logger()

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					l.Error().Err(err).Int("messages", len(messages)).Msg("cannot deliver events")
				}
			},
		},
	}
}

// Publish enqueues event for delivery.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	msg, err := encode(key, event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending events and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(key string, event any) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}, nil
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// New returns a Kafka publisher for topic, or a NopPublisher when brokers is empty.
func New(brokers []string, topic string, logger zerolog.Logger) Publisher {
	if len(brokers) == 0 || topic == "" {
		return NopPublisher{}
	}

	return NewKafkaPublisher(brokers, topic, logger)
}
