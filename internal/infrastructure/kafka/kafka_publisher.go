package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer     *kafka.Writer
	maxRetries int
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		maxRetries: 3,
	}
}

// Publish writes msgs to topic. Messages sharing a key land on the same
// partition, so events of one order or account stay ordered.
func (k *DefaultKafkaPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Topic: topic,
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
		})
	}

	var err error
	for attempt := 1; attempt <= k.maxRetries; attempt++ {
		if err = k.writer.WriteMessages(ctx, km...); err == nil {
			return nil
		}
		slog.Warn("kafka publish attempt failed", "topic", topic, "attempt", attempt, "error", err)
		if attempt == k.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
	return fmt.Errorf("kafka publish to %s failed after %d attempts: %w", topic, k.maxRetries, err)
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
