package nats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/nats-io/nats.go"
)

// Bus publishes and consumes events over core NATS subjects named after the
// domain topics.
type Bus struct {
	nc *nats.Conn
}

func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("settlement-service"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

func NewBus(nc *nats.Conn) *Bus {
	return &Bus{nc: nc}
}

func (b *Bus) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	for _, m := range msgs {
		msg := nats.NewMsg(topic)
		msg.Data = m.Value
		if len(m.Key) > 0 {
			msg.Header.Set("Key", string(m.Key))
		}
		if err := b.nc.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish to %s: %w", topic, err)
		}
	}
	return b.nc.FlushWithContext(ctx)
}

func (b *Bus) Subscribe(ctx context.Context, topic, group string) (<-chan domain.Message, error) {
	ch := make(chan *nats.Msg, 64)
	sub, err := b.nc.ChanQueueSubscribe(topic, group, ch)
	if err != nil {
		return nil, fmt.Errorf("nats subscribe to %s: %w", topic, err)
	}

	out := make(chan domain.Message)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Drain(); err != nil {
				slog.Warn("nats drain failed", "topic", topic, "error", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-ch:
				msg := domain.Message{Key: []byte(m.Header.Get("Key")), Value: m.Data}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
