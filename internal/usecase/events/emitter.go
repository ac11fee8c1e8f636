package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
)

// Emitter publishes domain events after the state they describe has been
// committed. A nil Emitter or publisher drops events.
type Emitter struct {
	pub domain.PublisherPort
}

func NewEmitter(pub domain.PublisherPort) *Emitter {
	return &Emitter{pub: pub}
}

func (e *Emitter) publish(ctx context.Context, topic, key string, event any) error {
	if e == nil || e.pub == nil {
		return nil
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	return e.pub.Publish(ctx, topic, domain.Message{Key: []byte(key), Value: value})
}

// Order events are informational; publish failures are logged only.
func (e *Emitter) Order(ctx context.Context, event domain.OrderEvent) {
	if err := e.publish(ctx, domain.TopicOrderEvents, event.OrderID, event); err != nil {
		slog.Error("failed to publish order event", "order_id", event.OrderID, "status", event.Status, "error", err)
	}
}

func (e *Emitter) Settlement(ctx context.Context, event domain.SettlementEvent) {
	if err := e.publish(ctx, domain.TopicSettlementEvents, event.OrderID, event); err != nil {
		slog.Error("failed to publish settlement event", "order_id", event.OrderID, "error", err)
	}
}

func (e *Emitter) Wallet(ctx context.Context, event domain.WalletEvent) {
	if err := e.publish(ctx, domain.TopicWalletEvents, event.AccountID, event); err != nil {
		slog.Error("failed to publish wallet event", "reference", event.Reference, "error", err)
	}
}

// Escalate reports the publish error so the caller can retry the escalation.
func (e *Emitter) Escalate(ctx context.Context, event domain.EscalationEvent) error {
	return e.publish(ctx, domain.TopicOperatorQueue, event.WithdrawalID, event)
}

// MemoryPublisher keeps published messages in memory for tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
	err      error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{messages: make(map[string][]domain.Message)}
}

func (p *MemoryPublisher) Publish(_ context.Context, topic string, msgs ...domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages[topic] = append(p.messages[topic], msgs...)
	return nil
}

func (p *MemoryPublisher) Messages(topic string) []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Message(nil), p.messages[topic]...)
}

// SetErr makes every following Publish fail with err until reset with nil.
func (p *MemoryPublisher) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// LogPublisher writes events to the log and drops them. It backs the "none"
// broker setting; operator escalations are logged at warn level so they stay
// visible without a queue.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	level := slog.LevelDebug
	if topic == domain.TopicOperatorQueue {
		level = slog.LevelWarn
	}
	for _, m := range msgs {
		p.logger.Log(ctx, level, "event not delivered, broker disabled",
			"topic", topic,
			"key", string(m.Key),
			"payload", string(m.Value),
		)
	}
	return nil
}
