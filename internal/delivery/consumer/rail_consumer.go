package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
)

const (
	DefaultGroup = "settlement-service"

	busyRetries = 3
	busyBackoff = 200 * time.Millisecond

	defaultResubscribeMin = time.Second
	defaultResubscribeMax = 30 * time.Second
)

// RailConfirmation is the message the rail publishes once a transfer is final.
type RailConfirmation struct {
	WithdrawalID string `json:"withdrawal_id"`
	Success      bool   `json:"success"`
	RailRef      string `json:"rail_ref"`
	Reason       string `json:"reason"`
}

type Confirmer interface {
	Confirm(ctx context.Context, input *walletdto.ConfirmInput) (*domain.WithdrawalRequest, error)
}

// RailConsumer applies rail confirmations to withdrawal requests.
type RailConsumer struct {
	Subscriber domain.SubscriberPort
	Wallet     Confirmer
	Topic      string
	Group      string
	// ResubscribeMin and ResubscribeMax bound the backoff between attempts
	// to restore a closed or failed subscription.
	ResubscribeMin time.Duration
	ResubscribeMax time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewRailConsumer(subscriber domain.SubscriberPort, wallet Confirmer) *RailConsumer {
	return &RailConsumer{
		Subscriber: subscriber,
		Wallet:     wallet,
		Topic:      domain.TopicRailConfirmations,
		Group:      DefaultGroup,

		ResubscribeMin: defaultResubscribeMin,
		ResubscribeMax: defaultResubscribeMax,
	}
}

// Start consumes until ctx is cancelled or Stop is called. A subscription
// that closes or fails while running is re-established with backoff; only a
// failure of the first Subscribe is returned.
func (c *RailConsumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	msgs, err := c.Subscriber.Subscribe(ctx, c.Topic, c.Group)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.Topic, err)
	}
	slog.Info("rail confirmation consumer started", "topic", c.Topic, "group", c.Group)

	minBackoff, maxBackoff := c.backoffBounds()
	backoff := minBackoff
	for {
		if c.drain(ctx, msgs) {
			backoff = minBackoff
		}
		if ctx.Err() != nil {
			return nil
		}

		for {
			slog.Warn("rail confirmation stream closed, resubscribing", "topic", c.Topic, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)

			msgs, err = c.Subscriber.Subscribe(ctx, c.Topic, c.Group)
			if err == nil {
				break
			}
			slog.Error("failed to resubscribe to rail confirmations", "topic", c.Topic, "error", err)
		}
	}
}

func (c *RailConsumer) backoffBounds() (time.Duration, time.Duration) {
	lo, hi := c.ResubscribeMin, c.ResubscribeMax
	if lo <= 0 {
		lo = defaultResubscribeMin
	}
	if hi < lo {
		hi = max(lo, defaultResubscribeMax)
	}
	return lo, hi
}

// drain handles messages until msgs closes or ctx is done and reports
// whether at least one message arrived.
func (c *RailConsumer) drain(ctx context.Context, msgs <-chan domain.Message) bool {
	received := false
	for {
		select {
		case <-ctx.Done():
			return received
		case msg, ok := <-msgs:
			if !ok {
				return received
			}
			received = true
			c.Handle(ctx, msg)
		}
	}
}

func (c *RailConsumer) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// Handle applies one message. Malformed and unappliable messages are logged
// and dropped; lock contention is retried briefly.
func (c *RailConsumer) Handle(ctx context.Context, msg domain.Message) {
	var confirmation RailConfirmation
	if err := json.Unmarshal(msg.Value, &confirmation); err != nil {
		slog.Error("malformed rail confirmation", "error", err, "payload", string(msg.Value))
		return
	}
	if confirmation.WithdrawalID == "" {
		slog.Error("rail confirmation without withdrawal id", "payload", string(msg.Value))
		return
	}

	input := &walletdto.ConfirmInput{
		WithdrawalID: confirmation.WithdrawalID,
		Success:      confirmation.Success,
		RailRef:      confirmation.RailRef,
		Reason:       confirmation.Reason,
	}

	var err error
	for attempt := range busyRetries {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(busyBackoff * time.Duration(attempt)):
			}
		}
		var w *domain.WithdrawalRequest
		w, err = c.Wallet.Confirm(ctx, input)
		if err == nil {
			slog.Info("withdrawal confirmed by rail",
				"withdrawal_id", w.ID,
				"status", w.Status,
				"rail_ref", w.RailRef,
			)
			return
		}
		if !errors.Is(err, domain.ErrBusy) {
			break
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidTransition):
		slog.Warn("rail confirmation not applied",
			"withdrawal_id", confirmation.WithdrawalID,
			"success", confirmation.Success,
			"error", err,
		)
	default:
		slog.Error("failed to apply rail confirmation",
			"withdrawal_id", confirmation.WithdrawalID,
			"success", confirmation.Success,
			"error", err,
		)
	}
}
