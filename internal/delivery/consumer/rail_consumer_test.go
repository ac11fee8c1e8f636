package consumer_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/delivery/consumer"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSubscriber hands out its streams in order, then streams that stay open.
type chanSubscriber struct {
	mu      sync.Mutex
	streams []chan domain.Message
	calls   int
	topic   string
	group   string
}

func newChanSubscriber(streams ...chan domain.Message) *chanSubscriber {
	return &chanSubscriber{streams: streams}
}

func (s *chanSubscriber) Subscribe(_ context.Context, topic, group string) (<-chan domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.topic, s.group = topic, group
	if len(s.streams) == 0 {
		return make(chan domain.Message), nil
	}
	next := s.streams[0]
	s.streams = s.streams[1:]
	return next, nil
}

func (s *chanSubscriber) subscribeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastResubscribe(c *consumer.RailConsumer) *consumer.RailConsumer {
	c.ResubscribeMin = 5 * time.Millisecond
	c.ResubscribeMax = 20 * time.Millisecond
	return c
}

type fakeConfirmer struct {
	mu     sync.Mutex
	errs   []error
	inputs []walletdto.ConfirmInput
}

func (f *fakeConfirmer) Confirm(_ context.Context, input *walletdto.ConfirmInput) (*domain.WithdrawalRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, *input)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	status := domain.WithdrawalCompleted
	if !input.Success {
		status = domain.WithdrawalFailed
	}
	return &domain.WithdrawalRequest{ID: input.WithdrawalID, Status: status, RailRef: input.RailRef}, nil
}

func (f *fakeConfirmer) calls() []walletdto.ConfirmInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]walletdto.ConfirmInput(nil), f.inputs...)
}

func message(t *testing.T, c consumer.RailConfirmation) domain.Message {
	t.Helper()
	raw, err := json.Marshal(c)
	require.NoError(t, err)
	return domain.Message{Key: []byte(c.WithdrawalID), Value: raw}
}

func TestRailConsumer_AppliesConfirmations(t *testing.T) {
	stream := make(chan domain.Message)
	sub := newChanSubscriber(stream)
	wallet := &fakeConfirmer{}
	c := fastResubscribe(consumer.NewRailConsumer(sub, wallet))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	stream <- domain.Message{Value: []byte("not json")}
	stream <- message(t, consumer.RailConfirmation{WithdrawalID: "w-1", Success: true, RailRef: "r-1"})
	stream <- message(t, consumer.RailConfirmation{WithdrawalID: "w-2", Success: false, Reason: "rejected"})
	require.Eventually(t, func() bool { return len(wallet.calls()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}

	assert.Equal(t, domain.TopicRailConfirmations, sub.topic)
	assert.Equal(t, consumer.DefaultGroup, sub.group)
	calls := wallet.calls()
	assert.Equal(t, walletdto.ConfirmInput{WithdrawalID: "w-1", Success: true, RailRef: "r-1"}, calls[0])
	assert.Equal(t, walletdto.ConfirmInput{WithdrawalID: "w-2", Reason: "rejected"}, calls[1])
}

func TestRailConsumer_ResubscribesWhenStreamCloses(t *testing.T) {
	closed := make(chan domain.Message)
	close(closed)
	second := make(chan domain.Message)
	sub := newChanSubscriber(closed, second)
	wallet := &fakeConfirmer{}
	c := fastResubscribe(consumer.NewRailConsumer(sub, wallet))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case second <- message(t, consumer.RailConfirmation{WithdrawalID: "w-1", Success: true}):
	case err := <-done:
		t.Fatalf("consumer exited on closed stream: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not resubscribe")
	}
	require.Eventually(t, func() bool { return len(wallet.calls()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, sub.subscribeCalls())

	close(second)
	require.Eventually(t, func() bool { return sub.subscribeCalls() == 3 }, 2*time.Second, 5*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("consumer stopped while ctx is live: %v", err)
	default:
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestRailConsumer_RetriesBusy(t *testing.T) {
	wallet := &fakeConfirmer{errs: []error{domain.ErrBusy, nil}}
	c := consumer.NewRailConsumer(nil, wallet)

	c.Handle(context.Background(), message(t, consumer.RailConfirmation{WithdrawalID: "w-1", Success: true}))
	assert.Len(t, wallet.calls(), 2)
}

func TestRailConsumer_DoesNotRetryTerminalErrors(t *testing.T) {
	wallet := &fakeConfirmer{errs: []error{domain.ErrInvalidTransition}}
	c := consumer.NewRailConsumer(nil, wallet)

	c.Handle(context.Background(), message(t, consumer.RailConfirmation{WithdrawalID: "w-1", Success: true}))
	assert.Len(t, wallet.calls(), 1)

	c.Handle(context.Background(), message(t, consumer.RailConfirmation{Success: true}))
	assert.Len(t, wallet.calls(), 1, "messages without a withdrawal id are dropped")
}

func TestRailConsumer_StopEndsStart(t *testing.T) {
	sub := newChanSubscriber()
	c := consumer.NewRailConsumer(sub, &fakeConfirmer{})

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		_ = c.Stop(context.Background())
		select {
		case err := <-done:
			return err == nil
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
