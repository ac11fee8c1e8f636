package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}
	nc, err := Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return NewBus(nc)
}

func TestBus_PublishSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)
	topic := "test." + uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msgs, err := bus.Subscribe(ctx, topic, "settlement-test")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, topic,
		domain.Message{Key: []byte("w-1"), Value: []byte(`{"withdrawal_id":"w-1"}`)},
		domain.Message{Value: []byte(`{"withdrawal_id":"w-2"}`)},
	))

	var got []domain.Message
	for len(got) < 2 {
		select {
		case m, ok := <-msgs:
			require.True(t, ok, "stream closed early")
			got = append(got, m)
		case <-ctx.Done():
			t.Fatalf("received %d of 2 messages", len(got))
		}
	}
	assert.Equal(t, "w-1", string(got[0].Key))
	assert.JSONEq(t, `{"withdrawal_id":"w-1"}`, string(got[0].Value))
	assert.Empty(t, got[1].Key)

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok, "stream must close once ctx is done")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}
