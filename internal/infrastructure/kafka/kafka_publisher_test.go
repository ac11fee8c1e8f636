package publisher

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_EmptyBatchIsNoop(t *testing.T) {
	pub := NewDefaultKafkaPublisher([]string{"127.0.0.1:1"})
	defer pub.Close()
	assert.NoError(t, pub.Publish(context.Background(), domain.TopicOrderEvents))
}

func TestKafka_PublishSubscribeRoundTrip(t *testing.T) {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		t.Skip("KAFKA_BROKERS not set")
	}
	brokers := strings.Split(raw, ",")
	topic := "settlement-test-" + uuid.NewString()

	pub := NewDefaultKafkaPublisher(brokers)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, pub.Publish(ctx, topic, domain.Message{Key: []byte("o-1"), Value: []byte(`{"order_id":"o-1"}`)}))

	msgs, err := NewDefaultKafkaSubscriber(brokers).Subscribe(ctx, topic, "settlement-test-"+uuid.NewString())
	require.NoError(t, err)

	select {
	case m, ok := <-msgs:
		require.True(t, ok, "stream closed before the message arrived")
		assert.Equal(t, "o-1", string(m.Key))
		assert.JSONEq(t, `{"order_id":"o-1"}`, string(m.Value))
	case <-ctx.Done():
		t.Fatal("message not received")
	}
}
