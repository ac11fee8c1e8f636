package locker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) *RedisLocker {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return NewRedisLocker(client, "test:"+uuid.NewString()+":", 5*time.Second)
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	l := newRedisLocker(t)

	release, err := l.Acquire(context.Background(), []string{"order:1", "balance:a:ICP"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, []string{"balance:a:ICP"})
	require.ErrorIs(t, err, domain.ErrBusy)

	release()
	again, err := l.Acquire(context.Background(), []string{"balance:a:ICP"})
	require.NoError(t, err)
	again()
}

func TestRedisLocker_ReleaseOnlyOwnLocks(t *testing.T) {
	l := newRedisLocker(t)

	release, err := l.Acquire(context.Background(), []string{"k"})
	require.NoError(t, err)
	release()

	owner, err := l.Acquire(context.Background(), []string{"k"})
	require.NoError(t, err)
	defer owner()

	// a stale release must not free the new owner's lock
	release()
	val, err := l.client.Get(context.Background(), l.prefix+"k").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, val)
}
