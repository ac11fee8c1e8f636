package locker

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:embed unlock.lua
var unlockLuaScript string

var unlockScript = redis.NewScript(unlockLuaScript)

// RedisLocker shares key locks between service replicas. Every lock carries
// a TTL so a crashed owner cannot block a key forever.
type RedisLocker struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
}

func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		retryDelay: 10 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	token := uuid.NewString()
	redisKeys := make([]string, 0, len(sorted))
	release := func() {
		if len(redisKeys) == 0 {
			return
		}
		// the caller's ctx may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, l.client, redisKeys, token).Err(); err != nil {
			slog.Error("failed to release redis locks", "keys", redisKeys, "error", err)
		}
	}

	for _, key := range sorted {
		redisKey := l.prefix + key
		if err := l.take(ctx, redisKey, token); err != nil {
			release()
			return nil, err
		}
		redisKeys = append(redisKeys, redisKey)
	}
	return release, nil
}

func (l *RedisLocker) take(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", domain.ErrBusy, key)
			}
			return fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		timer := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", domain.ErrBusy, key)
			}
			return ctx.Err()
		case <-timer.C:
		}
	}
}
