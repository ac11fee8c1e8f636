package locker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerialisesSameKey(t *testing.T) {
	l := NewLocalLocker()
	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), []string{"balance:alice:ICP"})
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestLocalLocker_TimeoutIsBusy(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), []string{"order:1"})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, []string{"order:2", "order:1"})
	require.ErrorIs(t, err, domain.ErrBusy)

	// order:2 must have been given back on failure
	other, err := l.Acquire(context.Background(), []string{"order:2"})
	require.NoError(t, err)
	other()
}

func TestLocalLocker_OpposingOrderDoesNotDeadlock(t *testing.T) {
	l := NewLocalLocker()
	var wg sync.WaitGroup
	for i := range 50 {
		keys := []string{"balance:a:ICP", "balance:b:ICP"}
		if i%2 == 1 {
			keys = []string{"balance:b:ICP", "balance:a:ICP"}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			release, err := l.Acquire(ctx, keys)
			if assert.NoError(t, err) {
				release()
			}
		}()
	}
	wg.Wait()
}

func TestLocalLocker_ReleaseIsIdempotentAndCleansUp(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), []string{"k", "k"})
	require.NoError(t, err)
	release()
	release()

	s := l.shardFor("k")
	s.mu.Lock()
	_, ok := s.entries["k"]
	s.mu.Unlock()
	assert.False(t, ok)
}
