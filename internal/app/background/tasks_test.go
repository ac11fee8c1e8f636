package background

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/app/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundTasks_StopsWithContext(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	bt := NewBackgroundTasks(env.Wallet, 5*time.Millisecond, 5*time.Millisecond)

	var sweeps atomic.Int32
	bt.Now = func() time.Time {
		sweeps.Add(1)
		return time.Now()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bt.Start(ctx) }()

	require.Eventually(t, func() bool { return sweeps.Load() >= 4 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("background tasks did not stop")
	}
	assert.NoError(t, bt.Stop(context.Background()))
}

func TestBackgroundTasks_DisabledIntervals(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	bt := NewBackgroundTasks(env.Wallet, 0, 0)

	done := make(chan error, 1)
	go func() { done <- bt.Start(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("disabled sweeps should return immediately")
	}
}
