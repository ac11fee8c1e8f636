package background

import (
	"context"
	"log/slog"
	"time"

	walletUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/wallet"
)

// dispatchBatch bounds how many Pending withdrawals one sweep re-submits.
const dispatchBatch = 100

type BackgroundTasks struct {
	WalletUsecase      walletUsecase.WalletUsecase
	EscalationInterval time.Duration
	DispatchInterval   time.Duration
	// DispatchGrace keeps the sweep away from requests whose first
	// submission may still be in flight.
	DispatchGrace time.Duration
	Now           func() time.Time
}

func NewBackgroundTasks(walletUC walletUsecase.WalletUsecase, escalationInterval, dispatchInterval time.Duration) *BackgroundTasks {
	return &BackgroundTasks{
		WalletUsecase:      walletUC,
		EscalationInterval: escalationInterval,
		DispatchInterval:   dispatchInterval,
		DispatchGrace:      time.Minute,
		Now:                time.Now,
	}
}

// Start runs the sweeps until ctx is cancelled.
func (bt *BackgroundTasks) Start(ctx context.Context) error {
	done := make(chan struct{}, 2)
	go func() {
		bt.every(ctx, bt.EscalationInterval, bt.escalateStuck)
		done <- struct{}{}
	}()
	go func() {
		bt.every(ctx, bt.DispatchInterval, bt.dispatchPending)
		done <- struct{}{}
	}()
	<-done
	<-done
	return nil
}

func (bt *BackgroundTasks) Stop(context.Context) error {
	return nil
}

func (bt *BackgroundTasks) every(ctx context.Context, interval time.Duration, task func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task(ctx)
		}
	}
}

func (bt *BackgroundTasks) escalateStuck(ctx context.Context) {
	out, err := bt.WalletUsecase.EscalateStuck(ctx, bt.Now())
	if err != nil {
		slog.Error("withdrawal escalation sweep failed", "error", err)
	}
	if out != nil && len(out.Escalated) > 0 {
		slog.Info("withdrawals escalated", "count", len(out.Escalated))
	}
}

func (bt *BackgroundTasks) dispatchPending(ctx context.Context) {
	accepted, err := bt.WalletUsecase.DispatchPending(ctx, bt.Now().Add(-bt.DispatchGrace), dispatchBatch)
	if err != nil {
		slog.Error("pending withdrawal dispatch failed", "error", err)
	}
	if accepted > 0 {
		slog.Info("pending withdrawals accepted by rail", "count", accepted)
	}
}
