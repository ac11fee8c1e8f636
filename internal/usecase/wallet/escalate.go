package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
)

// EscalateStuck sends every Processing request older than WithdrawalTimeout
// to the operator queue once. Escalated requests keep their funds reserved
// until an operator confirms them.
func (uc *DefaultWalletUsecase) EscalateStuck(ctx context.Context, now time.Time) (*walletdto.EscalationOutput, error) {
	now = now.UTC()
	stuck, err := uc.WithdrawalRepo.FindStuckWithdrawals(ctx, now.Add(-uc.WithdrawalTimeout))
	if err != nil {
		return nil, fmt.Errorf("find stuck withdrawals: %w", err)
	}

	output := &walletdto.EscalationOutput{CheckedAt: now}
	var errs []error
	for _, candidate := range stuck {
		w, err := uc.escalate(ctx, candidate.ID, now)
		if err != nil {
			slog.Error("failed to escalate withdrawal", "withdrawal_id", candidate.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		if w != nil {
			output.Escalated = append(output.Escalated, w)
		}
	}
	return output, errors.Join(errs...)
}

// escalate publishes before stamping escalated_at so a failed publish is
// retried by the next sweep.
func (uc *DefaultWalletUsecase) escalate(ctx context.Context, withdrawalID string, now time.Time) (*domain.WithdrawalRequest, error) {
	var escalated *domain.WithdrawalRequest
	err := uc.Transactor.Atomically(ctx, []string{domain.WithdrawalKey(withdrawalID)}, func(ctx context.Context) error {
		w, err := uc.WithdrawalRepo.GetWithdrawalByID(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if w.Status != domain.WithdrawalProcessing || w.EscalatedAt != nil || w.ProcessingAt == nil {
			return nil
		}

		if err := uc.Emitter.Escalate(ctx, domain.EscalationEvent{
			WithdrawalID: w.ID,
			AccountID:    w.AccountID,
			Token:        w.Token,
			Amount:       w.Amount.String(),
			RailRef:      w.RailRef,
			Reason:       domain.ErrWithdrawalTimeout.Error(),
			ProcessingAt: *w.ProcessingAt,
			EscalatedAt:  now,
		}); err != nil {
			return fmt.Errorf("publish escalation: %w", err)
		}

		w.EscalatedAt = &now
		if err := uc.WithdrawalRepo.UpdateWithdrawal(ctx, w); err != nil {
			return err
		}
		escalated = w
		uc.Transactor.AfterCommit(ctx, uc.Metrics.RecordEscalation)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("escalate withdrawal %s: %w", withdrawalID, err)
	}
	return escalated, nil
}
