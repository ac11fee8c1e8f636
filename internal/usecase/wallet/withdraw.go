package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
	"github.com/google/uuid"
)

// Withdraw reserves the amount and records a Pending request in one
// transaction, then hands the request to the rail. A rail failure leaves the
// request Pending with its funds reserved; Dispatch retries it.
func (uc *DefaultWalletUsecase) Withdraw(ctx context.Context, input *walletdto.WithdrawInput) (*domain.WithdrawalRequest, error) {
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return nil, fmt.Errorf("withdraw: %w: destination is required", domain.ErrInvalidInput)
	}
	token, err := uc.Tokens.Normalize(input.Token)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}

	now := time.Now().UTC()
	w := &domain.WithdrawalRequest{
		ID:          uuid.NewString(),
		AccountID:   input.AccountID,
		Token:       token,
		Amount:      input.Amount,
		Destination: destination,
		Status:      domain.WithdrawalPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.Transactor.Atomically(ctx, []string{domain.WithdrawalKey(w.ID)}, func(ctx context.Context) error {
		if _, err := uc.Ledger.Reserve(ctx, domain.LedgerEntry{
			AccountID: w.AccountID,
			Token:     w.Token,
			Amount:    w.Amount,
			Reference: w.ID,
			Note:      "withdrawal reserve",
		}); err != nil {
			return err
		}
		return uc.WithdrawalRepo.CreateWithdrawal(ctx, w)
	})
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			uc.Metrics.RecordBusy("withdraw")
		}
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	uc.Metrics.RecordWithdrawal(w.Token, string(domain.WithdrawalPending))

	return uc.submit(ctx, w)
}

// Dispatch hands a Pending request to the rail again. Requests in any other
// status are returned unchanged.
func (uc *DefaultWalletUsecase) Dispatch(ctx context.Context, withdrawalID string) (*domain.WithdrawalRequest, error) {
	w, err := uc.WithdrawalRepo.GetWithdrawalByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalPending {
		return w, nil
	}
	return uc.submit(ctx, w)
}

// DispatchPending re-submits up to limit Pending requests created before the
// given instant and reports how many the rail accepted.
func (uc *DefaultWalletUsecase) DispatchPending(ctx context.Context, createdBefore time.Time, limit int) (int, error) {
	pending, err := uc.WithdrawalRepo.FindPendingWithdrawals(ctx, createdBefore.UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("find pending withdrawals: %w", err)
	}
	accepted := 0
	var errs []error
	for _, w := range pending {
		if ctx.Err() != nil {
			break
		}
		updated, err := uc.submit(ctx, w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if updated.Status != domain.WithdrawalPending {
			accepted++
		}
	}
	return accepted, errors.Join(errs...)
}

// submit calls the rail without holding any lock and records acceptance.
func (uc *DefaultWalletUsecase) submit(ctx context.Context, w *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error) {
	railRef, err := uc.Rail.SubmitTransfer(ctx, w)
	if err != nil {
		slog.Warn("rail did not accept withdrawal, leaving it pending",
			"withdrawal_id", w.ID,
			"account_id", w.AccountID,
			"error", err,
		)
		return w, nil
	}

	var updated *domain.WithdrawalRequest
	err = uc.Transactor.Atomically(ctx, []string{domain.WithdrawalKey(w.ID)}, func(ctx context.Context) error {
		current, err := uc.WithdrawalRepo.GetWithdrawalByID(ctx, w.ID)
		if err != nil {
			return err
		}
		updated = current
		// A confirmation may have arrived before the acceptance was recorded.
		if current.Status != domain.WithdrawalPending {
			return nil
		}
		processingAt := time.Now().UTC()
		current.Status = domain.WithdrawalProcessing
		current.RailRef = railRef
		current.ProcessingAt = &processingAt
		if err := uc.WithdrawalRepo.UpdateWithdrawal(ctx, current); err != nil {
			return err
		}
		uc.Transactor.AfterCommit(ctx, func() {
			uc.Metrics.RecordWithdrawal(current.Token, string(current.Status))
			uc.Emitter.Wallet(ctx, withdrawalEvent(current))
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record rail acceptance of withdrawal %s: %w", w.ID, err)
	}
	return updated, nil
}

// Confirm applies the rail's final outcome. Replaying the recorded outcome is
// a no-op; reporting the opposite one fails with ErrInvalidTransition.
func (uc *DefaultWalletUsecase) Confirm(ctx context.Context, input *walletdto.ConfirmInput) (*domain.WithdrawalRequest, error) {
	target := domain.WithdrawalFailed
	if input.Success {
		target = domain.WithdrawalCompleted
	}

	var w *domain.WithdrawalRequest
	err := uc.Transactor.Atomically(ctx, []string{domain.WithdrawalKey(input.WithdrawalID)}, func(ctx context.Context) error {
		var err error
		w, err = uc.WithdrawalRepo.GetWithdrawalByID(ctx, input.WithdrawalID)
		if err != nil {
			return err
		}
		if w.Status.Final() {
			if w.Status == target {
				return nil
			}
			return fmt.Errorf("%w: withdrawal is %s, confirmation says %s", domain.ErrInvalidTransition, w.Status, target)
		}

		entry := domain.LedgerEntry{
			AccountID: w.AccountID,
			Token:     w.Token,
			Amount:    w.Amount,
			Reference: w.ID,
		}
		if input.Success {
			entry.Note = "withdrawal completed"
			_, err = uc.Ledger.CommitReserved(ctx, entry)
		} else {
			entry.Note = "withdrawal failed"
			_, err = uc.Ledger.ReleaseReserved(ctx, entry)
			w.FailureReason = input.Reason
		}
		if err != nil {
			return err
		}

		w.Status = target
		if input.RailRef != "" {
			w.RailRef = input.RailRef
		}
		if err := uc.WithdrawalRepo.UpdateWithdrawal(ctx, w); err != nil {
			return err
		}
		uc.Transactor.AfterCommit(ctx, func() {
			uc.Metrics.RecordWithdrawal(w.Token, string(w.Status))
			uc.Emitter.Wallet(ctx, withdrawalEvent(w))
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm withdrawal %s: %w", input.WithdrawalID, err)
	}
	return w, nil
}
