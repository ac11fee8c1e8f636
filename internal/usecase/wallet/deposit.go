package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
)

// Deposit credits an externally observed transfer once per external
// reference. A replay returns the first acknowledgement flagged Duplicate.
func (uc *DefaultWalletUsecase) Deposit(ctx context.Context, input *walletdto.DepositInput) (*walletdto.DepositOutput, error) {
	ref := strings.TrimSpace(input.ExternalRef)
	if ref == "" {
		return nil, fmt.Errorf("deposit: %w: external reference is required", domain.ErrInvalidInput)
	}
	token, err := uc.Tokens.Normalize(input.Token)
	if err != nil {
		return nil, fmt.Errorf("deposit %s: %w", ref, err)
	}

	output := &walletdto.DepositOutput{}
	err = uc.Transactor.Atomically(ctx, []string{domain.DepositKey(ref)}, func(ctx context.Context) error {
		existing, err := uc.DepositRepo.GetDeposit(ctx, ref)
		switch {
		case err == nil:
			if !existing.SameAs(input.AccountID, token, input.Amount) {
				return fmt.Errorf("%w: %s", domain.ErrExternalRefConflict, ref)
			}
			output.Deposit, output.Duplicate = existing, true
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		record, err := uc.Ledger.Credit(ctx, domain.LedgerEntry{
			AccountID: input.AccountID,
			Token:     token,
			Amount:    input.Amount,
			Kind:      domain.KindDeposit,
			Reference: ref,
			Note:      "external deposit",
		})
		if err != nil {
			return err
		}

		deposit := &domain.Deposit{
			ExternalRef:   ref,
			AccountID:     input.AccountID,
			Token:         token,
			Amount:        input.Amount,
			TransactionID: record.ID,
			CreatedAt:     time.Now().UTC(),
		}
		if err := uc.DepositRepo.CreateDeposit(ctx, deposit); err != nil {
			return err
		}
		output.Deposit = deposit

		uc.Transactor.AfterCommit(ctx, func() {
			uc.Metrics.RecordDeposit(token, "credited")
			uc.Emitter.Wallet(ctx, domain.WalletEvent{
				Type:       "deposit",
				Reference:  ref,
				AccountID:  deposit.AccountID,
				Token:      token,
				Amount:     deposit.Amount.String(),
				OccurredAt: deposit.CreatedAt,
			})
		})
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExternalRefConflict):
			uc.Metrics.RecordDeposit(token, "conflict")
		case errors.Is(err, domain.ErrBusy):
			uc.Metrics.RecordBusy("deposit")
		}
		return nil, fmt.Errorf("deposit %s: %w", ref, err)
	}
	if output.Duplicate {
		uc.Metrics.RecordDeposit(token, "duplicate")
	}
	return output, nil
}
