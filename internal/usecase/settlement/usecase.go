package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DefaultSettlementUsecase struct {
	SettlementRepo  domain.SettlementRepository
	Ledger          domain.LedgerUsecase
	Transactor      domain.Transactor
	FeePolicy       domain.FeePolicy
	PlatformAccount string
	Emitter         *events.Emitter
	Metrics         *metrics.SettlementMetrics
}

func NewDefaultSettlementUsecase(
	settlementRepo domain.SettlementRepository,
	ledger domain.LedgerUsecase,
	transactor domain.Transactor,
	feePolicy domain.FeePolicy,
	platformAccount string,
	emitter *events.Emitter,
	settlementMetrics *metrics.SettlementMetrics,
) *DefaultSettlementUsecase {
	return &DefaultSettlementUsecase{
		SettlementRepo:  settlementRepo,
		Ledger:          ledger,
		Transactor:      transactor,
		FeePolicy:       feePolicy,
		PlatformAccount: platformAccount,
		Emitter:         emitter,
		Metrics:         settlementMetrics,
	}
}

// LockKeys lists the balances Settle writes for hold.
func (uc *DefaultSettlementUsecase) LockKeys(hold *domain.EscrowHold) []string {
	return []string{
		domain.BalanceKey(hold.SellerID, hold.Token),
		domain.BalanceKey(uc.PlatformAccount, hold.Token),
	}
}

// Settle credits the platform fee and the seller net as one unit: when
// either leg fails nothing is applied.
func (uc *DefaultSettlementUsecase) Settle(ctx context.Context, hold *domain.EscrowHold, gross decimal.Decimal) (*domain.Settlement, error) {
	if !gross.IsPositive() {
		return nil, fmt.Errorf("settle order %s: %w: gross must be positive", hold.OrderID, domain.ErrInvalidInput)
	}
	fee := uc.FeePolicy.SellerFee(hold.Token, gross)
	if fee.IsNegative() || fee.GreaterThan(gross) {
		return nil, fmt.Errorf("settle order %s: %w: fee %s outside [0, %s]", hold.OrderID, domain.ErrInvalidInput, fee, gross)
	}

	settlement := &domain.Settlement{
		ID:              uuid.NewString(),
		OrderID:         hold.OrderID,
		SellerID:        hold.SellerID,
		PlatformAccount: uc.PlatformAccount,
		Token:           hold.Token,
		Gross:           gross,
		Fee:             fee,
		Net:             gross.Sub(fee),
		CreatedAt:       time.Now().UTC(),
	}

	err := uc.Transactor.Atomically(ctx, uc.LockKeys(hold), func(ctx context.Context) error {
		if fee.IsPositive() {
			if _, err := uc.Ledger.Credit(ctx, domain.LedgerEntry{
				AccountID: uc.PlatformAccount,
				Token:     hold.Token,
				Amount:    fee,
				Kind:      domain.KindSettlement,
				Reference: hold.OrderID,
				Note:      "platform fee",
			}); err != nil {
				return fmt.Errorf("fee leg: %w", err)
			}
		}
		if settlement.Net.IsPositive() {
			if _, err := uc.Ledger.Credit(ctx, domain.LedgerEntry{
				AccountID: hold.SellerID,
				Token:     hold.Token,
				Amount:    settlement.Net,
				Kind:      domain.KindSettlement,
				Reference: hold.OrderID,
				Note:      "escrow settlement",
			}); err != nil {
				return fmt.Errorf("seller leg: %w", err)
			}
		}
		if err := uc.SettlementRepo.CreateSettlement(ctx, settlement); err != nil {
			return err
		}

		uc.Transactor.AfterCommit(ctx, func() {
			uc.Metrics.RecordSettlement(settlement.Token, settlement.Fee)
			uc.Emitter.Settlement(ctx, domain.SettlementEvent{
				SettlementID: settlement.ID,
				OrderID:      settlement.OrderID,
				SellerID:     settlement.SellerID,
				Token:        settlement.Token,
				Gross:        settlement.Gross.String(),
				Fee:          settlement.Fee.String(),
				Net:          settlement.Net.String(),
				OccurredAt:   settlement.CreatedAt,
			})
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle order %s: %w", hold.OrderID, err)
	}
	return settlement, nil
}

func (uc *DefaultSettlementUsecase) ListByOrder(ctx context.Context, orderID string) ([]*domain.Settlement, error) {
	return uc.SettlementRepo.ListSettlementsByOrderID(ctx, orderID)
}
