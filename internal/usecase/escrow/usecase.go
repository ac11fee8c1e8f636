package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DefaultEscrowUsecase struct {
	EscrowRepo domain.EscrowRepository
	Ledger     domain.LedgerUsecase
	Settlement domain.SettlementUsecase
	Transactor domain.Transactor
	Metrics    *metrics.SettlementMetrics
}

func NewDefaultEscrowUsecase(
	escrowRepo domain.EscrowRepository,
	ledger domain.LedgerUsecase,
	settlement domain.SettlementUsecase,
	transactor domain.Transactor,
	settlementMetrics *metrics.SettlementMetrics,
) *DefaultEscrowUsecase {
	return &DefaultEscrowUsecase{
		EscrowRepo: escrowRepo,
		Ledger:     ledger,
		Settlement: settlement,
		Transactor: transactor,
		Metrics:    settlementMetrics,
	}
}

// OpenHold locks the order total on the buyer balance. A second call for the
// same order returns the existing hold.
func (uc *DefaultEscrowUsecase) OpenHold(ctx context.Context, order *domain.Order) (*domain.EscrowHold, error) {
	var hold *domain.EscrowHold
	keys := []string{domain.OrderKey(order.ID), domain.BalanceKey(order.BuyerID, order.Token)}
	err := uc.Transactor.Atomically(ctx, keys, func(ctx context.Context) error {
		existing, err := uc.EscrowRepo.GetHoldByOrderID(ctx, order.ID)
		if err == nil {
			hold = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if _, err := uc.Ledger.Lock(ctx, domain.LedgerEntry{
			AccountID: order.BuyerID,
			Token:     order.Token,
			Amount:    order.Total,
			Reference: order.ID,
			Note:      "escrow hold",
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		hold = &domain.EscrowHold{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			BuyerID:   order.BuyerID,
			SellerID:  order.SellerID,
			Token:     order.Token,
			Original:  order.Total,
			Released:  decimal.Zero,
			Refunded:  decimal.Zero,
			Status:    domain.HoldHeld,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return uc.EscrowRepo.CreateHold(ctx, hold)
	})
	if err != nil {
		return nil, fmt.Errorf("open hold for order %s: %w", order.ID, err)
	}
	return hold, nil
}

func (uc *DefaultEscrowUsecase) Release(ctx context.Context, orderID string, amount decimal.Decimal, key, actorID string) (*domain.EscrowHold, error) {
	return uc.move(ctx, domain.MovementRelease, orderID, amount, key, actorID)
}

func (uc *DefaultEscrowUsecase) Refund(ctx context.Context, orderID string, amount decimal.Decimal, key, actorID string) (*domain.EscrowHold, error) {
	return uc.move(ctx, domain.MovementRefund, orderID, amount, key, actorID)
}

func (uc *DefaultEscrowUsecase) move(ctx context.Context, kind domain.MovementKind, orderID string, amount decimal.Decimal, key, actorID string) (*domain.EscrowHold, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%s escrow of order %s: %w: amount must be positive", kind, orderID, domain.ErrInvalidInput)
	}

	var hold *domain.EscrowHold
	err := uc.Transactor.Atomically(ctx, []string{domain.OrderKey(orderID)}, func(ctx context.Context) error {
		var err error
		hold, err = uc.EscrowRepo.GetHoldByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		if key != "" {
			prior, err := uc.EscrowRepo.GetMovementByKey(ctx, hold.ID, key)
			switch {
			case err == nil:
				if prior.Kind != kind || !prior.Amount.Equal(amount) {
					return fmt.Errorf("%w: key %q", domain.ErrIdempotencyConflict, key)
				}
				return nil
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}

		if hold.Frozen {
			return domain.ErrHoldFrozen
		}
		if !hold.Open() {
			return fmt.Errorf("%w: status %s", domain.ErrHoldClosed, hold.Status)
		}
		if amount.GreaterThan(hold.Remaining()) {
			return fmt.Errorf("%w: requested %s, remaining %s", domain.ErrEscrowOverrelease, amount, hold.Remaining())
		}

		keys := []string{domain.BalanceKey(hold.BuyerID, hold.Token)}
		if kind == domain.MovementRelease {
			keys = append(keys, uc.Settlement.LockKeys(hold)...)
		}
		return uc.Transactor.Atomically(ctx, keys, func(ctx context.Context) error {
			entry := domain.LedgerEntry{
				AccountID: hold.BuyerID,
				Token:     hold.Token,
				Amount:    amount,
				Reference: orderID,
			}
			if kind == domain.MovementRelease {
				if _, err := uc.Ledger.ReleaseLocked(ctx, entry); err != nil {
					return err
				}
				if _, err := uc.Settlement.Settle(ctx, hold, amount); err != nil {
					return err
				}
				hold.ApplyRelease(amount)
			} else {
				if _, err := uc.Ledger.Unlock(ctx, entry); err != nil {
					return err
				}
				hold.ApplyRefund(amount)
			}

			if err := uc.EscrowRepo.UpdateHold(ctx, hold); err != nil {
				return err
			}
			if err := uc.EscrowRepo.AppendMovement(ctx, &domain.EscrowMovement{
				ID:        uuid.NewString(),
				HoldID:    hold.ID,
				OrderID:   orderID,
				Kind:      kind,
				Amount:    amount,
				Key:       key,
				ActorID:   actorID,
				CreatedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}

			token := hold.Token
			uc.Transactor.AfterCommit(ctx, func() {
				if kind == domain.MovementRelease {
					uc.Metrics.RecordRelease(token, amount)
				} else {
					uc.Metrics.RecordRefund(token, amount)
				}
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s escrow of order %s: %w", kind, orderID, err)
	}
	return hold, nil
}

func (uc *DefaultEscrowUsecase) Freeze(ctx context.Context, orderID string) (*domain.EscrowHold, error) {
	return uc.setFrozen(ctx, orderID, true)
}

func (uc *DefaultEscrowUsecase) Unfreeze(ctx context.Context, orderID string) (*domain.EscrowHold, error) {
	return uc.setFrozen(ctx, orderID, false)
}

func (uc *DefaultEscrowUsecase) setFrozen(ctx context.Context, orderID string, frozen bool) (*domain.EscrowHold, error) {
	var hold *domain.EscrowHold
	err := uc.Transactor.Atomically(ctx, []string{domain.OrderKey(orderID)}, func(ctx context.Context) error {
		var err error
		hold, err = uc.EscrowRepo.GetHoldByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if hold.Frozen == frozen {
			return nil
		}
		if frozen && !hold.Open() {
			return fmt.Errorf("%w: status %s", domain.ErrHoldClosed, hold.Status)
		}
		hold.Frozen = frozen
		return uc.EscrowRepo.UpdateHold(ctx, hold)
	})
	if err != nil {
		return nil, fmt.Errorf("set frozen=%t on escrow of order %s: %w", frozen, orderID, err)
	}
	return hold, nil
}

func (uc *DefaultEscrowUsecase) GetHold(ctx context.Context, orderID string) (*domain.EscrowHold, error) {
	return uc.EscrowRepo.GetHoldByOrderID(ctx, orderID)
}

func (uc *DefaultEscrowUsecase) MovementApplied(ctx context.Context, orderID, key string) (bool, error) {
	hold, err := uc.EscrowRepo.GetHoldByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	_, err = uc.EscrowRepo.GetMovementByKey(ctx, hold.ID, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (uc *DefaultEscrowUsecase) Movements(ctx context.Context, orderID string) ([]*domain.EscrowMovement, error) {
	hold, err := uc.EscrowRepo.GetHoldByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.EscrowRepo.ListMovements(ctx, hold.ID)
}
