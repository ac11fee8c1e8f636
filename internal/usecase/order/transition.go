package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
)

// Transition moves an order along the lifecycle and applies the escrow effect
// of the edge in the same transaction. Requesting the status the order
// already has succeeds without side effects.
func (uc *DefaultOrderUsecase) Transition(ctx context.Context, input *orderdto.TransitionInput) (*orderdto.OrderOutput, error) {
	if !input.Target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Target)
	}

	output := &orderdto.OrderOutput{}
	err := uc.Transactor.Atomically(ctx, []string{domain.OrderKey(input.OrderID)}, func(ctx context.Context) error {
		order, err := uc.OrderRepo.GetOrderByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		output.Order = order

		from := order.Status
		if from == input.Target {
			output.Replayed = true
			output.Hold, err = uc.Escrow.GetHold(ctx, order.ID)
			return err
		}
		if !from.CanTransition(input.Target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, input.Target)
		}

		hold, err := uc.applyEscrowEffect(ctx, order, input)
		if err != nil {
			return err
		}
		output.Hold = hold

		order.Status = input.Target
		if err := uc.OrderRepo.UpdateOrder(ctx, order); err != nil {
			return err
		}
		if err := uc.OrderRepo.AppendTransition(ctx, &domain.OrderTransition{
			OrderID:     order.ID,
			From:        from,
			To:          order.Status,
			ActorID:     input.Actor.ID,
			ActorRole:   input.Actor.Role,
			TrackingRef: order.TrackingRef,
			Note:        input.Reason,
			CreatedAt:   order.UpdatedAt,
		}); err != nil {
			return err
		}

		uc.Transactor.AfterCommit(ctx, func() {
			uc.recordTransitionMetrics(order, from)
			uc.Emitter.Order(ctx, uc.orderEvent(order, from, input.Actor))
		})
		return nil
	})
	if err != nil {
		uc.recordFailure("transition", err)
		return nil, fmt.Errorf("transition order %s to %s: %w", input.OrderID, input.Target, err)
	}
	return output, nil
}

func (uc *DefaultOrderUsecase) applyEscrowEffect(ctx context.Context, order *domain.Order, input *orderdto.TransitionInput) (*domain.EscrowHold, error) {
	hold, err := uc.Escrow.GetHold(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	actorID := input.Actor.ID

	switch input.Target {
	case domain.StatusProcessing:
		return hold, nil

	case domain.StatusShipped:
		ref := strings.TrimSpace(input.TrackingRef)
		if ref == "" {
			return nil, fmt.Errorf("%w: tracking reference is required to ship", domain.ErrInvalidInput)
		}
		order.TrackingRef = ref
		return hold, nil

	case domain.StatusDelivered, domain.StatusResolvedSeller:
		if input.Target == domain.StatusResolvedSeller {
			if hold, err = uc.Escrow.Unfreeze(ctx, order.ID); err != nil {
				return nil, err
			}
		}
		return uc.releaseRemaining(ctx, hold, actorID)

	case domain.StatusCancelled:
		if remaining := hold.Remaining(); remaining.IsPositive() {
			return uc.Escrow.Refund(ctx, order.ID, remaining, "", actorID)
		}
		return hold, nil

	case domain.StatusDisputed:
		remaining := hold.Remaining()
		disputed := remaining
		if input.DisputeAmount != nil {
			disputed = *input.DisputeAmount
			if !disputed.IsPositive() {
				return nil, fmt.Errorf("%w: dispute amount must be positive", domain.ErrInvalidInput)
			}
			if err := uc.Tokens.ValidateAmount(order.Token, disputed); err != nil {
				return nil, fmt.Errorf("dispute amount: %w", err)
			}
			if disputed.GreaterThan(remaining) {
				return nil, fmt.Errorf("%w: disputed %s, remaining %s", domain.ErrEscrowOverrelease, disputed, remaining)
			}
		}
		order.DisputeAmount = disputed
		order.DisputeReason = strings.TrimSpace(input.Reason)
		if !hold.Open() {
			return hold, nil
		}
		return uc.Escrow.Freeze(ctx, order.ID)

	case domain.StatusResolvedBuyer:
		if hold, err = uc.Escrow.Unfreeze(ctx, order.ID); err != nil {
			return nil, err
		}
		refund := decimal.Min(order.DisputeAmount, hold.Remaining())
		if refund.IsPositive() {
			if hold, err = uc.Escrow.Refund(ctx, order.ID, refund, "", actorID); err != nil {
				return nil, err
			}
		}
		return uc.releaseRemaining(ctx, hold, actorID)
	}

	return nil, fmt.Errorf("%w: no handler for %s", domain.ErrInvalidTransition, input.Target)
}

func (uc *DefaultOrderUsecase) releaseRemaining(ctx context.Context, hold *domain.EscrowHold, actorID string) (*domain.EscrowHold, error) {
	if remaining := hold.Remaining(); remaining.IsPositive() {
		return uc.Escrow.Release(ctx, hold.OrderID, remaining, "", actorID)
	}
	return hold, nil
}

// ReleasePartial pays part of a shipped order's escrow to the seller, for
// orders delivered in several parts. The release key makes retries safe.
func (uc *DefaultOrderUsecase) ReleasePartial(ctx context.Context, input *orderdto.ReleaseInput) (*orderdto.OrderOutput, error) {
	key := strings.TrimSpace(input.ReleaseKey)
	if key == "" {
		return nil, fmt.Errorf("%w: release key is required", domain.ErrInvalidInput)
	}

	output := &orderdto.OrderOutput{}
	err := uc.Transactor.Atomically(ctx, []string{domain.OrderKey(input.OrderID)}, func(ctx context.Context) error {
		order, err := uc.OrderRepo.GetOrderByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		output.Order = order

		if order.Status != domain.StatusShipped {
			applied, err := uc.Escrow.MovementApplied(ctx, order.ID, key)
			if err != nil {
				return err
			}
			if !applied {
				return fmt.Errorf("%w: partial release requires %s, order is %s", domain.ErrInvalidTransition, domain.StatusShipped, order.Status)
			}
			output.Replayed = true
			output.Hold, err = uc.Escrow.GetHold(ctx, order.ID)
			return err
		}

		hold, err := uc.Escrow.Release(ctx, order.ID, input.Amount, key, input.Actor.ID)
		if err != nil {
			return err
		}
		output.Hold = hold
		return uc.OrderRepo.UpdateOrder(ctx, order)
	})
	if err != nil {
		uc.recordFailure("release_partial", err)
		return nil, fmt.Errorf("partial release of order %s: %w", input.OrderID, err)
	}
	return output, nil
}

func (uc *DefaultOrderUsecase) recordFailure(operation string, err error) {
	if uc.Metrics == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrBusy):
		uc.Metrics.RecordBusy(operation)
	case errors.Is(err, domain.ErrInsufficientFunds):
		uc.Metrics.RecordError(operation, "insufficient_funds")
	case errors.Is(err, domain.ErrInvalidTransition):
		uc.Metrics.RecordError(operation, "invalid_transition")
	case errors.Is(err, domain.ErrEscrowOverrelease):
		uc.Metrics.RecordError(operation, "escrow_overrelease")
	default:
		uc.Metrics.RecordError(operation, "other")
	}
}
