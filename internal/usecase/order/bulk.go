package usecase

import (
	"context"

	orderdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/order"
	"golang.org/x/sync/errgroup"
)

// BulkTransition applies one transition to many orders. Each order runs in
// its own transaction, so one failure leaves the others untouched.
func (uc *DefaultOrderUsecase) BulkTransition(ctx context.Context, input *orderdto.BulkTransitionInput) []orderdto.OrderProcessingResult {
	results := make([]orderdto.OrderProcessingResult, len(input.OrderIDs))

	g, gctx := errgroup.WithContext(ctx)
	limit := uc.BulkConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, orderID := range input.OrderIDs {
		g.Go(func() error {
			output, err := uc.Transition(gctx, &orderdto.TransitionInput{
				OrderID:     orderID,
				Target:      input.Target,
				TrackingRef: input.TrackingRef,
				Reason:      input.Reason,
				Actor:       input.Actor,
			})
			result := orderdto.OrderProcessingResult{OrderID: orderID, Err: err, Success: err == nil}
			if output != nil {
				result.Status = output.Order.Status
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()
	return results
}
