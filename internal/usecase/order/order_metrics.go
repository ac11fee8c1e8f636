package usecase

import (
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
)

func (uc *DefaultOrderUsecase) recordOrderCreatedMetrics(order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordOrderCreated(order.Token, order.Total)
}

func (uc *DefaultOrderUsecase) recordTransitionMetrics(order *domain.Order, from domain.OrderStatus) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordTransition(string(from), string(order.Status))
	if order.Status.Terminal() && !order.CreatedAt.IsZero() {
		uc.Metrics.RecordOrderProcessingDuration(string(order.Status), time.Since(order.CreatedAt).Seconds())
	}
}

func (uc *DefaultOrderUsecase) orderEvent(order *domain.Order, from domain.OrderStatus, actor domain.Actor) domain.OrderEvent {
	return domain.OrderEvent{
		OrderID:    order.ID,
		Number:     order.Number,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		FromStatus: string(from),
		Status:     string(order.Status),
		Token:      order.Token,
		Total:      order.Total.String(),
		ActorID:    actor.ID,
		OccurredAt: order.UpdatedAt,
	}
}
