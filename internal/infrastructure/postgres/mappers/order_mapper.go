package mappers

import (
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := &domain.Order{
		ID:            model.ID,
		Number:        model.Number,
		BuyerID:       model.BuyerID,
		SellerID:      model.SellerID,
		Token:         model.Token,
		Total:         model.Total,
		Status:        model.Status,
		TrackingRef:   model.TrackingRef,
		DisputeAmount: model.DisputeAmount,
		DisputeReason: model.DisputeReason,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
	if model.IdempotencyKey != nil {
		order.IdempotencyKey = *model.IdempotencyKey
	}
	order.Lines = make([]domain.OrderLine, 0, len(model.Lines))
	for _, line := range model.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Token:     line.Token,
		})
	}
	return order
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	model := &models.OrderModel{
		ID:            order.ID,
		Number:        order.Number,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		Token:         order.Token,
		Total:         order.Total,
		Status:        order.Status,
		TrackingRef:   order.TrackingRef,
		DisputeAmount: order.DisputeAmount,
		DisputeReason: order.DisputeReason,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.IdempotencyKey != "" {
		key := order.IdempotencyKey
		model.IdempotencyKey = &key
	}
	for i, line := range order.Lines {
		model.Lines = append(model.Lines, models.OrderLineModel{
			OrderID:   order.ID,
			Position:  i,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Token:     line.Token,
		})
	}
	return model
}

func ToDomainTransition(model *models.OrderTransitionModel) *domain.OrderTransition {
	return &domain.OrderTransition{
		Seq:         model.ID,
		OrderID:     model.OrderID,
		From:        domain.OrderStatus(model.FromStatus),
		To:          domain.OrderStatus(model.ToStatus),
		ActorID:     model.ActorID,
		ActorRole:   domain.ActorRole(model.ActorRole),
		TrackingRef: model.TrackingRef,
		Note:        model.Note,
		CreatedAt:   model.CreatedAt,
	}
}

func ToGORMTransition(transition *domain.OrderTransition) *models.OrderTransitionModel {
	return &models.OrderTransitionModel{
		ID:          transition.Seq,
		OrderID:     transition.OrderID,
		FromStatus:  string(transition.From),
		ToStatus:    string(transition.To),
		ActorID:     transition.ActorID,
		ActorRole:   string(transition.ActorRole),
		TrackingRef: transition.TrackingRef,
		Note:        transition.Note,
		CreatedAt:   transition.CreatedAt,
	}
}
