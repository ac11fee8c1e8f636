package mappers

import (
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainHold(model *models.EscrowHoldModel) *domain.EscrowHold {
	return &domain.EscrowHold{
		ID:        model.ID,
		OrderID:   model.OrderID,
		BuyerID:   model.BuyerID,
		SellerID:  model.SellerID,
		Token:     model.Token,
		Original:  model.Original,
		Released:  model.Released,
		Refunded:  model.Refunded,
		Status:    domain.HoldStatus(model.Status),
		Frozen:    model.Frozen,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToGORMHold(hold *domain.EscrowHold) *models.EscrowHoldModel {
	return &models.EscrowHoldModel{
		ID:        hold.ID,
		OrderID:   hold.OrderID,
		BuyerID:   hold.BuyerID,
		SellerID:  hold.SellerID,
		Token:     hold.Token,
		Original:  hold.Original,
		Released:  hold.Released,
		Refunded:  hold.Refunded,
		Status:    string(hold.Status),
		Frozen:    hold.Frozen,
		CreatedAt: hold.CreatedAt,
		UpdatedAt: hold.UpdatedAt,
	}
}

func ToDomainMovement(model *models.EscrowMovementModel) *domain.EscrowMovement {
	movement := &domain.EscrowMovement{
		ID:        model.ID,
		HoldID:    model.HoldID,
		OrderID:   model.OrderID,
		Kind:      domain.MovementKind(model.Kind),
		Amount:    model.Amount,
		ActorID:   model.ActorID,
		CreatedAt: model.CreatedAt,
	}
	if model.Key != nil {
		movement.Key = *model.Key
	}
	return movement
}

func ToGORMMovement(movement *domain.EscrowMovement) *models.EscrowMovementModel {
	model := &models.EscrowMovementModel{
		ID:        movement.ID,
		HoldID:    movement.HoldID,
		OrderID:   movement.OrderID,
		Kind:      string(movement.Kind),
		Amount:    movement.Amount,
		ActorID:   movement.ActorID,
		CreatedAt: movement.CreatedAt,
	}
	if movement.Key != "" {
		key := movement.Key
		model.Key = &key
	}
	return model
}

func ToDomainSettlement(model *models.SettlementModel) *domain.Settlement {
	return &domain.Settlement{
		ID:              model.ID,
		OrderID:         model.OrderID,
		SellerID:        model.SellerID,
		PlatformAccount: model.PlatformAccount,
		Token:           model.Token,
		Gross:           model.Gross,
		Fee:             model.Fee,
		Net:             model.Net,
		CreatedAt:       model.CreatedAt,
	}
}

func ToGORMSettlement(settlement *domain.Settlement) *models.SettlementModel {
	return &models.SettlementModel{
		ID:              settlement.ID,
		OrderID:         settlement.OrderID,
		SellerID:        settlement.SellerID,
		PlatformAccount: settlement.PlatformAccount,
		Token:           settlement.Token,
		Gross:           settlement.Gross,
		Fee:             settlement.Fee,
		Net:             settlement.Net,
		CreatedAt:       settlement.CreatedAt,
	}
}
