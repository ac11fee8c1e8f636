package mappers

import (
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainBalance(model *models.BalanceModel) *domain.Balance {
	return &domain.Balance{
		AccountID: model.AccountID,
		Token:     model.Token,
		Available: model.Available,
		Locked:    model.Locked,
		Reserved:  model.Reserved,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToDomainTransaction(model *models.TransactionModel) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		Seq:            model.Seq,
		ID:             model.RecordID,
		AccountID:      model.AccountID,
		Token:          model.Token,
		Kind:           domain.TransactionKind(model.Kind),
		Amount:         model.Amount,
		AvailableDelta: model.AvailableDelta,
		LockedDelta:    model.LockedDelta,
		ReservedDelta:  model.ReservedDelta,
		Reference:      model.Reference,
		Note:           model.Note,
		AvailableAfter: model.AvailableAfter,
		LockedAfter:    model.LockedAfter,
		ReservedAfter:  model.ReservedAfter,
		CreatedAt:      model.CreatedAt,
	}
}
