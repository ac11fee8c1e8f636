package mappers

import (
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainDeposit(model *models.DepositModel) *domain.Deposit {
	return &domain.Deposit{
		ExternalRef:   model.ExternalRef,
		AccountID:     model.AccountID,
		Token:         model.Token,
		Amount:        model.Amount,
		TransactionID: model.TransactionID,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMDeposit(deposit *domain.Deposit) *models.DepositModel {
	return &models.DepositModel{
		ExternalRef:   deposit.ExternalRef,
		AccountID:     deposit.AccountID,
		Token:         deposit.Token,
		Amount:        deposit.Amount,
		TransactionID: deposit.TransactionID,
		CreatedAt:     deposit.CreatedAt,
	}
}

func ToDomainWithdrawal(model *models.WithdrawalModel) *domain.WithdrawalRequest {
	return &domain.WithdrawalRequest{
		ID:            model.ID,
		AccountID:     model.AccountID,
		Token:         model.Token,
		Amount:        model.Amount,
		Destination:   model.Destination,
		Status:        domain.WithdrawalStatus(model.Status),
		RailRef:       model.RailRef,
		FailureReason: model.FailureReason,
		ProcessingAt:  model.ProcessingAt,
		EscalatedAt:   model.EscalatedAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMWithdrawal(w *domain.WithdrawalRequest) *models.WithdrawalModel {
	return &models.WithdrawalModel{
		ID:            w.ID,
		AccountID:     w.AccountID,
		Token:         w.Token,
		Amount:        w.Amount,
		Destination:   w.Destination,
		Status:        string(w.Status),
		RailRef:       w.RailRef,
		FailureReason: w.FailureReason,
		ProcessingAt:  w.ProcessingAt,
		EscalatedAt:   w.EscalatedAt,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}
