package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultDepositRepository struct {
	DB *gorm.DB
}

func NewDefaultDepositRepository(db *gorm.DB) *DefaultDepositRepository {
	return &DefaultDepositRepository{DB: db}
}

func (r *DefaultDepositRepository) CreateDeposit(ctx context.Context, deposit *domain.Deposit) error {
	return conn(ctx, r.DB).Create(mappers.ToGORMDeposit(deposit)).Error
}

func (r *DefaultDepositRepository) GetDeposit(ctx context.Context, externalRef string) (*domain.Deposit, error) {
	var model models.DepositModel
	if err := conn(ctx, r.DB).First(&model, "external_ref = ?", externalRef).Error; err != nil {
		return nil, wrapNotFound(err, fmt.Sprintf("deposit %s", externalRef))
	}
	return mappers.ToDomainDeposit(&model), nil
}

type DefaultWithdrawalRepository struct {
	DB *gorm.DB
}

func NewDefaultWithdrawalRepository(db *gorm.DB) *DefaultWithdrawalRepository {
	return &DefaultWithdrawalRepository{DB: db}
}

func (r *DefaultWithdrawalRepository) CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	model := mappers.ToGORMWithdrawal(w)
	if err := conn(ctx, r.DB).Create(model).Error; err != nil {
		return err
	}
	w.CreatedAt, w.UpdatedAt = model.CreatedAt, model.UpdatedAt
	return nil
}

func (r *DefaultWithdrawalRepository) GetWithdrawalByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	var model models.WithdrawalModel
	if err := conn(ctx, r.DB).First(&model, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, fmt.Sprintf("withdrawal %s", id))
	}
	return mappers.ToDomainWithdrawal(&model), nil
}

func (r *DefaultWithdrawalRepository) UpdateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	w.UpdatedAt = time.Now().UTC()
	result := conn(ctx, r.DB).Model(&models.WithdrawalModel{}).Where("id = ?", w.ID).Updates(map[string]any{
		"status":         string(w.Status),
		"rail_ref":       w.RailRef,
		"failure_reason": w.FailureReason,
		"processing_at":  w.ProcessingAt,
		"escalated_at":   w.EscalatedAt,
		"updated_at":     w.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("withdrawal %s: %w", w.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *DefaultWithdrawalRepository) FindStuckWithdrawals(ctx context.Context, processingBefore time.Time) ([]*domain.WithdrawalRequest, error) {
	var withdrawalModels []models.WithdrawalModel
	err := conn(ctx, r.DB).
		Where("status = ? AND escalated_at IS NULL AND processing_at < ?", string(domain.WithdrawalProcessing), processingBefore).
		Order("processing_at ASC").
		Find(&withdrawalModels).Error
	if err != nil {
		return nil, err
	}
	withdrawals := make([]*domain.WithdrawalRequest, 0, len(withdrawalModels))
	for i := range withdrawalModels {
		withdrawals = append(withdrawals, mappers.ToDomainWithdrawal(&withdrawalModels[i]))
	}
	return withdrawals, nil
}

func (r *DefaultWithdrawalRepository) FindPendingWithdrawals(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.WithdrawalRequest, error) {
	var withdrawalModels []models.WithdrawalModel
	err := conn(ctx, r.DB).
		Where("status = ? AND created_at < ?", string(domain.WithdrawalPending), createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&withdrawalModels).Error
	if err != nil {
		return nil, err
	}
	withdrawals := make([]*domain.WithdrawalRequest, 0, len(withdrawalModels))
	for i := range withdrawalModels {
		withdrawals = append(withdrawals, mappers.ToDomainWithdrawal(&withdrawalModels[i]))
	}
	return withdrawals, nil
}
