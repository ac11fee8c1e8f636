package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultEscrowRepository struct {
	DB *gorm.DB
}

func NewDefaultEscrowRepository(db *gorm.DB) *DefaultEscrowRepository {
	return &DefaultEscrowRepository{DB: db}
}

func (r *DefaultEscrowRepository) CreateHold(ctx context.Context, hold *domain.EscrowHold) error {
	model := mappers.ToGORMHold(hold)
	if err := conn(ctx, r.DB).Create(model).Error; err != nil {
		return err
	}
	hold.CreatedAt, hold.UpdatedAt = model.CreatedAt, model.UpdatedAt
	return nil
}

func (r *DefaultEscrowRepository) GetHoldByOrderID(ctx context.Context, orderID string) (*domain.EscrowHold, error) {
	var model models.EscrowHoldModel
	err := conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "order_id = ?", orderID).Error
	if err != nil {
		return nil, wrapNotFound(err, fmt.Sprintf("escrow hold for order %s", orderID))
	}
	return mappers.ToDomainHold(&model), nil
}

func (r *DefaultEscrowRepository) UpdateHold(ctx context.Context, hold *domain.EscrowHold) error {
	hold.UpdatedAt = time.Now().UTC()
	result := conn(ctx, r.DB).Model(&models.EscrowHoldModel{}).Where("id = ?", hold.ID).Updates(map[string]any{
		"released":   hold.Released,
		"refunded":   hold.Refunded,
		"status":     string(hold.Status),
		"frozen":     hold.Frozen,
		"updated_at": hold.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("escrow hold %s: %w", hold.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *DefaultEscrowRepository) AppendMovement(ctx context.Context, movement *domain.EscrowMovement) error {
	return conn(ctx, r.DB).Create(mappers.ToGORMMovement(movement)).Error
}

func (r *DefaultEscrowRepository) GetMovementByKey(ctx context.Context, holdID, key string) (*domain.EscrowMovement, error) {
	var model models.EscrowMovementModel
	if err := conn(ctx, r.DB).First(&model, "hold_id = ? AND movement_key = ?", holdID, key).Error; err != nil {
		return nil, wrapNotFound(err, "escrow movement")
	}
	return mappers.ToDomainMovement(&model), nil
}

func (r *DefaultEscrowRepository) ListMovements(ctx context.Context, holdID string) ([]*domain.EscrowMovement, error) {
	var movementModels []models.EscrowMovementModel
	if err := conn(ctx, r.DB).Where("hold_id = ?", holdID).Order("created_at ASC").Find(&movementModels).Error; err != nil {
		return nil, err
	}
	movements := make([]*domain.EscrowMovement, 0, len(movementModels))
	for i := range movementModels {
		movements = append(movements, mappers.ToDomainMovement(&movementModels[i]))
	}
	return movements, nil
}

type DefaultSettlementRepository struct {
	DB *gorm.DB
}

func NewDefaultSettlementRepository(db *gorm.DB) *DefaultSettlementRepository {
	return &DefaultSettlementRepository{DB: db}
}

func (r *DefaultSettlementRepository) CreateSettlement(ctx context.Context, settlement *domain.Settlement) error {
	return conn(ctx, r.DB).Create(mappers.ToGORMSettlement(settlement)).Error
}

func (r *DefaultSettlementRepository) ListSettlementsByOrderID(ctx context.Context, orderID string) ([]*domain.Settlement, error) {
	var settlementModels []models.SettlementModel
	if err := conn(ctx, r.DB).Where("order_id = ?", orderID).Order("created_at ASC").Find(&settlementModels).Error; err != nil {
		return nil, err
	}
	settlements := make([]*domain.Settlement, 0, len(settlementModels))
	for i := range settlementModels {
		settlements = append(settlements, mappers.ToDomainSettlement(&settlementModels[i]))
	}
	return settlements, nil
}
