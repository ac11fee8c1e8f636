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

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := conn(ctx, r.DB).Create(orderModel).Error; err != nil {
		return err
	}
	order.CreatedAt = orderModel.CreatedAt
	order.UpdatedAt = orderModel.UpdatedAt
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := conn(ctx, r.DB).Preload("Lines", preloadLines).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, wrapNotFound(err, fmt.Sprintf("order %s", orderID))
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	var order models.OrderModel
	if err := conn(ctx, r.DB).Preload("Lines", preloadLines).First(&order, "idempotency_key = ?", key).Error; err != nil {
		return nil, wrapNotFound(err, "order by idempotency key")
	}
	return mappers.ToDomainOrder(&order), nil
}

// UpdateOrder persists the mutable fields of an order. Lines are immutable.
func (r *DefaultOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()
	result := conn(ctx, r.DB).Model(&models.OrderModel{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":         order.Status,
		"tracking_ref":   order.TrackingRef,
		"dispute_amount": order.DisputeAmount,
		"dispute_reason": order.DisputeReason,
		"updated_at":     order.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", order.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *DefaultOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int64, error) {
	var orderModels []models.OrderModel
	var total int64

	baseQuery := conn(ctx, r.DB).Model(&models.OrderModel{})
	if filter.BuyerID != "" {
		baseQuery = baseQuery.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.SellerID != "" {
		baseQuery = baseQuery.Where("seller_id = ?", filter.SellerID)
	}
	if len(filter.Statuses) > 0 {
		baseQuery = baseQuery.Where("status IN ?", filter.Statuses)
	}

	if err := baseQuery.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	err := baseQuery.
		Preload("Lines", preloadLines).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, total, nil
}

func (r *DefaultOrderRepository) AppendTransition(ctx context.Context, transition *domain.OrderTransition) error {
	model := mappers.ToGORMTransition(transition)
	if err := conn(ctx, r.DB).Create(model).Error; err != nil {
		return err
	}
	transition.Seq = model.ID
	return nil
}

func (r *DefaultOrderRepository) ListTransitions(ctx context.Context, orderID string) ([]*domain.OrderTransition, error) {
	var transitionModels []models.OrderTransitionModel
	if err := conn(ctx, r.DB).Where("order_id = ?", orderID).Order("id ASC").Find(&transitionModels).Error; err != nil {
		return nil, err
	}
	transitions := make([]*domain.OrderTransition, 0, len(transitionModels))
	for i := range transitionModels {
		transitions = append(transitions, mappers.ToDomainTransition(&transitionModels[i]))
	}
	return transitions, nil
}
