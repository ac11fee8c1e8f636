package usecase

import (
	"context"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
	orderdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/order"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.OrderOutput, error)
	Transition(ctx context.Context, input *orderdto.TransitionInput) (*orderdto.OrderOutput, error)
	ReleasePartial(ctx context.Context, input *orderdto.ReleaseInput) (*orderdto.OrderOutput, error)
	BulkTransition(ctx context.Context, input *orderdto.BulkTransitionInput) []orderdto.OrderProcessingResult

	GetOrderByID(ctx context.Context, orderID string) (*orderdto.OrderOutput, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int64, error)
	ListTransitions(ctx context.Context, orderID string) ([]*domain.OrderTransition, error)
}

type DefaultOrderUsecase struct {
	OrderRepo  domain.OrderRepository
	Escrow     domain.EscrowUsecase
	Transactor domain.Transactor
	Tokens     domain.Tokens
	Emitter    *events.Emitter
	Metrics    *metrics.SettlementMetrics
	// BulkConcurrency bounds how many orders a bulk request processes at once.
	BulkConcurrency int
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	escrow domain.EscrowUsecase,
	transactor domain.Transactor,
	tokens domain.Tokens,
	emitter *events.Emitter,
	settlementMetrics *metrics.SettlementMetrics,
) *DefaultOrderUsecase {
	return &DefaultOrderUsecase{
		OrderRepo:       orderRepo,
		Escrow:          escrow,
		Transactor:      transactor,
		Tokens:          tokens,
		Emitter:         emitter,
		Metrics:         settlementMetrics,
		BulkConcurrency: 4,
	}
}

func (uc *DefaultOrderUsecase) GetOrderByID(ctx context.Context, orderID string) (*orderdto.OrderOutput, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	hold, err := uc.Escrow.GetHold(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &orderdto.OrderOutput{Order: order, Hold: hold}, nil
}

func (uc *DefaultOrderUsecase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int64, error) {
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return uc.OrderRepo.ListOrders(ctx, filter)
}

func (uc *DefaultOrderUsecase) ListTransitions(ctx context.Context, orderID string) ([]*domain.OrderTransition, error) {
	if _, err := uc.OrderRepo.GetOrderByID(ctx, orderID); err != nil {
		return nil, err
	}
	return uc.OrderRepo.ListTransitions(ctx, orderID)
}
