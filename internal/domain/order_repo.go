package domain

import "context"

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)
	AppendTransition(ctx context.Context, transition *OrderTransition) error
	ListTransitions(ctx context.Context, orderID string) ([]*OrderTransition, error)
}
