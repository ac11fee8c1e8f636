package orderdto

import "github.com/LavaJover/shvark-settlement-service/internal/domain"

type OrderOutput struct {
	Order *domain.Order
	Hold  *domain.EscrowHold
	// Replayed is set when the request matched state that already existed.
	Replayed bool
}

type OrderProcessingResult struct {
	OrderID string
	Success bool
	Status  domain.OrderStatus
	Err     error
}
