package orderdto

import (
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/shopspring/decimal"
)

type LineInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Token     string
}

type CreateOrderInput struct {
	BuyerID  string
	SellerID string
	Lines    []LineInput
	// IdempotencyKey is optional; a retried request with the same key
	// returns the order created first.
	IdempotencyKey string
	Actor          domain.Actor
}

type TransitionInput struct {
	OrderID     string
	Target      domain.OrderStatus
	TrackingRef string
	// DisputeAmount applies to Disputed only; nil disputes the whole remaining hold.
	DisputeAmount *decimal.Decimal
	Reason        string
	Actor         domain.Actor
}

type ReleaseInput struct {
	OrderID    string
	Amount     decimal.Decimal
	ReleaseKey string
	Actor      domain.Actor
}

type BulkTransitionInput struct {
	OrderIDs    []string
	Target      domain.OrderStatus
	TrackingRef string
	Reason      string
	Actor       domain.Actor
}
