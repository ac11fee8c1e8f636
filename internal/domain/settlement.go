package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Settlement records one release of escrow to a seller, net of the platform fee.
type Settlement struct {
	ID              string
	OrderID         string
	SellerID        string
	PlatformAccount string
	Token           string
	Gross           decimal.Decimal
	Fee             decimal.Decimal
	Net             decimal.Decimal
	CreatedAt       time.Time
}

type SettlementRepository interface {
	CreateSettlement(ctx context.Context, settlement *Settlement) error
	ListSettlementsByOrderID(ctx context.Context, orderID string) ([]*Settlement, error)
}

// FeePolicy computes the seller-side platform fee for a gross amount.
type FeePolicy interface {
	SellerFee(token string, gross decimal.Decimal) decimal.Decimal
}
