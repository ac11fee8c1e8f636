package request

import "github.com/shopspring/decimal"

type LineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Token     string          `json:"token"`
}

type CreateOrderRequest struct {
	BuyerID        string        `json:"buyer_id"`
	SellerID       string        `json:"seller_id"`
	Lines          []LineRequest `json:"lines"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
}

type TransitionRequest struct {
	Target        string           `json:"target"`
	TrackingRef   string           `json:"tracking_ref,omitempty"`
	DisputeAmount *decimal.Decimal `json:"dispute_amount,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

type ReleaseRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	ReleaseKey string          `json:"release_key"`
}

type BulkTransitionRequest struct {
	OrderIDs    []string `json:"order_ids"`
	Target      string   `json:"target"`
	TrackingRef string   `json:"tracking_ref,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}
