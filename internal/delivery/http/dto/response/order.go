package response

import (
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type LineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Token     string          `json:"token"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type HoldResponse struct {
	Status    string          `json:"status"`
	Original  decimal.Decimal `json:"original"`
	Released  decimal.Decimal `json:"released"`
	Refunded  decimal.Decimal `json:"refunded"`
	Remaining decimal.Decimal `json:"remaining"`
	Frozen    bool            `json:"frozen"`
}

type OrderResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	BuyerID       string          `json:"buyer_id"`
	SellerID      string          `json:"seller_id"`
	Token         string          `json:"token"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	TrackingRef   string          `json:"tracking_ref,omitempty"`
	DisputeAmount decimal.Decimal `json:"dispute_amount"`
	DisputeReason string          `json:"dispute_reason,omitempty"`
	Lines         []LineResponse  `json:"lines"`
	Escrow        *HoldResponse   `json:"escrow,omitempty"`
	Replayed      bool            `json:"replayed,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type TransitionResponse struct {
	Seq         uint64    `json:"seq"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to"`
	ActorID     string    `json:"actor_id,omitempty"`
	ActorRole   string    `json:"actor_role,omitempty"`
	TrackingRef string    `json:"tracking_ref,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type BulkResultResponse struct {
	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

func FromHold(hold *domain.EscrowHold) *HoldResponse {
	if hold == nil {
		return nil
	}
	return &HoldResponse{
		Status:    string(hold.Status),
		Original:  hold.Original,
		Released:  hold.Released,
		Refunded:  hold.Refunded,
		Remaining: hold.Remaining(),
		Frozen:    hold.Frozen,
	}
}

func FromOrder(order *domain.Order, hold *domain.EscrowHold) OrderResponse {
	lines := make([]LineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, LineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Token:     line.Token,
			Subtotal:  line.Subtotal(),
		})
	}
	return OrderResponse{
		ID:            order.ID,
		Number:        order.Number,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		Token:         order.Token,
		Total:         order.Total,
		Status:        string(order.Status),
		TrackingRef:   order.TrackingRef,
		DisputeAmount: order.DisputeAmount,
		DisputeReason: order.DisputeReason,
		Lines:         lines,
		Escrow:        FromHold(hold),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func FromOrderOutput(out *orderdto.OrderOutput) OrderResponse {
	resp := FromOrder(out.Order, out.Hold)
	resp.Replayed = out.Replayed
	return resp
}

func FromTransition(t *domain.OrderTransition) TransitionResponse {
	return TransitionResponse{
		Seq:         t.Seq,
		From:        string(t.From),
		To:          string(t.To),
		ActorID:     t.ActorID,
		ActorRole:   string(t.ActorRole),
		TrackingRef: t.TrackingRef,
		Note:        t.Note,
		CreatedAt:   t.CreatedAt,
	}
}

func FromBulkResult(r orderdto.OrderProcessingResult) BulkResultResponse {
	resp := BulkResultResponse{OrderID: r.OrderID, Success: r.Success, Status: string(r.Status)}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}
