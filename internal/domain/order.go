package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusDisputed       OrderStatus = "DISPUTED"
	StatusResolvedBuyer  OrderStatus = "RESOLVED_BUYER"
	StatusResolvedSeller OrderStatus = "RESOLVED_SELLER"
)

// transitions is the order lifecycle graph. It has no cycles.
//
// Disputes open from Shipped only. Delivered is terminal: delivery settles
// the seller, leaving no escrow to freeze, so there is no Delivered -> Disputed
// edge.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusDisputed},
	StatusDisputed:   {StatusResolvedBuyer, StatusResolvedSeller},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusDisputed, StatusResolvedBuyer, StatusResolvedSeller:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether the lifecycle has an edge from s to target.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type OrderLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Token     string
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

type Order struct {
	ID             string
	Number         string
	BuyerID        string
	SellerID       string
	Lines          []OrderLine
	Token          string
	Total          decimal.Decimal
	Status         OrderStatus
	TrackingRef    string
	DisputeAmount  decimal.Decimal
	DisputeReason  string
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ActorRole string

const (
	RoleBuyer    ActorRole = "buyer"
	RoleSeller   ActorRole = "seller"
	RoleOracle   ActorRole = "oracle"
	RoleOperator ActorRole = "operator"
	RoleSystem   ActorRole = "system"
)

// Actor is whoever requested an operation, as resolved by the auth layer.
type Actor struct {
	ID   string
	Role ActorRole
}

type OrderTransition struct {
	Seq         uint64
	OrderID     string
	From        OrderStatus
	To          OrderStatus
	ActorID     string
	ActorRole   ActorRole
	TrackingRef string
	Note        string
	CreatedAt   time.Time
}

type OrderFilter struct {
	BuyerID  string
	SellerID string
	Statuses []OrderStatus
	Page     int
	Limit    int
}
