package domain

import "time"

type OrderEvent struct {
	OrderID    string    `json:"order_id"`
	Number     string    `json:"number"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	FromStatus string    `json:"from_status,omitempty"`
	Status     string    `json:"status"`
	Token      string    `json:"token"`
	Total      string    `json:"total"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type SettlementEvent struct {
	SettlementID string    `json:"settlement_id"`
	OrderID      string    `json:"order_id"`
	SellerID     string    `json:"seller_id"`
	Token        string    `json:"token"`
	Gross        string    `json:"gross"`
	Fee          string    `json:"fee"`
	Net          string    `json:"net"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type WalletEvent struct {
	Type        string    `json:"type"` // deposit, withdrawal
	Reference   string    `json:"reference"`
	AccountID   string    `json:"account_id"`
	Token       string    `json:"token"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status,omitempty"`
	Destination string    `json:"destination,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EscalationEvent asks an operator to resolve a withdrawal whose external
// state is ambiguous.
type EscalationEvent struct {
	WithdrawalID string    `json:"withdrawal_id"`
	AccountID    string    `json:"account_id"`
	Token        string    `json:"token"`
	Amount       string    `json:"amount"`
	RailRef      string    `json:"rail_ref"`
	Reason       string    `json:"reason"`
	ProcessingAt time.Time `json:"processing_at"`
	EscalatedAt  time.Time `json:"escalated_at"`
}
