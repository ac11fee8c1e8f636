package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type HoldStatus string

const (
	HoldHeld              HoldStatus = "HELD"
	HoldPartiallyReleased HoldStatus = "PARTIALLY_RELEASED"
	HoldReleased          HoldStatus = "RELEASED"
	HoldRefunded          HoldStatus = "REFUNDED"
)

// EscrowHold reserves buyer funds for exactly one order.
// Released + Refunded never exceeds Original.
type EscrowHold struct {
	ID        string
	OrderID   string
	BuyerID   string
	SellerID  string
	Token     string
	Original  decimal.Decimal
	Released  decimal.Decimal
	Refunded  decimal.Decimal
	Status    HoldStatus
	Frozen    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (h *EscrowHold) Remaining() decimal.Decimal {
	return h.Original.Sub(h.Released).Sub(h.Refunded)
}

func (h *EscrowHold) Open() bool {
	return h.Status == HoldHeld || h.Status == HoldPartiallyReleased
}

// settle recomputes Status after a movement. A hold that ends with nothing
// released is Refunded; any release makes it Released once drained.
func (h *EscrowHold) settle() {
	switch {
	case h.Remaining().IsPositive():
		if h.Released.IsZero() && h.Refunded.IsZero() {
			h.Status = HoldHeld
		} else {
			h.Status = HoldPartiallyReleased
		}
	case h.Released.IsZero():
		h.Status = HoldRefunded
	default:
		h.Status = HoldReleased
	}
}

// ApplyRelease records amount as released. The caller checks bounds.
func (h *EscrowHold) ApplyRelease(amount decimal.Decimal) {
	h.Released = h.Released.Add(amount)
	h.settle()
}

// ApplyRefund records amount as refunded. The caller checks bounds.
func (h *EscrowHold) ApplyRefund(amount decimal.Decimal) {
	h.Refunded = h.Refunded.Add(amount)
	h.settle()
}

type MovementKind string

const (
	MovementRelease MovementKind = "RELEASE"
	MovementRefund  MovementKind = "REFUND"
)

// EscrowMovement is one release or refund applied to a hold.
type EscrowMovement struct {
	ID        string
	HoldID    string
	OrderID   string
	Kind      MovementKind
	Amount    decimal.Decimal
	Key       string
	ActorID   string
	CreatedAt time.Time
}

type EscrowRepository interface {
	CreateHold(ctx context.Context, hold *EscrowHold) error
	GetHoldByOrderID(ctx context.Context, orderID string) (*EscrowHold, error)
	UpdateHold(ctx context.Context, hold *EscrowHold) error
	AppendMovement(ctx context.Context, movement *EscrowMovement) error
	// GetMovementByKey returns ErrNotFound when no movement with key exists for the hold.
	GetMovementByKey(ctx context.Context, holdID, key string) (*EscrowMovement, error)
	ListMovements(ctx context.Context, holdID string) ([]*EscrowMovement, error)
}
