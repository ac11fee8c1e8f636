package models

import (
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID             string             `gorm:"primaryKey;type:uuid"`
	Number         string             `gorm:"not null;uniqueIndex"`
	BuyerID        string             `gorm:"not null;index:idx_order_buyer_created,priority:1"`
	SellerID       string             `gorm:"not null;index:idx_order_seller_created,priority:1"`
	Token          string             `gorm:"not null"`
	Total          decimal.Decimal    `gorm:"type:numeric(38,18);not null"`
	Status         domain.OrderStatus `gorm:"not null;index"`
	TrackingRef    string
	DisputeAmount  decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	DisputeReason  string
	IdempotencyKey *string          `gorm:"uniqueIndex"`
	Lines          []OrderLineModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time        `gorm:"index:idx_order_buyer_created,priority:2;index:idx_order_seller_created,priority:2"`
	UpdatedAt      time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderLineModel struct {
	ID        uint64          `gorm:"primaryKey"`
	OrderID   string          `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Token     string          `gorm:"not null"`
}

func (OrderLineModel) TableName() string {
	return "order_lines"
}

type OrderTransitionModel struct {
	ID          uint64 `gorm:"primaryKey"`
	OrderID     string `gorm:"type:uuid;not null;index"`
	FromStatus  string
	ToStatus    string `gorm:"not null"`
	ActorID     string
	ActorRole   string
	TrackingRef string
	Note        string
	CreatedAt   time.Time `gorm:"not null"`
}

func (OrderTransitionModel) TableName() string {
	return "order_transitions"
}
