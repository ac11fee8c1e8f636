package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowHoldModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	OrderID   string          `gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID   string          `gorm:"not null"`
	SellerID  string          `gorm:"not null"`
	Token     string          `gorm:"not null"`
	Original  decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Released  decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	Refunded  decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	Status    string          `gorm:"not null;index"`
	Frozen    bool            `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EscrowHoldModel) TableName() string {
	return "escrow_holds"
}

type EscrowMovementModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	HoldID    string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_movement_hold_key,priority:1"`
	OrderID   string          `gorm:"type:uuid;not null"`
	Kind      string          `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Key       *string         `gorm:"column:movement_key;uniqueIndex:idx_movement_hold_key,priority:2"`
	ActorID   string
	CreatedAt time.Time `gorm:"not null"`
}

func (EscrowMovementModel) TableName() string {
	return "escrow_movements"
}

type SettlementModel struct {
	ID              string          `gorm:"primaryKey;type:uuid"`
	OrderID         string          `gorm:"type:uuid;not null;index"`
	SellerID        string          `gorm:"not null"`
	PlatformAccount string          `gorm:"not null"`
	Token           string          `gorm:"not null"`
	Gross           decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Fee             decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Net             decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

func (SettlementModel) TableName() string {
	return "settlements"
}
