package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	AccountID string          `gorm:"not null;uniqueIndex:idx_balance_account_token,priority:1"`
	Token     string          `gorm:"not null;uniqueIndex:idx_balance_account_token,priority:2"`
	Available decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	Locked    decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	Reserved  decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BalanceModel) TableName() string {
	return "balances"
}

// TransactionModel is append-only; rows are never updated or deleted.
type TransactionModel struct {
	Seq            uint64          `gorm:"primaryKey"`
	RecordID       string          `gorm:"type:uuid;not null;uniqueIndex"`
	AccountID      string          `gorm:"not null;index:idx_tx_account_seq,priority:1"`
	Token          string          `gorm:"not null"`
	Kind           string          `gorm:"not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	AvailableDelta decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	LockedDelta    decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	ReservedDelta  decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Reference      string          `gorm:"index"`
	Note           string
	AvailableAfter decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	LockedAfter    decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	ReservedAfter  decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

func (TransactionModel) TableName() string {
	return "transaction_records"
}
