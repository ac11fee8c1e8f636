package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositModel struct {
	ExternalRef   string          `gorm:"primaryKey"`
	AccountID     string          `gorm:"not null;index"`
	Token         string          `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	TransactionID string          `gorm:"type:uuid"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (DepositModel) TableName() string {
	return "deposits"
}

type WithdrawalModel struct {
	ID            string          `gorm:"primaryKey;type:uuid"`
	AccountID     string          `gorm:"not null;index"`
	Token         string          `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Destination   string          `gorm:"not null"`
	Status        string          `gorm:"not null;index:idx_withdrawal_status_processing,priority:1"`
	RailRef       string
	FailureReason string
	ProcessingAt  *time.Time `gorm:"index:idx_withdrawal_status_processing,priority:2"`
	EscalatedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (WithdrawalModel) TableName() string {
	return "withdrawal_requests"
}
