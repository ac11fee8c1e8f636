package walletdto

import (
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/shopspring/decimal"
)

type DepositInput struct {
	ExternalRef string
	AccountID   string
	Token       string
	Amount      decimal.Decimal
}

type DepositOutput struct {
	Deposit   *domain.Deposit
	Duplicate bool
}

type WithdrawInput struct {
	AccountID   string
	Token       string
	Amount      decimal.Decimal
	Destination string
}

type ConfirmInput struct {
	WithdrawalID string
	Success      bool
	RailRef      string
	Reason       string
}

type EscalationOutput struct {
	Escalated []*domain.WithdrawalRequest
	CheckedAt time.Time
}
