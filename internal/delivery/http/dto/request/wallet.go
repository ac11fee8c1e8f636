package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	ExternalRef string          `json:"external_ref"`
	AccountID   string          `json:"account_id"`
	Token       string          `json:"token"`
	Amount      decimal.Decimal `json:"amount"`
}

type WithdrawRequest struct {
	AccountID   string          `json:"account_id"`
	Token       string          `json:"token"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

type ConfirmRequest struct {
	Success bool   `json:"success"`
	RailRef string `json:"rail_ref,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type EscalateRequest struct {
	// Now overrides the sweep instant; zero means the server clock.
	Now *time.Time `json:"now,omitempty"`
}
