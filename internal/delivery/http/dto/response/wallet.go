package response

import (
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	ledgerUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/ledger"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	Token     string          `json:"token"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Reserved  decimal.Decimal `json:"reserved"`
	Total     decimal.Decimal `json:"total"`
}

type BalancesResponse struct {
	AccountID string            `json:"account_id"`
	Balances  []BalanceResponse `json:"balances"`
}

type TransactionResponse struct {
	Seq            uint64          `json:"seq"`
	ID             string          `json:"id"`
	Token          string          `json:"token"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	AvailableDelta decimal.Decimal `json:"available_delta"`
	LockedDelta    decimal.Decimal `json:"locked_delta"`
	ReservedDelta  decimal.Decimal `json:"reserved_delta"`
	Reference      string          `json:"reference,omitempty"`
	Note           string          `json:"note,omitempty"`
	AvailableAfter decimal.Decimal `json:"available_after"`
	LockedAfter    decimal.Decimal `json:"locked_after"`
	ReservedAfter  decimal.Decimal `json:"reserved_after"`
	CreatedAt      time.Time       `json:"created_at"`
}

type TransactionsResponse struct {
	Items      []TransactionResponse `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

type TokenAuditResponse struct {
	Token             string          `json:"token"`
	Records           int             `json:"records"`
	ExpectedTotal     decimal.Decimal `json:"expected_total"`
	ActualTotal       decimal.Decimal `json:"actual_total"`
	ExpectedAvailable decimal.Decimal `json:"expected_available"`
	ExpectedLocked    decimal.Decimal `json:"expected_locked"`
	ExpectedReserved  decimal.Decimal `json:"expected_reserved"`
	Consistent        bool            `json:"consistent"`
}

type AuditResponse struct {
	AccountID  string               `json:"account_id"`
	Consistent bool                 `json:"consistent"`
	Tokens     []TokenAuditResponse `json:"tokens"`
}

type DepositResponse struct {
	ExternalRef   string          `json:"external_ref"`
	AccountID     string          `json:"account_id"`
	Token         string          `json:"token"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Duplicate     bool            `json:"duplicate"`
	CreatedAt     time.Time       `json:"created_at"`
}

type WithdrawalResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Token         string          `json:"token"`
	Amount        decimal.Decimal `json:"amount"`
	Destination   string          `json:"destination"`
	Status        string          `json:"status"`
	RailRef       string          `json:"rail_ref,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	ProcessingAt  *time.Time      `json:"processing_at,omitempty"`
	EscalatedAt   *time.Time      `json:"escalated_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type EscalationResponse struct {
	CheckedAt time.Time            `json:"checked_at"`
	Escalated []WithdrawalResponse `json:"escalated"`
}

func FromBalance(b *domain.Balance) BalanceResponse {
	return BalanceResponse{
		Token:     b.Token,
		Available: b.Available,
		Locked:    b.Locked,
		Reserved:  b.Reserved,
		Total:     b.Total(),
	}
}

func FromTransaction(r *domain.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		Seq:            r.Seq,
		ID:             r.ID,
		Token:          r.Token,
		Kind:           string(r.Kind),
		Amount:         r.Amount,
		AvailableDelta: r.AvailableDelta,
		LockedDelta:    r.LockedDelta,
		ReservedDelta:  r.ReservedDelta,
		Reference:      r.Reference,
		Note:           r.Note,
		AvailableAfter: r.AvailableAfter,
		LockedAfter:    r.LockedAfter,
		ReservedAfter:  r.ReservedAfter,
		CreatedAt:      r.CreatedAt,
	}
}

func FromReport(report *ledgerUsecase.ReconciliationReport) AuditResponse {
	resp := AuditResponse{
		AccountID:  report.AccountID,
		Consistent: report.Consistent,
		Tokens:     make([]TokenAuditResponse, 0, len(report.Tokens)),
	}
	for _, t := range report.Tokens {
		resp.Tokens = append(resp.Tokens, TokenAuditResponse{
			Token:             t.Token,
			Records:           t.Records,
			ExpectedTotal:     t.ExpectedTotal,
			ActualTotal:       t.ActualTotal,
			ExpectedAvailable: t.ExpectedAvailable,
			ExpectedLocked:    t.ExpectedLocked,
			ExpectedReserved:  t.ExpectedReserved,
			Consistent:        t.Consistent,
		})
	}
	return resp
}

func FromDeposit(out *walletdto.DepositOutput) DepositResponse {
	d := out.Deposit
	return DepositResponse{
		ExternalRef:   d.ExternalRef,
		AccountID:     d.AccountID,
		Token:         d.Token,
		Amount:        d.Amount,
		TransactionID: d.TransactionID,
		Duplicate:     out.Duplicate,
		CreatedAt:     d.CreatedAt,
	}
}

func FromWithdrawal(w *domain.WithdrawalRequest) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            w.ID,
		AccountID:     w.AccountID,
		Token:         w.Token,
		Amount:        w.Amount,
		Destination:   w.Destination,
		Status:        string(w.Status),
		RailRef:       w.RailRef,
		FailureReason: w.FailureReason,
		ProcessingAt:  w.ProcessingAt,
		EscalatedAt:   w.EscalatedAt,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}
