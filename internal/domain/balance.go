package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the state of one (account, token) pair.
// Locked holds escrow; Reserved holds funds of pending withdrawals.
type Balance struct {
	AccountID string
	Token     string
	Available decimal.Decimal
	Locked    decimal.Decimal
	Reserved  decimal.Decimal
	UpdatedAt time.Time
}

func (b Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Locked).Add(b.Reserved)
}

type TransactionKind string

const (
	KindDeposit       TransactionKind = "DEPOSIT"
	KindWithdraw      TransactionKind = "WITHDRAW"
	KindEscrowLock    TransactionKind = "ESCROW_LOCK"
	KindEscrowRelease TransactionKind = "ESCROW_RELEASE"
	KindEscrowRefund  TransactionKind = "ESCROW_REFUND"
	KindSettlement    TransactionKind = "SETTLEMENT"
)

// Movement describes one atomic change of a balance row. Deltas are signed.
type Movement struct {
	AccountID      string
	Token          string
	Kind           TransactionKind
	AvailableDelta decimal.Decimal
	LockedDelta    decimal.Decimal
	ReservedDelta  decimal.Decimal
	Reference      string
	Note           string
}

// Net is the change of the account's total holdings.
func (m Movement) Net() decimal.Decimal {
	return m.AvailableDelta.Add(m.LockedDelta).Add(m.ReservedDelta)
}

// TransactionRecord is the immutable audit entry written for every Movement.
// Amount is the signed effect on total holdings: positive credits, negative debits.
type TransactionRecord struct {
	Seq            uint64
	ID             string
	AccountID      string
	Token          string
	Kind           TransactionKind
	Amount         decimal.Decimal
	AvailableDelta decimal.Decimal
	LockedDelta    decimal.Decimal
	ReservedDelta  decimal.Decimal
	Reference      string
	Note           string
	AvailableAfter decimal.Decimal
	LockedAfter    decimal.Decimal
	ReservedAfter  decimal.Decimal
	CreatedAt      time.Time
}

type TransactionFilter struct {
	AccountID string
	Token     string
	// BeforeSeq limits results to records older than this sequence number; 0 means newest.
	BeforeSeq uint64
	Limit     int
}

type LedgerRepository interface {
	// Apply mutates the balance row and appends a TransactionRecord atomically.
	// It fails with ErrInsufficientFunds when any bucket would become negative.
	Apply(ctx context.Context, mv Movement) (*TransactionRecord, error)
	GetBalance(ctx context.Context, accountID, token string) (*Balance, error)
	ListBalances(ctx context.Context, accountID string) ([]*Balance, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*TransactionRecord, error)
}
