package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerEntry names one ledger operation. Kind is optional; each operation
// has its own default.
type LedgerEntry struct {
	AccountID string
	Token     string
	Amount    decimal.Decimal
	Kind      TransactionKind
	Reference string
	Note      string
}

// LedgerUsecase is the only writer of balances. Every call is atomic per
// (account, token) and appends exactly one TransactionRecord.
type LedgerUsecase interface {
	Credit(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	Debit(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	Lock(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	Unlock(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	// ReleaseLocked removes locked funds from the account; they leave through
	// a matching credit elsewhere.
	ReleaseLocked(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	Reserve(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	CommitReserved(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)
	ReleaseReserved(ctx context.Context, e LedgerEntry) (*TransactionRecord, error)

	Balance(ctx context.Context, accountID, token string) (*Balance, error)
}

type EscrowUsecase interface {
	OpenHold(ctx context.Context, order *Order) (*EscrowHold, error)
	// Release and Refund with a non-empty key already applied to the hold
	// return the hold unchanged.
	Release(ctx context.Context, orderID string, amount decimal.Decimal, key, actorID string) (*EscrowHold, error)
	Refund(ctx context.Context, orderID string, amount decimal.Decimal, key, actorID string) (*EscrowHold, error)
	Freeze(ctx context.Context, orderID string) (*EscrowHold, error)
	Unfreeze(ctx context.Context, orderID string) (*EscrowHold, error)
	GetHold(ctx context.Context, orderID string) (*EscrowHold, error)
	// MovementApplied reports whether a movement with key exists for the order's hold.
	MovementApplied(ctx context.Context, orderID, key string) (bool, error)
}

type SettlementUsecase interface {
	// LockKeys lists the balance keys Settle writes for hold.
	LockKeys(hold *EscrowHold) []string
	// Settle pays gross released from hold to its seller net of the platform fee.
	Settle(ctx context.Context, hold *EscrowHold, gross decimal.Decimal) (*Settlement, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Settlement, error)
}
