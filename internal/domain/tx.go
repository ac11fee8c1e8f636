package domain

import (
	"context"
	"strings"
)

// Transactor runs fn inside one database transaction while holding the
// per-key locks named by keys. Nested calls reuse the outer transaction and
// the locks already held.
type Transactor interface {
	Atomically(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
	// AfterCommit defers fn until the outermost transaction in ctx commits.
	// It is dropped on rollback and runs at once when ctx has no transaction.
	AfterCommit(ctx context.Context, fn func())
}

// Locker provides per-key mutual exclusion with bounded waiting.
// Acquire fails with ErrBusy when the keys cannot be taken in time.
type Locker interface {
	Acquire(ctx context.Context, keys []string) (release func(), err error)
}

func BalanceKey(accountID, token string) string {
	return "balance:" + accountID + ":" + token
}

func OrderKey(orderID string) string {
	return "order:" + orderID
}

func DepositKey(externalRef string) string {
	return "deposit:" + externalRef
}

func WithdrawalKey(withdrawalID string) string {
	return "withdrawal:" + withdrawalID
}

func IdempotencyKey(scope, key string) string {
	return "idem:" + scope + ":" + strings.TrimSpace(key)
}
