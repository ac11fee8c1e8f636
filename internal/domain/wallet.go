package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Deposit struct {
	ExternalRef   string
	AccountID     string
	Token         string
	Amount        decimal.Decimal
	TransactionID string
	CreatedAt     time.Time
}

func (d *Deposit) SameAs(accountID, token string, amount decimal.Decimal) bool {
	return d.AccountID == accountID && d.Token == token && d.Amount.Equal(amount)
}

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "PENDING"
	WithdrawalProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalFailed     WithdrawalStatus = "FAILED"
)

func (s WithdrawalStatus) Final() bool {
	return s == WithdrawalCompleted || s == WithdrawalFailed
}

type WithdrawalRequest struct {
	ID            string
	AccountID     string
	Token         string
	Amount        decimal.Decimal
	Destination   string
	Status        WithdrawalStatus
	RailRef       string
	FailureReason string
	ProcessingAt  *time.Time
	EscalatedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type DepositRepository interface {
	CreateDeposit(ctx context.Context, deposit *Deposit) error
	// GetDeposit returns ErrNotFound for an unseen external reference.
	GetDeposit(ctx context.Context, externalRef string) (*Deposit, error)
}

type WithdrawalRepository interface {
	CreateWithdrawal(ctx context.Context, w *WithdrawalRequest) error
	GetWithdrawalByID(ctx context.Context, id string) (*WithdrawalRequest, error)
	UpdateWithdrawal(ctx context.Context, w *WithdrawalRequest) error
	// FindStuckWithdrawals returns Processing, not yet escalated requests that
	// entered Processing before the given instant.
	FindStuckWithdrawals(ctx context.Context, processingBefore time.Time) ([]*WithdrawalRequest, error)
	// FindPendingWithdrawals returns up to limit Pending requests created
	// before the given instant, oldest first.
	FindPendingWithdrawals(ctx context.Context, createdBefore time.Time, limit int) ([]*WithdrawalRequest, error)
}

// TransferRail is the external chain/payment rail that moves tokens to an
// external address and confirms asynchronously.
type TransferRail interface {
	SubmitTransfer(ctx context.Context, w *WithdrawalRequest) (railRef string, err error)
}
