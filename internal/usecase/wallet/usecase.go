package usecase

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
)

type WalletUsecase interface {
	Deposit(ctx context.Context, input *walletdto.DepositInput) (*walletdto.DepositOutput, error)
	Withdraw(ctx context.Context, input *walletdto.WithdrawInput) (*domain.WithdrawalRequest, error)
	Dispatch(ctx context.Context, withdrawalID string) (*domain.WithdrawalRequest, error)
	DispatchPending(ctx context.Context, createdBefore time.Time, limit int) (int, error)
	Confirm(ctx context.Context, input *walletdto.ConfirmInput) (*domain.WithdrawalRequest, error)
	EscalateStuck(ctx context.Context, now time.Time) (*walletdto.EscalationOutput, error)
	GetWithdrawal(ctx context.Context, withdrawalID string) (*domain.WithdrawalRequest, error)
}

type DefaultWalletUsecase struct {
	DepositRepo    domain.DepositRepository
	WithdrawalRepo domain.WithdrawalRepository
	Ledger         domain.LedgerUsecase
	Rail           domain.TransferRail
	Transactor     domain.Transactor
	Tokens         domain.Tokens
	Emitter        *events.Emitter
	Metrics        *metrics.SettlementMetrics
	// WithdrawalTimeout is how long a request may stay Processing before
	// EscalateStuck hands it to an operator.
	WithdrawalTimeout time.Duration
}

func NewDefaultWalletUsecase(
	depositRepo domain.DepositRepository,
	withdrawalRepo domain.WithdrawalRepository,
	ledger domain.LedgerUsecase,
	rail domain.TransferRail,
	transactor domain.Transactor,
	tokens domain.Tokens,
	emitter *events.Emitter,
	settlementMetrics *metrics.SettlementMetrics,
	withdrawalTimeout time.Duration,
) *DefaultWalletUsecase {
	return &DefaultWalletUsecase{
		DepositRepo:       depositRepo,
		WithdrawalRepo:    withdrawalRepo,
		Ledger:            ledger,
		Rail:              rail,
		Transactor:        transactor,
		Tokens:            tokens,
		Emitter:           emitter,
		Metrics:           settlementMetrics,
		WithdrawalTimeout: withdrawalTimeout,
	}
}

func (uc *DefaultWalletUsecase) GetWithdrawal(ctx context.Context, withdrawalID string) (*domain.WithdrawalRequest, error) {
	return uc.WithdrawalRepo.GetWithdrawalByID(ctx, withdrawalID)
}

func withdrawalEvent(w *domain.WithdrawalRequest) domain.WalletEvent {
	return domain.WalletEvent{
		Type:        "withdrawal",
		Reference:   w.ID,
		AccountID:   w.AccountID,
		Token:       w.Token,
		Amount:      w.Amount.String(),
		Status:      string(w.Status),
		Destination: w.Destination,
		OccurredAt:  w.UpdatedAt,
	}
}
