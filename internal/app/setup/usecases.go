package setup

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/client"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
	escrowUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/escrow"
	ledgerUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/ledger"
	orderUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/order"
	settlementUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/settlement"
	walletUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/wallet"
)

type UseCases struct {
	Ledger     *ledgerUsecase.DefaultLedgerUsecase
	Escrow     *escrowUsecase.DefaultEscrowUsecase
	Settlement *settlementUsecase.DefaultSettlementUsecase
	Order      *orderUsecase.DefaultOrderUsecase
	Wallet     *walletUsecase.DefaultWalletUsecase
}

// Options carries everything besides repositories that the usecases need.
type Options struct {
	Tokens            domain.Tokens
	FeePolicy         domain.FeePolicy
	PlatformAccount   string
	Rail              domain.TransferRail
	Emitter           *events.Emitter
	Metrics           *metrics.SettlementMetrics
	WithdrawalTimeout time.Duration
}

func NewUseCases(repos *Repositories, transactor domain.Transactor, opts Options) *UseCases {
	ledger := ledgerUsecase.NewDefaultLedgerUsecase(repos.LedgerRepo, transactor, opts.Tokens, opts.Metrics)
	settlement := settlementUsecase.NewDefaultSettlementUsecase(
		repos.SettlementRepo,
		ledger,
		transactor,
		opts.FeePolicy,
		opts.PlatformAccount,
		opts.Emitter,
		opts.Metrics,
	)
	escrow := escrowUsecase.NewDefaultEscrowUsecase(repos.EscrowRepo, ledger, settlement, transactor, opts.Metrics)
	order := orderUsecase.NewDefaultOrderUsecase(repos.OrderRepo, escrow, transactor, opts.Tokens, opts.Emitter, opts.Metrics)
	wallet := walletUsecase.NewDefaultWalletUsecase(
		repos.DepositRepo,
		repos.WithdrawalRepo,
		ledger,
		opts.Rail,
		transactor,
		opts.Tokens,
		opts.Emitter,
		opts.Metrics,
		opts.WithdrawalTimeout,
	)

	return &UseCases{
		Ledger:     ledger,
		Escrow:     escrow,
		Settlement: settlement,
		Order:      order,
		Wallet:     wallet,
	}
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config

	tokens := domain.DefaultTokens()
	if len(cfg.Tokens) > 0 {
		tokens = domain.Tokens(cfg.Tokens)
	}

	percent, overrides, err := cfg.Fees.SellerFeePercents()
	if err != nil {
		return nil, fmt.Errorf("fee policy: %w", err)
	}
	if err := settlementUsecase.CheckOverrides(overrides, tokens); err != nil {
		return nil, fmt.Errorf("fee policy: %w", err)
	}
	if cfg.Wallet.RailURL == "" {
		return nil, fmt.Errorf("wallet.rail_url is required")
	}

	return NewUseCases(deps.Repositories, deps.Transactor, Options{
		Tokens:            tokens,
		FeePolicy:         settlementUsecase.NewPercentFeePolicy(percent, overrides, tokens),
		PlatformAccount:   cfg.Fees.PlatformAccount,
		Rail:              client.NewHTTPRailClient(cfg.Wallet.RailURL, cfg.Wallet.RailTimeout, deps.Metrics),
		Emitter:           events.NewEmitter(deps.Publisher),
		Metrics:           deps.Metrics,
		WithdrawalTimeout: cfg.Wallet.WithdrawalTimeout,
	}), nil
}
