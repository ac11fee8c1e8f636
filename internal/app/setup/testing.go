package setup

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/locker"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
	settlementUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/settlement"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const TestPlatformAccount = "platform"

// TestEnv is a fully wired set of usecases over a private sqlite database.
type TestEnv struct {
	*UseCases
	DB           *gorm.DB
	Repositories *Repositories
	Transactor   *repository.DefaultTransactor
	Publisher    *events.MemoryPublisher
	Metrics      *metrics.SettlementMetrics
}

// NewTestEnv wires usecases with a 2% seller fee. rail may be nil for tests
// that never withdraw.
func NewTestEnv(t testing.TB, rail domain.TransferRail) *TestEnv {
	t.Helper()
	db := postgres.NewTestDB(t)
	repos := NewRepositories(db)
	transactor := repository.NewDefaultTransactor(db, locker.NewLocalLocker(), 5*time.Second)
	pub := events.NewMemoryPublisher()
	settlementMetrics := metrics.NewSettlementMetrics(prometheus.NewRegistry())
	tokens := domain.DefaultTokens()

	uc := NewUseCases(repos, transactor, Options{
		Tokens:            tokens,
		FeePolicy:         settlementUsecase.NewPercentFeePolicy(decimal.NewFromInt(2), nil, tokens),
		PlatformAccount:   TestPlatformAccount,
		Rail:              rail,
		Emitter:           events.NewEmitter(pub),
		Metrics:           settlementMetrics,
		WithdrawalTimeout: 30 * time.Minute,
	})
	return &TestEnv{
		UseCases:     uc,
		DB:           db,
		Repositories: repos,
		Transactor:   transactor,
		Publisher:    pub,
		Metrics:      settlementMetrics,
	}
}

// Fund credits amount of token to account, failing t on error.
func (e *TestEnv) Fund(t testing.TB, account, token, amount string) {
	t.Helper()
	_, err := e.Ledger.Credit(context.Background(), domain.LedgerEntry{
		AccountID: account,
		Token:     token,
		Amount:    decimal.RequireFromString(amount),
		Note:      "test funding",
	})
	if err != nil {
		t.Fatalf("fund %s %s %s: %v", account, amount, token, err)
	}
}

// Balance returns the balance of account in token, failing t on error.
func (e *TestEnv) Balance(t testing.TB, account, token string) *domain.Balance {
	t.Helper()
	b, err := e.Ledger.Balance(context.Background(), account, token)
	if err != nil {
		t.Fatalf("balance %s %s: %v", account, token, err)
	}
	return b
}
