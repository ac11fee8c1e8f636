package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-settlement-service/internal/app/setup"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
	settlementUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func testHold(token string) *domain.EscrowHold {
	return &domain.EscrowHold{
		ID:       uuid.NewString(),
		OrderID:  uuid.NewString(),
		BuyerID:  "buyer",
		SellerID: "seller",
		Token:    token,
	}
}

// failingLedger fails credits to one account.
type failingLedger struct {
	domain.LedgerUsecase
	failAccount string
}

func (l *failingLedger) Credit(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	if e.AccountID == l.failAccount {
		return nil, errors.New("credit rejected")
	}
	return l.LedgerUsecase.Credit(ctx, e)
}

func TestPercentFeePolicy(t *testing.T) {
	tokens := domain.DefaultTokens()
	policy := settlementUsecase.NewPercentFeePolicy(dec("2"), map[string]decimal.Decimal{"ckusdc": dec("1.5")}, tokens)

	assertAmount(t, "12", policy.SellerFee("ICP", dec("600")))
	assertAmount(t, "0.00000001", policy.SellerFee("ICP", dec("0.00000099")))
	assertAmount(t, "0", policy.SellerFee("ICP", dec("0.00000049")))
	assertAmount(t, "1.5", policy.SellerFee("ckUSDC", dec("100")))
	assertAmount(t, "0.000014", policy.SellerFee("ckUSDC", dec("0.000999")))

	free := settlementUsecase.NewPercentFeePolicy(decimal.Zero, nil, tokens)
	assertAmount(t, "0", free.SellerFee("ICP", dec("600")))
}

func TestCheckOverrides(t *testing.T) {
	tokens := domain.DefaultTokens()

	require.NoError(t, settlementUsecase.CheckOverrides(map[string]decimal.Decimal{"ckusdc": dec("1.5")}, tokens))
	require.NoError(t, settlementUsecase.CheckOverrides(nil, tokens))

	err := settlementUsecase.CheckOverrides(map[string]decimal.Decimal{"ckUSCD": dec("1.5")}, tokens)
	require.ErrorIs(t, err, domain.ErrUnsupportedToken)
	assert.ErrorContains(t, err, "ckUSCD")

	err = settlementUsecase.CheckOverrides(map[string]decimal.Decimal{"ICP": dec("101")}, tokens)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// an unchecked typo falls back to the default percentage
	policy := settlementUsecase.NewPercentFeePolicy(dec("2"), map[string]decimal.Decimal{"ckUSCD": dec("1.5")}, tokens)
	assertAmount(t, "2", policy.SellerFee("ckUSDC", dec("100")))
}

func TestSettle_SplitsFee(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := testHold("ICP")

	s, err := env.Settlement.Settle(context.Background(), hold, dec("600"))
	require.NoError(t, err)
	assertAmount(t, "12", s.Fee)
	assertAmount(t, "588", s.Net)

	assertAmount(t, "588", env.Balance(t, "seller", "ICP").Available)
	assertAmount(t, "12", env.Balance(t, setup.TestPlatformAccount, "ICP").Available)
	assert.Len(t, env.Publisher.Messages(domain.TopicSettlementEvents), 1)
}

func TestSettle_ZeroFeeSkipsPlatformLeg(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := testHold("ICP")

	s, err := env.Settlement.Settle(context.Background(), hold, dec("0.00000010"))
	require.NoError(t, err)
	assert.True(t, s.Fee.IsZero())

	records, _, err := env.Ledger.Transactions(context.Background(), setup.TestPlatformAccount, "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSettle_SellerLegFailureRollsBackFeeLeg(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	pub := events.NewMemoryPublisher()
	uc := settlementUsecase.NewDefaultSettlementUsecase(
		env.Repositories.SettlementRepo,
		&failingLedger{LedgerUsecase: env.Ledger, failAccount: "seller"},
		env.Transactor,
		settlementUsecase.NewPercentFeePolicy(dec("2"), nil, domain.DefaultTokens()),
		setup.TestPlatformAccount,
		events.NewEmitter(pub),
		nil,
	)
	hold := testHold("ICP")

	_, err := uc.Settle(context.Background(), hold, dec("600"))
	require.Error(t, err)

	assert.True(t, env.Balance(t, setup.TestPlatformAccount, "ICP").Total().IsZero())
	assert.True(t, env.Balance(t, "seller", "ICP").Total().IsZero())
	settlements, err := uc.ListByOrder(context.Background(), hold.OrderID)
	require.NoError(t, err)
	assert.Empty(t, settlements)
	assert.Empty(t, pub.Messages(domain.TopicSettlementEvents))
}
