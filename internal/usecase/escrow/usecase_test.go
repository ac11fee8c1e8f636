package usecase_test

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-settlement-service/internal/app/setup"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
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

func openHold(t *testing.T, env *setup.TestEnv, total string) *domain.EscrowHold {
	t.Helper()
	env.Fund(t, "buyer", "ICP", "1000")
	hold, err := env.Escrow.OpenHold(context.Background(), &domain.Order{
		ID:       uuid.NewString(),
		BuyerID:  "buyer",
		SellerID: "seller",
		Token:    "ICP",
		Total:    dec(total),
	})
	require.NoError(t, err)
	return hold
}

func TestEscrow_OpenHoldLocksBuyerFunds(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := openHold(t, env, "600")

	assert.Equal(t, domain.HoldHeld, hold.Status)
	assertAmount(t, "600", hold.Remaining())
	b := env.Balance(t, "buyer", "ICP")
	assertAmount(t, "400", b.Available)
	assertAmount(t, "600", b.Locked)

	again, err := env.Escrow.OpenHold(context.Background(), &domain.Order{
		ID: hold.OrderID, BuyerID: "buyer", SellerID: "seller", Token: "ICP", Total: dec("600"),
	})
	require.NoError(t, err)
	assert.Equal(t, hold.ID, again.ID)
	assertAmount(t, "600", env.Balance(t, "buyer", "ICP").Locked)
}

func TestEscrow_OpenHoldInsufficientFunds(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	env.Fund(t, "buyer", "ICP", "10")

	_, err := env.Escrow.OpenHold(context.Background(), &domain.Order{
		ID: uuid.NewString(), BuyerID: "buyer", SellerID: "seller", Token: "ICP", Total: dec("11"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assertAmount(t, "10", env.Balance(t, "buyer", "ICP").Available)
}

func TestEscrow_ReleaseSettlesSeller(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := openHold(t, env, "600")
	ctx := context.Background()

	hold, err := env.Escrow.Release(ctx, hold.OrderID, dec("600"), "", "oracle")
	require.NoError(t, err)
	assert.Equal(t, domain.HoldReleased, hold.Status)

	assertAmount(t, "588", env.Balance(t, "seller", "ICP").Available)
	assertAmount(t, "12", env.Balance(t, setup.TestPlatformAccount, "ICP").Available)
	buyer := env.Balance(t, "buyer", "ICP")
	assertAmount(t, "0", buyer.Locked)
	assertAmount(t, "400", buyer.Available)

	settlements, err := env.Settlement.ListByOrder(ctx, hold.OrderID)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assertAmount(t, "12", settlements[0].Fee)
	assertAmount(t, "588", settlements[0].Net)
}

func TestEscrow_Overrelease(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := openHold(t, env, "100")
	ctx := context.Background()

	_, err := env.Escrow.Release(ctx, hold.OrderID, dec("60"), "", "")
	require.NoError(t, err)
	_, err = env.Escrow.Release(ctx, hold.OrderID, dec("41"), "", "")
	require.ErrorIs(t, err, domain.ErrEscrowOverrelease)
	_, err = env.Escrow.Refund(ctx, hold.OrderID, dec("41"), "", "")
	require.ErrorIs(t, err, domain.ErrEscrowOverrelease)
	_, err = env.Escrow.Release(ctx, hold.OrderID, dec("0"), "", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	current, err := env.Escrow.GetHold(ctx, hold.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldPartiallyReleased, current.Status)
	assertAmount(t, "40", current.Remaining())
	assertAmount(t, "40", env.Balance(t, "buyer", "ICP").Locked)
}

func TestEscrow_RefundReturnsFunds(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := openHold(t, env, "100")

	hold, err := env.Escrow.Refund(context.Background(), hold.OrderID, dec("100"), "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.HoldRefunded, hold.Status)

	b := env.Balance(t, "buyer", "ICP")
	assertAmount(t, "1000", b.Available)
	assertAmount(t, "0", b.Locked)

	_, err = env.Escrow.Refund(context.Background(), hold.OrderID, dec("1"), "", "")
	assert.ErrorIs(t, err, domain.ErrHoldClosed)
}

func TestEscrow_FrozenHoldRejectsMovements(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := openHold(t, env, "100")
	ctx := context.Background()

	_, err := env.Escrow.Freeze(ctx, hold.OrderID)
	require.NoError(t, err)
	_, err = env.Escrow.Release(ctx, hold.OrderID, dec("1"), "", "")
	require.ErrorIs(t, err, domain.ErrHoldFrozen)
	_, err = env.Escrow.Refund(ctx, hold.OrderID, dec("1"), "", "")
	require.ErrorIs(t, err, domain.ErrHoldFrozen)

	_, err = env.Escrow.Unfreeze(ctx, hold.OrderID)
	require.NoError(t, err)
	_, err = env.Escrow.Release(ctx, hold.OrderID, dec("1"), "", "")
	require.NoError(t, err)
}

func TestEscrow_KeyedMovementIsIdempotent(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	hold := openHold(t, env, "100")
	ctx := context.Background()

	for range 3 {
		current, err := env.Escrow.Release(ctx, hold.OrderID, dec("25"), "part-1", "seller")
		require.NoError(t, err)
		assertAmount(t, "25", current.Released)
	}

	_, err := env.Escrow.Release(ctx, hold.OrderID, dec("30"), "part-1", "seller")
	require.ErrorIs(t, err, domain.ErrIdempotencyConflict)

	applied, err := env.Escrow.MovementApplied(ctx, hold.OrderID, "part-1")
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = env.Escrow.MovementApplied(ctx, hold.OrderID, "part-2")
	require.NoError(t, err)
	assert.False(t, applied)

	movements, err := env.Escrow.Movements(ctx, hold.OrderID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
	assertAmount(t, "24.5", env.Balance(t, "seller", "ICP").Available)
}
