package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/app/setup"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
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

type fakeRail struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (r *fakeRail) SubmitTransfer(_ context.Context, w *domain.WithdrawalRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, w.ID)
	if r.err != nil {
		return "", r.err
	}
	return "rail-" + w.ID, nil
}

func (r *fakeRail) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func withdraw(t *testing.T, env *setup.TestEnv, amount string) *domain.WithdrawalRequest {
	t.Helper()
	w, err := env.Wallet.Withdraw(context.Background(), &walletdto.WithdrawInput{
		AccountID: "alice", Token: "ICP", Amount: dec(amount), Destination: "addr-1",
	})
	require.NoError(t, err)
	return w
}

func TestDeposit_IdempotentOnExternalRef(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	ctx := context.Background()
	in := &walletdto.DepositInput{ExternalRef: "tx-1", AccountID: "alice", Token: "icp", Amount: dec("5")}

	first, err := env.Wallet.Deposit(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, "ICP", first.Deposit.Token)

	second, err := env.Wallet.Deposit(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Deposit.TransactionID, second.Deposit.TransactionID)
	assertAmount(t, "5", env.Balance(t, "alice", "ICP").Available)

	_, err = env.Wallet.Deposit(ctx, &walletdto.DepositInput{ExternalRef: "tx-1", AccountID: "alice", Token: "ICP", Amount: dec("6")})
	require.ErrorIs(t, err, domain.ErrExternalRefConflict)
	assertAmount(t, "5", env.Balance(t, "alice", "ICP").Available)

	assert.Len(t, env.Publisher.Messages(domain.TopicWalletEvents), 1)
}

func TestDeposit_ConcurrentReplaysCreditOnce(t *testing.T) {
	env := setup.NewTestEnv(t, nil)
	in := &walletdto.DepositInput{ExternalRef: "tx-9", AccountID: "alice", Token: "ICP", Amount: dec("1")}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Wallet.Deposit(context.Background(), in)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assertAmount(t, "1", env.Balance(t, "alice", "ICP").Available)
}

func TestWithdraw_ReservesAndDispatches(t *testing.T) {
	rail := &fakeRail{}
	env := setup.NewTestEnv(t, rail)
	env.Fund(t, "alice", "ICP", "10")

	w := withdraw(t, env, "4")
	assert.Equal(t, domain.WithdrawalProcessing, w.Status)
	assert.Equal(t, "rail-"+w.ID, w.RailRef)
	require.NotNil(t, w.ProcessingAt)

	b := env.Balance(t, "alice", "ICP")
	assertAmount(t, "6", b.Available)
	assertAmount(t, "4", b.Reserved)
}

func TestWithdraw_ConcurrentRequestsCannotOverdraw(t *testing.T) {
	env := setup.NewTestEnv(t, &fakeRail{})
	env.Fund(t, "alice", "ICP", "100")

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.Wallet.Withdraw(context.Background(), &walletdto.WithdrawInput{
				AccountID: "alice", Token: "ICP", Amount: dec("60"), Destination: "addr-1",
			})
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	b := env.Balance(t, "alice", "ICP")
	assertAmount(t, "40", b.Available)
	assertAmount(t, "60", b.Reserved)
	assert.False(t, b.Available.IsNegative())
}

func TestWithdraw_RailErrorLeavesPending(t *testing.T) {
	rail := &fakeRail{err: errors.New("rail down")}
	env := setup.NewTestEnv(t, rail)
	env.Fund(t, "alice", "ICP", "10")
	ctx := context.Background()

	w := withdraw(t, env, "3")
	assert.Equal(t, domain.WithdrawalPending, w.Status)
	assertAmount(t, "3", env.Balance(t, "alice", "ICP").Reserved)

	rail.setErr(nil)
	w, err := env.Wallet.Dispatch(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalProcessing, w.Status)

	again, err := env.Wallet.Dispatch(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalProcessing, again.Status)
	assert.Len(t, rail.calls, 2)
}

func TestDispatchPending_RetriesOldRequests(t *testing.T) {
	rail := &fakeRail{err: errors.New("rail down")}
	env := setup.NewTestEnv(t, rail)
	env.Fund(t, "alice", "ICP", "10")
	ctx := context.Background()

	first := withdraw(t, env, "1")
	second := withdraw(t, env, "2")

	accepted, err := env.Wallet.DispatchPending(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Zero(t, accepted)

	rail.setErr(nil)
	accepted, err = env.Wallet.DispatchPending(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Zero(t, accepted, "requests newer than the cutoff are left alone")

	accepted, err = env.Wallet.DispatchPending(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, accepted)

	for _, id := range []string{first.ID, second.ID} {
		w, err := env.Wallet.GetWithdrawal(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalProcessing, w.Status)
	}
}

func TestConfirm_CompletedAndFailed(t *testing.T) {
	env := setup.NewTestEnv(t, &fakeRail{})
	env.Fund(t, "alice", "ICP", "10")
	ctx := context.Background()

	done := withdraw(t, env, "4")
	w, err := env.Wallet.Confirm(ctx, &walletdto.ConfirmInput{WithdrawalID: done.ID, Success: true})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, w.Status)

	failed := withdraw(t, env, "3")
	w, err = env.Wallet.Confirm(ctx, &walletdto.ConfirmInput{WithdrawalID: failed.ID, Success: false, Reason: "bad address"})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalFailed, w.Status)
	assert.Equal(t, "bad address", w.FailureReason)

	b := env.Balance(t, "alice", "ICP")
	assertAmount(t, "6", b.Available)
	assertAmount(t, "0", b.Reserved)

	// replay of the same outcome
	_, err = env.Wallet.Confirm(ctx, &walletdto.ConfirmInput{WithdrawalID: done.ID, Success: true})
	require.NoError(t, err)
	// opposite outcome after finalisation
	_, err = env.Wallet.Confirm(ctx, &walletdto.ConfirmInput{WithdrawalID: done.ID, Success: false})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	assertAmount(t, "6", env.Balance(t, "alice", "ICP").Available)
	report, err := env.Ledger.Reconcile(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestEscalateStuck(t *testing.T) {
	env := setup.NewTestEnv(t, &fakeRail{})
	env.Fund(t, "alice", "ICP", "10")
	ctx := context.Background()

	stuck := withdraw(t, env, "2")
	fresh := withdraw(t, env, "1")
	_, err := env.Wallet.Confirm(ctx, &walletdto.ConfirmInput{WithdrawalID: fresh.ID, Success: true})
	require.NoError(t, err)

	out, err := env.Wallet.EscalateStuck(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, out.Escalated, "nothing is older than the timeout yet")

	later := time.Now().Add(env.Wallet.WithdrawalTimeout + time.Minute)
	out, err = env.Wallet.EscalateStuck(ctx, later)
	require.NoError(t, err)
	require.Len(t, out.Escalated, 1)
	assert.Equal(t, stuck.ID, out.Escalated[0].ID)

	msgs := env.Publisher.Messages(domain.TopicOperatorQueue)
	require.Len(t, msgs, 1)
	var event domain.EscalationEvent
	require.NoError(t, json.Unmarshal(msgs[0].Value, &event))
	assert.Equal(t, stuck.ID, event.WithdrawalID)
	assert.Equal(t, domain.ErrWithdrawalTimeout.Error(), event.Reason)

	out, err = env.Wallet.EscalateStuck(ctx, later)
	require.NoError(t, err)
	assert.Empty(t, out.Escalated, "escalation happens once")

	w, err := env.Wallet.GetWithdrawal(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalProcessing, w.Status)
	assert.NotNil(t, w.EscalatedAt)
	assertAmount(t, "2", env.Balance(t, "alice", "ICP").Reserved)
}

func TestEscalateStuck_PublishFailureRetriedNextSweep(t *testing.T) {
	env := setup.NewTestEnv(t, &fakeRail{})
	env.Fund(t, "alice", "ICP", "10")
	ctx := context.Background()
	stuck := withdraw(t, env, "2")
	later := time.Now().Add(env.Wallet.WithdrawalTimeout + time.Minute)

	env.Publisher.SetErr(errors.New("broker down"))
	_, err := env.Wallet.EscalateStuck(ctx, later)
	require.Error(t, err)

	w, err := env.Wallet.GetWithdrawal(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Nil(t, w.EscalatedAt)

	env.Publisher.SetErr(nil)
	out, err := env.Wallet.EscalateStuck(ctx, later)
	require.NoError(t, err)
	assert.Len(t, out.Escalated, 1)
}
