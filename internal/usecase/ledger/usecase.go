package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type DefaultLedgerUsecase struct {
	LedgerRepo domain.LedgerRepository
	Transactor domain.Transactor
	Tokens     domain.Tokens
	Metrics    *metrics.SettlementMetrics
}

func NewDefaultLedgerUsecase(
	ledgerRepo domain.LedgerRepository,
	transactor domain.Transactor,
	tokens domain.Tokens,
	settlementMetrics *metrics.SettlementMetrics,
) *DefaultLedgerUsecase {
	return &DefaultLedgerUsecase{
		LedgerRepo: ledgerRepo,
		Transactor: transactor,
		Tokens:     tokens,
		Metrics:    settlementMetrics,
	}
}

// apply validates e and runs one movement under the balance key.
func (uc *DefaultLedgerUsecase) apply(ctx context.Context, op string, e domain.LedgerEntry, defaultKind domain.TransactionKind, build func(amount decimal.Decimal) domain.Movement) (*domain.TransactionRecord, error) {
	if e.AccountID == "" {
		return nil, fmt.Errorf("%s: %w: account id is required", op, domain.ErrInvalidInput)
	}
	token, err := uc.Tokens.Normalize(e.Token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := uc.Tokens.ValidateAmount(token, e.Amount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mv := build(e.Amount)
	mv.AccountID = e.AccountID
	mv.Token = token
	mv.Kind = e.Kind
	if mv.Kind == "" {
		mv.Kind = defaultKind
	}
	mv.Reference = e.Reference
	mv.Note = e.Note

	var record *domain.TransactionRecord
	err = uc.Transactor.Atomically(ctx, []string{domain.BalanceKey(e.AccountID, token)}, func(ctx context.Context) error {
		var err error
		record, err = uc.LedgerRepo.Apply(ctx, mv)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			uc.Metrics.RecordBusy("ledger_" + op)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

func (uc *DefaultLedgerUsecase) Credit(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "credit", e, domain.KindDeposit, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{AvailableDelta: amount}
	})
}

func (uc *DefaultLedgerUsecase) Debit(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "debit", e, domain.KindWithdraw, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{AvailableDelta: amount.Neg()}
	})
}

func (uc *DefaultLedgerUsecase) Lock(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "lock", e, domain.KindEscrowLock, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{AvailableDelta: amount.Neg(), LockedDelta: amount}
	})
}

func (uc *DefaultLedgerUsecase) Unlock(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "unlock", e, domain.KindEscrowRefund, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{AvailableDelta: amount, LockedDelta: amount.Neg()}
	})
}

func (uc *DefaultLedgerUsecase) ReleaseLocked(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "release_locked", e, domain.KindEscrowRelease, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{LockedDelta: amount.Neg()}
	})
}

func (uc *DefaultLedgerUsecase) Reserve(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "reserve", e, domain.KindWithdraw, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{AvailableDelta: amount.Neg(), ReservedDelta: amount}
	})
}

func (uc *DefaultLedgerUsecase) CommitReserved(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "commit_reserved", e, domain.KindWithdraw, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{ReservedDelta: amount.Neg()}
	})
}

func (uc *DefaultLedgerUsecase) ReleaseReserved(ctx context.Context, e domain.LedgerEntry) (*domain.TransactionRecord, error) {
	return uc.apply(ctx, "release_reserved", e, domain.KindWithdraw, func(amount decimal.Decimal) domain.Movement {
		return domain.Movement{AvailableDelta: amount, ReservedDelta: amount.Neg()}
	})
}

func (uc *DefaultLedgerUsecase) Balance(ctx context.Context, accountID, token string) (*domain.Balance, error) {
	canonical, err := uc.Tokens.Normalize(token)
	if err != nil {
		return nil, err
	}
	return uc.LedgerRepo.GetBalance(ctx, accountID, canonical)
}

// Balances returns every token the account has ever held.
func (uc *DefaultLedgerUsecase) Balances(ctx context.Context, accountID string) (map[string]*domain.Balance, error) {
	list, err := uc.LedgerRepo.ListBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]*domain.Balance, len(list))
	for _, b := range list {
		balances[b.Token] = b
	}
	return balances, nil
}

func encodeCursor(seq uint64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(seq, 10)))
}

func decodeCursor(cursor string) (uint64, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	seq, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || seq == 0 {
		return 0, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	return seq, nil
}

// Transactions returns one page of records, newest first. The returned
// cursor is empty when there are no older records.
func (uc *DefaultLedgerUsecase) Transactions(ctx context.Context, accountID, token, cursor string, limit int) ([]*domain.TransactionRecord, string, error) {
	before, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	if token != "" {
		if token, err = uc.Tokens.Normalize(token); err != nil {
			return nil, "", err
		}
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	// one extra row tells whether another page exists
	records, err := uc.LedgerRepo.ListTransactions(ctx, domain.TransactionFilter{
		AccountID: accountID,
		Token:     token,
		BeforeSeq: before,
		Limit:     limit + 1,
	})
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) > limit {
		records = records[:limit]
		next = encodeCursor(records[len(records)-1].Seq)
	}
	return records, next, nil
}

// All walks every record of the account newest first, fetching pages lazily.
// The sequence can be ranged over more than once.
func (uc *DefaultLedgerUsecase) All(ctx context.Context, accountID, token string) iter.Seq2[*domain.TransactionRecord, error] {
	return func(yield func(*domain.TransactionRecord, error) bool) {
		cursor := ""
		for {
			page, next, err := uc.Transactions(ctx, accountID, token, cursor, MaxPageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, record := range page {
				if !yield(record, nil) {
					return
				}
			}
			if next == "" {
				return
			}
			cursor = next
		}
	}
}

type TokenReconciliation struct {
	Token             string
	Records           int
	ExpectedTotal     decimal.Decimal
	ActualTotal       decimal.Decimal
	ExpectedAvailable decimal.Decimal
	ExpectedLocked    decimal.Decimal
	ExpectedReserved  decimal.Decimal
	Balance           *domain.Balance
	Consistent        bool
}

type ReconciliationReport struct {
	AccountID  string
	Tokens     []TokenReconciliation
	Consistent bool
}

// Reconcile rebuilds every balance of the account from its transaction
// records and compares it with the stored balance.
func (uc *DefaultLedgerUsecase) Reconcile(ctx context.Context, accountID string) (*ReconciliationReport, error) {
	sums := make(map[string]*TokenReconciliation)
	for record, err := range uc.All(ctx, accountID, "") {
		if err != nil {
			return nil, err
		}
		sum, ok := sums[record.Token]
		if !ok {
			sum = &TokenReconciliation{Token: record.Token}
			sums[record.Token] = sum
		}
		sum.Records++
		sum.ExpectedTotal = sum.ExpectedTotal.Add(record.Amount)
		sum.ExpectedAvailable = sum.ExpectedAvailable.Add(record.AvailableDelta)
		sum.ExpectedLocked = sum.ExpectedLocked.Add(record.LockedDelta)
		sum.ExpectedReserved = sum.ExpectedReserved.Add(record.ReservedDelta)
	}

	balances, err := uc.Balances(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for token := range balances {
		if _, ok := sums[token]; !ok {
			sums[token] = &TokenReconciliation{Token: token}
		}
	}

	report := &ReconciliationReport{AccountID: accountID, Consistent: true}
	for _, token := range sortedKeys(sums) {
		sum := sums[token]
		balance, ok := balances[token]
		if !ok {
			balance = &domain.Balance{AccountID: accountID, Token: token}
		}
		sum.Balance = balance
		sum.ActualTotal = balance.Total()
		sum.Consistent = sum.ExpectedTotal.Equal(sum.ActualTotal) &&
			sum.ExpectedAvailable.Equal(balance.Available) &&
			sum.ExpectedLocked.Equal(balance.Locked) &&
			sum.ExpectedReserved.Equal(balance.Reserved)
		if !sum.Consistent {
			report.Consistent = false
		}
		report.Tokens = append(report.Tokens, *sum)
	}
	return report, nil
}
