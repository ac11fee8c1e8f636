package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultLedgerRepository struct {
	DB *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{DB: db}
}

func (r *DefaultLedgerRepository) Apply(ctx context.Context, mv domain.Movement) (*domain.TransactionRecord, error) {
	var record *domain.TransactionRecord
	err := inTx(ctx, r.DB, func(tx *gorm.DB) error {
		var balance models.BalanceModel
		created := false
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id = ? AND token = ?", mv.AccountID, mv.Token).
			Take(&balance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			balance = models.BalanceModel{
				ID:        uuid.NewString(),
				AccountID: mv.AccountID,
				Token:     mv.Token,
				Available: decimal.Zero,
				Locked:    decimal.Zero,
				Reserved:  decimal.Zero,
			}
			created = true
		} else if err != nil {
			return err
		}

		available := balance.Available.Add(mv.AvailableDelta)
		locked := balance.Locked.Add(mv.LockedDelta)
		reserved := balance.Reserved.Add(mv.ReservedDelta)
		if available.IsNegative() || locked.IsNegative() || reserved.IsNegative() {
			return fmt.Errorf("%w: account %s token %s", domain.ErrInsufficientFunds, mv.AccountID, mv.Token)
		}

		now := time.Now().UTC()
		balance.Available, balance.Locked, balance.Reserved = available, locked, reserved
		balance.UpdatedAt = now
		if created {
			balance.CreatedAt = now
			if err := tx.Create(&balance).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.BalanceModel{}).Where("id = ?", balance.ID).Updates(map[string]any{
				"available":  available,
				"locked":     locked,
				"reserved":   reserved,
				"updated_at": now,
			}).Error; err != nil {
				return err
			}
		}

		model := models.TransactionModel{
			RecordID:       uuid.NewString(),
			AccountID:      mv.AccountID,
			Token:          mv.Token,
			Kind:           string(mv.Kind),
			Amount:         mv.Net(),
			AvailableDelta: mv.AvailableDelta,
			LockedDelta:    mv.LockedDelta,
			ReservedDelta:  mv.ReservedDelta,
			Reference:      mv.Reference,
			Note:           mv.Note,
			AvailableAfter: available,
			LockedAfter:    locked,
			ReservedAfter:  reserved,
			CreatedAt:      now,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		record = mappers.ToDomainTransaction(&model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetBalance returns a zero balance for a pair that has never moved.
func (r *DefaultLedgerRepository) GetBalance(ctx context.Context, accountID, token string) (*domain.Balance, error) {
	var balance models.BalanceModel
	err := conn(ctx, r.DB).Where("account_id = ? AND token = ?", accountID, token).Take(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.Balance{
			AccountID: accountID,
			Token:     token,
			Available: decimal.Zero,
			Locked:    decimal.Zero,
			Reserved:  decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainBalance(&balance), nil
}

func (r *DefaultLedgerRepository) ListBalances(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	var balanceModels []models.BalanceModel
	if err := conn(ctx, r.DB).Where("account_id = ?", accountID).Order("token ASC").Find(&balanceModels).Error; err != nil {
		return nil, err
	}
	balances := make([]*domain.Balance, 0, len(balanceModels))
	for i := range balanceModels {
		balances = append(balances, mappers.ToDomainBalance(&balanceModels[i]))
	}
	return balances, nil
}

func (r *DefaultLedgerRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.TransactionRecord, error) {
	query := conn(ctx, r.DB).Model(&models.TransactionModel{}).Where("account_id = ?", filter.AccountID)
	if filter.Token != "" {
		query = query.Where("token = ?", filter.Token)
	}
	if filter.BeforeSeq > 0 {
		query = query.Where("seq < ?", filter.BeforeSeq)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var txModels []models.TransactionModel
	if err := query.Order("seq DESC").Find(&txModels).Error; err != nil {
		return nil, err
	}
	records := make([]*domain.TransactionRecord, 0, len(txModels))
	for i := range txModels {
		records = append(records, mappers.ToDomainTransaction(&txModels[i]))
	}
	return records, nil
}
