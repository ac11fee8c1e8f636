package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"gorm.io/gorm"
)

type txCtxKey struct{}

type txState struct {
	tx    *gorm.DB
	held  map[string]struct{}
	hooks []func()
}

func stateFrom(ctx context.Context) *txState {
	state, _ := ctx.Value(txCtxKey{}).(*txState)
	return state
}

// conn returns the transaction carried by ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state := stateFrom(ctx); state != nil {
		return state.tx
	}
	return db.WithContext(ctx)
}

// inTx runs fn in the ambient transaction or opens a new one.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if state := stateFrom(ctx); state != nil {
		return fn(state.tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}

type DefaultTransactor struct {
	DB          *gorm.DB
	Locker      domain.Locker
	LockTimeout time.Duration
}

func NewDefaultTransactor(db *gorm.DB, locker domain.Locker, lockTimeout time.Duration) *DefaultTransactor {
	return &DefaultTransactor{DB: db, Locker: locker, LockTimeout: lockTimeout}
}

func (t *DefaultTransactor) Atomically(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	outer := stateFrom(ctx)

	var pending []string
	for _, key := range keys {
		if outer != nil {
			if _, ok := outer.held[key]; ok {
				continue
			}
		}
		if !slices.Contains(pending, key) {
			pending = append(pending, key)
		}
	}

	if len(pending) > 0 {
		lockCtx, cancel := context.WithTimeout(ctx, t.LockTimeout)
		release, err := t.Locker.Acquire(lockCtx, pending)
		cancel()
		if err != nil {
			return err
		}
		defer release()
	}

	if outer != nil {
		for _, key := range pending {
			outer.held[key] = struct{}{}
		}
		defer func() {
			for _, key := range pending {
				delete(outer.held, key)
			}
		}()
		return fn(ctx)
	}

	state := &txState{held: make(map[string]struct{}, len(pending))}
	for _, key := range pending {
		state.held[key] = struct{}{}
	}
	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txCtxKey{}, state))
	})
	if err != nil {
		return err
	}
	for _, hook := range state.hooks {
		hook()
	}
	return nil
}

func (t *DefaultTransactor) AfterCommit(ctx context.Context, fn func()) {
	if state := stateFrom(ctx); state != nil {
		state.hooks = append(state.hooks, fn)
		return
	}
	fn()
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return err
}
