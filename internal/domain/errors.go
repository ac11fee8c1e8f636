package domain

import "errors"

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrEscrowOverrelease    = errors.New("escrow overrelease")
	ErrBusy                 = errors.New("resource busy, retry later")
	ErrDuplicateExternalRef = errors.New("duplicate external reference")
	ErrWithdrawalTimeout    = errors.New("withdrawal confirmation timed out")

	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedToken    = errors.New("unsupported token")
	ErrHoldFrozen          = errors.New("escrow hold frozen by dispute")
	ErrHoldClosed          = errors.New("escrow hold closed")
	ErrExternalRefConflict = errors.New("external reference reused with different parameters")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different parameters")
)
