package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	ledgerUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/ledger"
	orderUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/order"
	walletUsecase "github.com/LavaJover/shvark-settlement-service/internal/usecase/wallet"
)

// LedgerReader is the read side of the ledger exposed over HTTP.
type LedgerReader interface {
	Balances(ctx context.Context, accountID string) (map[string]*domain.Balance, error)
	Transactions(ctx context.Context, accountID, token, cursor string, limit int) ([]*domain.TransactionRecord, string, error)
	Reconcile(ctx context.Context, accountID string) (*ledgerUsecase.ReconciliationReport, error)
}

type Handler struct {
	Orders orderUsecase.OrderUsecase
	Wallet walletUsecase.WalletUsecase
	Ledger LedgerReader
	Now    func() time.Time
}

func NewHandler(orders orderUsecase.OrderUsecase, wallet walletUsecase.WalletUsecase, ledger LedgerReader) *Handler {
	return &Handler{
		Orders: orders,
		Wallet: wallet,
		Ledger: ledger,
		Now:    time.Now,
	}
}

// actorFromRequest reads the caller identity set by the upstream auth layer.
func actorFromRequest(r *http.Request) domain.Actor {
	return domain.Actor{
		ID:   strings.TrimSpace(r.Header.Get("X-Actor-ID")),
		Role: domain.ActorRole(strings.ToLower(strings.TrimSpace(r.Header.Get("X-Actor-Role")))),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		return http.StatusServiceUnavailable, "BUSY"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"
	case errors.Is(err, domain.ErrEscrowOverrelease):
		return http.StatusUnprocessableEntity, "ESCROW_OVERRELEASE"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrHoldFrozen):
		return http.StatusConflict, "HOLD_FROZEN"
	case errors.Is(err, domain.ErrHoldClosed):
		return http.StatusConflict, "HOLD_CLOSED"
	case errors.Is(err, domain.ErrExternalRefConflict):
		return http.StatusConflict, "EXTERNAL_REF_CONFLICT"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict, "IDEMPOTENCY_CONFLICT"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnsupportedToken):
		return http.StatusBadRequest, "UNSUPPORTED_TOKEN"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal server error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, response.ErrorResponse{Error: message, Code: code})
}
