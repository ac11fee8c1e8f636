package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrBusy, http.StatusServiceUnavailable},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domain.ErrEscrowOverrelease, http.StatusUnprocessableEntity},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrHoldFrozen, http.StatusConflict},
		{domain.ErrExternalRefConflict, http.StatusConflict},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnsupportedToken, http.StatusBadRequest},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		status, _ := mapDomainError(wrapped)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

func TestWriteErrorBusySetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)

	writeError(rec, req, fmt.Errorf("lock: %w", domain.ErrBusy))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"lock: resource busy, retry later","code":"BUSY"}`, rec.Body.String())
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(rec, req, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq")
}

func TestActorFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Actor-ID", " u-1 ")
	req.Header.Set("X-Actor-Role", "Seller")

	actor := actorFromRequest(req)
	assert.Equal(t, "u-1", actor.ID)
	assert.Equal(t, domain.RoleSeller, actor.Role)
}
