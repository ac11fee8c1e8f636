package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LavaJover/shvark-settlement-service/internal/app/setup"
	httpdelivery "github.com/LavaJover/shvark-settlement-service/internal/delivery/http"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, limiter *httpdelivery.RateLimiter) (*httptest.Server, *setup.TestEnv) {
	t.Helper()
	env := setup.NewTestEnv(t, nil)
	h := handlers.NewHandler(env.Order, env.Wallet, env.Ledger)
	srv := httptest.NewServer(httpdelivery.NewRouter(h, limiter, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv, env
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, actor string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
		req.Header.Set("X-Actor-Role", actor)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func orderBody(total string) map[string]any {
	return map[string]any{
		"buyer_id":  "buyer",
		"seller_id": "seller",
		"lines": []map[string]any{
			{"product_id": "sku-1", "quantity": 1, "unit_price": total, "token": "ICP"},
		},
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	srv, env := newServer(t, nil)
	env.Fund(t, "buyer", "ICP", "1000")

	resp := do(t, srv, http.MethodPost, "/api/v1/orders", orderBody("600"), "buyer")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[response.OrderResponse](t, resp)
	assert.Equal(t, "PENDING", order.Status)
	require.NotNil(t, order.Escrow)
	assert.True(t, decimal.NewFromInt(600).Equal(order.Escrow.Remaining))

	resp = do(t, srv, http.MethodPost, "/api/v1/orders", orderBody("500"), "buyer")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_FUNDS", decode[response.ErrorResponse](t, resp).Code)

	path := fmt.Sprintf("/api/v1/orders/%s/transition", order.ID)
	resp = do(t, srv, http.MethodPost, path, map[string]any{"target": "delivered"}, "oracle")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for _, body := range []map[string]any{
		{"target": "processing"},
		{"target": "shipped", "tracking_ref": "TRACK-1"},
		{"target": "delivered"},
		{"target": "delivered"},
	} {
		resp = do(t, srv, http.MethodPost, path, body, "oracle")
		require.Equal(t, http.StatusOK, resp.StatusCode, body["target"])
	}

	resp = do(t, srv, http.MethodGet, "/api/v1/accounts/seller/balance", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balances := decode[response.BalancesResponse](t, resp)
	require.Len(t, balances.Balances, 1)
	assert.True(t, decimal.NewFromInt(588).Equal(balances.Balances[0].Available))

	resp = do(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/transitions", order.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]response.TransitionResponse](t, resp), 4)

	resp = do(t, srv, http.MethodGet, "/api/v1/orders?buyer_id=buyer&status=delivered", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[response.OrderListResponse](t, resp)
	assert.EqualValues(t, 1, list.Total)

	resp = do(t, srv, http.MethodGet, "/api/v1/accounts/buyer/audit", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[response.AuditResponse](t, resp).Consistent)
}

func TestErrorMapping(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp := do(t, srv, http.MethodGet, "/api/v1/orders/00000000-0000-0000-0000-000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/orders", map[string]any{"unknown": true}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/orders?status=teleported", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/accounts/alice/transactions?cursor=@@", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDepositOverHTTP(t *testing.T) {
	srv, _ := newServer(t, nil)
	body := map[string]any{"external_ref": "tx-1", "account_id": "alice", "token": "ICP", "amount": "2.5"}

	resp := do(t, srv, http.MethodPost, "/api/v1/wallet/deposit", body, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.False(t, decode[response.DepositResponse](t, resp).Duplicate)

	resp = do(t, srv, http.MethodPost, "/api/v1/wallet/deposit", body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[response.DepositResponse](t, resp).Duplicate)

	body["amount"] = "3"
	resp = do(t, srv, http.MethodPost, "/api/v1/wallet/deposit", body, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/accounts/alice/transactions?limit=1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[response.TransactionsResponse](t, resp)
	assert.Len(t, page.Items, 1)
	assert.Empty(t, page.NextCursor)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newServer(t, httpdelivery.NewRateLimiter(0.001, 2))

	for range 2 {
		resp := do(t, srv, http.MethodGet, "/api/v1/accounts/alice/balance", nil, "alice")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := do(t, srv, http.MethodGet, "/api/v1/accounts/alice/balance", nil, "alice")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	resp = do(t, srv, http.MethodGet, "/api/v1/accounts/alice/balance", nil, "bob")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/healthz", nil, "alice")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
