package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
)

type transferRequest struct {
	WithdrawalID string `json:"withdrawal_id"`
	AccountID    string `json:"account_id"`
	Token        string `json:"token"`
	Amount       string `json:"amount"`
	Destination  string `json:"destination"`
}

type transferResponse struct {
	RailRef string `json:"rail_ref"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPRailClient submits withdrawals to the external transfer rail. The rail
// deduplicates on the Idempotency-Key header, so resubmitting is safe.
type HTTPRailClient struct {
	Address string
	Client  *http.Client
	Metrics *metrics.SettlementMetrics
}

func NewHTTPRailClient(address string, timeout time.Duration, settlementMetrics *metrics.SettlementMetrics) *HTTPRailClient {
	return &HTTPRailClient{
		Address: strings.TrimRight(address, "/"),
		Client:  &http.Client{Timeout: timeout},
		Metrics: settlementMetrics,
	}
}

func (c *HTTPRailClient) SubmitTransfer(ctx context.Context, w *domain.WithdrawalRequest) (string, error) {
	start := time.Now()
	railRef, err := c.submit(ctx, w)
	result := "accepted"
	if err != nil {
		result = "error"
	}
	c.Metrics.RecordRailRequest(result, time.Since(start).Seconds())
	return railRef, err
}

func (c *HTTPRailClient) submit(ctx context.Context, w *domain.WithdrawalRequest) (string, error) {
	requestBodyBytes, err := json.Marshal(transferRequest{
		WithdrawalID: w.ID,
		AccountID:    w.AccountID,
		Token:        w.Token,
		Amount:       w.Amount.String(),
		Destination:  w.Destination,
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/transfers", c.Address), bytes.NewReader(requestBodyBytes))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Idempotency-Key", w.ID)

	response, err := c.Client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var accepted transferResponse
		if err := json.Unmarshal(responseBodyBytes, &accepted); err != nil {
			return "", err
		}
		if accepted.RailRef == "" {
			return "", errors.New("rail accepted transfer without a reference")
		}
		return accepted.RailRef, nil
	}

	var railErr errorResponse
	if err := json.Unmarshal(responseBodyBytes, &railErr); err != nil || railErr.Error == "" {
		return "", fmt.Errorf("rail responded %d", response.StatusCode)
	}
	return "", fmt.Errorf("rail responded %d: %s", response.StatusCode, railErr.Error)
}
