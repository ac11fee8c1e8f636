package handlers

import (
	"net/http"
	"slices"

	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/dto/response"
	walletdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/wallet"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	balances, err := h.Ledger.Balances(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tokens := make([]string, 0, len(balances))
	for token := range balances {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)

	resp := response.BalancesResponse{AccountID: accountID, Balances: make([]response.BalanceResponse, 0, len(tokens))}
	for _, token := range tokens {
		resp.Balances = append(resp.Balances, response.FromBalance(balances[token]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	records, next, err := h.Ledger.Transactions(
		r.Context(),
		chi.URLParam(r, "id"),
		query.Get("token"),
		query.Get("cursor"),
		atoiOr(query.Get("limit"), 0),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := response.TransactionsResponse{Items: make([]response.TransactionResponse, 0, len(records)), NextCursor: next}
	for _, record := range records {
		resp.Items = append(resp.Items, response.FromTransaction(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := h.Ledger.Reconcile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromReport(report))
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req request.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Wallet.Deposit(r.Context(), &walletdto.DepositInput{
		ExternalRef: req.ExternalRef,
		AccountID:   req.AccountID,
		Token:       req.Token,
		Amount:      req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if out.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, response.FromDeposit(out))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req request.WithdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	withdrawal, err := h.Wallet.Withdraw(r.Context(), &walletdto.WithdrawInput{
		AccountID:   req.AccountID,
		Token:       req.Token,
		Amount:      req.Amount,
		Destination: req.Destination,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, response.FromWithdrawal(withdrawal))
}

func (h *Handler) GetWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.Wallet.GetWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromWithdrawal(withdrawal))
}

func (h *Handler) DispatchWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.Wallet.Dispatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromWithdrawal(withdrawal))
}

func (h *Handler) ConfirmWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	withdrawal, err := h.Wallet.Confirm(r.Context(), &walletdto.ConfirmInput{
		WithdrawalID: chi.URLParam(r, "id"),
		Success:      req.Success,
		RailRef:      req.RailRef,
		Reason:       req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromWithdrawal(withdrawal))
}

// EscalateWithdrawals runs the operator sweep. Partial failures still return
// the requests that were escalated.
func (h *Handler) EscalateWithdrawals(w http.ResponseWriter, r *http.Request) {
	var req request.EscalateRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	now := h.Now()
	if req.Now != nil {
		now = *req.Now
	}

	out, err := h.Wallet.EscalateStuck(r.Context(), now)
	if out == nil {
		writeError(w, r, err)
		return
	}
	resp := response.EscalationResponse{CheckedAt: out.CheckedAt, Escalated: make([]response.WithdrawalResponse, 0, len(out.Escalated))}
	for _, withdrawal := range out.Escalated {
		resp.Escalated = append(resp.Escalated, response.FromWithdrawal(withdrawal))
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}
