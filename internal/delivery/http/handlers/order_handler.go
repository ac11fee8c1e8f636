package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/order"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lines := make([]orderdto.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, orderdto.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Token:     line.Token,
		})
	}
	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = r.Header.Get("Idempotency-Key")
	}

	out, err := h.Orders.CreateOrder(r.Context(), &orderdto.CreateOrderInput{
		BuyerID:        req.BuyerID,
		SellerID:       req.SellerID,
		Lines:          lines,
		IdempotencyKey: idempotencyKey,
		Actor:          actorFromRequest(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if out.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, response.FromOrderOutput(out))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	out, err := h.Orders.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromOrderOutput(out))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.OrderFilter{
		BuyerID:  query.Get("buyer_id"),
		SellerID: query.Get("seller_id"),
		Page:     atoiOr(query.Get("page"), 1),
		Limit:    atoiOr(query.Get("limit"), 20),
	}
	for _, raw := range query["status"] {
		for _, s := range strings.Split(raw, ",") {
			status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !status.Valid() {
				writeError(w, r, errInvalidParam("status", s))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	orders, total, err := h.Orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := response.OrderListResponse{
		Orders: make([]response.OrderResponse, 0, len(orders)),
		Total:  total,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, response.FromOrder(order, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	var req request.TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Orders.Transition(r.Context(), &orderdto.TransitionInput{
		OrderID:       chi.URLParam(r, "id"),
		Target:        domain.OrderStatus(strings.ToUpper(req.Target)),
		TrackingRef:   req.TrackingRef,
		DisputeAmount: req.DisputeAmount,
		Reason:        req.Reason,
		Actor:         actorFromRequest(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromOrderOutput(out))
}

func (h *Handler) ReleasePartial(w http.ResponseWriter, r *http.Request) {
	var req request.ReleaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Orders.ReleasePartial(r.Context(), &orderdto.ReleaseInput{
		OrderID:    chi.URLParam(r, "id"),
		Amount:     req.Amount,
		ReleaseKey: req.ReleaseKey,
		Actor:      actorFromRequest(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.FromOrderOutput(out))
}

func (h *Handler) ListTransitions(w http.ResponseWriter, r *http.Request) {
	transitions, err := h.Orders.ListTransitions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]response.TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		resp = append(resp, response.FromTransition(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) BulkTransition(w http.ResponseWriter, r *http.Request) {
	var req request.BulkTransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.OrderIDs) == 0 || len(req.OrderIDs) > maxBulkOrders {
		writeError(w, r, errInvalidParam("order_ids", strconv.Itoa(len(req.OrderIDs))))
		return
	}

	results := h.Orders.BulkTransition(r.Context(), &orderdto.BulkTransitionInput{
		OrderIDs:    req.OrderIDs,
		Target:      domain.OrderStatus(strings.ToUpper(req.Target)),
		TrackingRef: req.TrackingRef,
		Reason:      req.Reason,
		Actor:       actorFromRequest(r),
	})
	resp := make([]response.BulkResultResponse, 0, len(results))
	for _, result := range results {
		resp = append(resp, response.FromBulkResult(result))
	}
	writeJSON(w, http.StatusOK, resp)
}
