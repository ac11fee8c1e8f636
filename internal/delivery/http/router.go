package http

import (
	"net/http"

	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *handlers.Handler, limiter *RateLimiter, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/", h.ListOrders)
			r.Post("/bulk/transition", h.BulkTransition)
			r.Get("/{id}", h.GetOrder)
			r.Post("/{id}/transition", h.TransitionOrder)
			r.Post("/{id}/release", h.ReleasePartial)
			r.Get("/{id}/transitions", h.ListTransitions)
		})

		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/balance", h.GetBalances)
			r.Get("/transactions", h.ListTransactions)
			r.Get("/audit", h.Audit)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/deposit", h.Deposit)
			r.Post("/withdraw", h.Withdraw)
			r.Get("/withdrawals/{id}", h.GetWithdrawal)
			r.Post("/withdrawals/{id}/dispatch", h.DispatchWithdrawal)
			r.Post("/withdrawals/{id}/confirm", h.ConfirmWithdrawal)
		})

		r.Post("/ops/withdrawals/escalate", h.EscalateWithdrawals)
	})
	return r
}
