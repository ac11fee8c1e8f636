package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// SettlementMetrics holds the service collectors. A nil *SettlementMetrics
// is valid and records nothing.
type SettlementMetrics struct {
	// Orders
	OrdersCreatedTotal       *prometheus.CounterVec
	OrdersCreatedAmountTotal *prometheus.CounterVec
	OrderTransitionsTotal    *prometheus.CounterVec
	OrderProcessingDuration  *prometheus.HistogramVec

	// Escrow and settlement
	EscrowReleasedAmountTotal *prometheus.CounterVec
	EscrowRefundedAmountTotal *prometheus.CounterVec
	PlatformFeeTotal          *prometheus.CounterVec
	SettlementsTotal          *prometheus.CounterVec

	// Wallet
	DepositsTotal        *prometheus.CounterVec
	WithdrawalsTotal     *prometheus.CounterVec
	WithdrawalsEscalated prometheus.Counter
	RailRequestDuration  *prometheus.HistogramVec

	// Errors and contention
	LockBusyTotal   *prometheus.CounterVec
	OperationErrors *prometheus.CounterVec
}

func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	factory := promauto.With(reg)
	return &SettlementMetrics{
		OrdersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Number of orders created",
			},
			[]string{"token"},
		),
		OrdersCreatedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_amount_total",
				Help: "Sum of created order totals",
			},
			[]string{"token"},
		),
		OrderTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Applied order status transitions",
			},
			[]string{"from", "to"},
		),
		OrderProcessingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_processing_duration_seconds",
				Help:    "Time from order creation to a terminal status",
				Buckets: prometheus.ExponentialBuckets(60, 4, 10),
			},
			[]string{"final_status"},
		),
		EscrowReleasedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_released_amount_total",
				Help: "Escrow amounts released to sellers",
			},
			[]string{"token"},
		),
		EscrowRefundedAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_refunded_amount_total",
				Help: "Escrow amounts refunded to buyers",
			},
			[]string{"token"},
		),
		PlatformFeeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platform_fee_total",
				Help: "Platform fees collected on settlement",
			},
			[]string{"token"},
		),
		SettlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_total",
				Help: "Number of settlements written",
			},
			[]string{"token"},
		),
		DepositsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_deposits_total",
				Help: "Deposit notifications by outcome",
			},
			[]string{"token", "outcome"},
		),
		WithdrawalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_withdrawals_total",
				Help: "Withdrawal status changes",
			},
			[]string{"token", "status"},
		),
		WithdrawalsEscalated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wallet_withdrawals_escalated_total",
				Help: "Withdrawals handed to the operator queue",
			},
		),
		RailRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_rail_request_duration_seconds",
				Help:    "Latency of transfer rail submissions",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"result"},
		),
		LockBusyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lock_busy_total",
				Help: "Operations rejected because keys stayed locked",
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operation_errors_total",
				Help: "Failed operations by kind",
			},
			[]string{"operation", "error_type"},
		),
	}
}

func amount(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func (m *SettlementMetrics) RecordOrderCreated(token string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.OrdersCreatedTotal.WithLabelValues(token).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(token).Add(amount(total))
}

func (m *SettlementMetrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.OrderTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *SettlementMetrics) RecordOrderProcessingDuration(finalStatus string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.OrderProcessingDuration.WithLabelValues(finalStatus).Observe(durationSeconds)
}

func (m *SettlementMetrics) RecordRelease(token string, released decimal.Decimal) {
	if m == nil {
		return
	}
	m.EscrowReleasedAmountTotal.WithLabelValues(token).Add(amount(released))
}

func (m *SettlementMetrics) RecordRefund(token string, refunded decimal.Decimal) {
	if m == nil {
		return
	}
	m.EscrowRefundedAmountTotal.WithLabelValues(token).Add(amount(refunded))
}

func (m *SettlementMetrics) RecordSettlement(token string, fee decimal.Decimal) {
	if m == nil {
		return
	}
	m.SettlementsTotal.WithLabelValues(token).Inc()
	m.PlatformFeeTotal.WithLabelValues(token).Add(amount(fee))
}

func (m *SettlementMetrics) RecordDeposit(token, outcome string) {
	if m == nil {
		return
	}
	m.DepositsTotal.WithLabelValues(token, outcome).Inc()
}

func (m *SettlementMetrics) RecordWithdrawal(token, status string) {
	if m == nil {
		return
	}
	m.WithdrawalsTotal.WithLabelValues(token, status).Inc()
}

func (m *SettlementMetrics) RecordEscalation() {
	if m == nil {
		return
	}
	m.WithdrawalsEscalated.Inc()
}

func (m *SettlementMetrics) RecordRailRequest(result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RailRequestDuration.WithLabelValues(result).Observe(durationSeconds)
}

func (m *SettlementMetrics) RecordBusy(operation string) {
	if m == nil {
		return
	}
	m.LockBusyTotal.WithLabelValues(operation).Inc()
}

func (m *SettlementMetrics) RecordError(operation, errorType string) {
	if m == nil {
		return
	}
	m.OperationErrors.WithLabelValues(operation, errorType).Inc()
}
