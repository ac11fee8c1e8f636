package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrderCreated(t *testing.T) {
	m := NewSettlementMetrics(prometheus.NewRegistry())

	m.RecordOrderCreated("ICP", decimal.RequireFromString("12.5"))
	m.RecordOrderCreated("ICP", decimal.RequireFromString("2.5"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OrdersCreatedTotal.WithLabelValues("ICP")))
	assert.Equal(t, float64(15), testutil.ToFloat64(m.OrdersCreatedAmountTotal.WithLabelValues("ICP")))
}

func TestRecordSettlementAndEscalation(t *testing.T) {
	m := NewSettlementMetrics(prometheus.NewRegistry())

	m.RecordSettlement("ckUSDC", decimal.RequireFromString("0.2"))
	m.RecordEscalation()
	m.RecordBusy("withdraw")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SettlementsTotal.WithLabelValues("ckUSDC")))
	assert.InDelta(t, 0.2, testutil.ToFloat64(m.PlatformFeeTotal.WithLabelValues("ckUSDC")), 1e-9)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WithdrawalsEscalated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LockBusyTotal.WithLabelValues("withdraw")))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *SettlementMetrics
	assert.NotPanics(t, func() {
		m.RecordOrderCreated("ICP", decimal.NewFromInt(1))
		m.RecordTransition("PENDING", "PROCESSING")
		m.RecordDeposit("ICP", "applied")
		m.RecordError("create_order", "insufficient_funds")
	})
}
