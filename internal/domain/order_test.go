package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Lifecycle(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusDisputed, true},
		{StatusDisputed, StatusResolvedBuyer, true},
		{StatusDisputed, StatusResolvedSeller, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusDisputed, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusDelivered, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	for _, s := range []OrderStatus{StatusDelivered, StatusCancelled, StatusResolvedBuyer, StatusResolvedSeller} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDisputed} {
		assert.False(t, s.Terminal(), s)
	}
	assert.False(t, OrderStatus("LOST").Valid())
}
