package domain

import (
	"math/big"
	"testing"
	"time"
)

func TestOrderStatus_Terminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, false},
		{OrderStatusExecuted, true},
		{OrderStatusCancelled, true},
		{OrderStatusExpired, true},
		{OrderStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%q.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestOrder_PriceMet(t *testing.T) {
	// Target price: 3/2 target-per-input.
	o := &Order{
		PriceNumerator:   big.NewInt(3),
		PriceDenominator: big.NewInt(2),
	}

	tests := []struct {
		name          string
		observedNum   *big.Int
		observedDenom *big.Int
		want          bool
	}{
		{"observed below target", big.NewInt(1), big.NewInt(1), true},
		{"observed equals target", big.NewInt(3), big.NewInt(2), true},
		{"equal after reduction", big.NewInt(6), big.NewInt(4), true},
		{"observed above target", big.NewInt(2), big.NewInt(1), false},
		{"barely above target", big.NewInt(30001), big.NewInt(20000), false},
		{"barely below target", big.NewInt(29999), big.NewInt(20000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.PriceMet(tt.observedNum, tt.observedDenom); got != tt.want {
				t.Errorf("PriceMet(%s/%s) = %v, want %v", tt.observedNum, tt.observedDenom, got, tt.want)
			}
		})
	}
}

func TestOrder_ExpiredBy(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{ExpiresAt: expiresAt}

	if o.ExpiredBy(expiresAt.Add(-time.Second)) {
		t.Error("order should not be expired before ExpiresAt")
	}
	if o.ExpiredBy(expiresAt) {
		t.Error("order should not be expired exactly at ExpiresAt")
	}
	if !o.ExpiredBy(expiresAt.Add(time.Nanosecond)) {
		t.Error("order should be expired after ExpiresAt")
	}
}

func TestExecutionContext_StaleBy(t *testing.T) {
	dispatchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := &ExecutionContext{DispatchedAt: dispatchedAt}
	ttl := 5 * time.Minute

	if ctx.StaleBy(dispatchedAt.Add(ttl-time.Second), ttl) {
		t.Error("context should not be stale before ttl elapses")
	}
	if !ctx.StaleBy(dispatchedAt.Add(ttl), ttl) {
		t.Error("context should be stale once ttl has elapsed")
	}
}
