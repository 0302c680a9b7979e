package domain

import (
	"math/big"
	"time"
)

// OrderStatus represents the lifecycle state of a limit order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusExecuted  OrderStatus = "executed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// Terminal reports whether the status is absorbing. An order leaves
// pending exactly once and never leaves a terminal state.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusExecuted, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

// Order is a standing request to exchange a fixed amount of one asset
// for another once a price threshold is met. The sell amount is
// escrowed at creation time. All attributes except Status and the
// settlement fields are immutable after creation.
type Order struct {
	OrderID          uint64
	UserID           string
	FromAsset        string
	FromAmount       *big.Int
	ToAsset          string
	PriceNumerator   *big.Int
	PriceDenominator *big.Int
	SlippageBP       uint64
	Status           OrderStatus
	CreatedAt        time.Time
	ExpiresAt        time.Time
	ExecutedAt       *time.Time
	CancelledAt      *time.Time
	ExpiredAt        *time.Time

	// OutputAmount is the buy-asset amount credited to the user after
	// the execution fee was deducted. Nil until the order is executed.
	OutputAmount *big.Int
}

// PriceMet reports whether an observed price satisfies the order's
// target. The comparison cross-multiplies to avoid division:
//
//	observedNum/observedDenom <= PriceNumerator/PriceDenominator
//
// Direction is fixed by asset ordering, so "at or better than target"
// is always this single comparison.
func (o *Order) PriceMet(observedNum, observedDenom *big.Int) bool {
	lhs := new(big.Int).Mul(observedNum, o.PriceDenominator)
	rhs := new(big.Int).Mul(o.PriceNumerator, observedDenom)
	return lhs.Cmp(rhs) <= 0
}

// ExpiredBy reports whether the order's expiry has passed at the given
// instant. Execution is allowed up to and including ExpiresAt.
func (o *Order) ExpiredBy(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
