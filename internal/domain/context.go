package domain

import (
	"math/big"
	"time"
)

// ExecutionContext is the durable record bridging a dispatched swap
// request to its eventual resolution. At most one live context exists
// per order, and the context is removed before any resolution side
// effect is applied — a second delivery of the same resolution finds
// no context and fails instead of double-paying.
type ExecutionContext struct {
	OrderID      uint64    `json:"order_id"`
	UserID       string    `json:"user_id"`
	ExecutorID   string    `json:"executor_id"`
	ToAsset      string    `json:"to_asset"`
	MinAmountOut *big.Int  `json:"min_amount_out"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

// StaleBy reports whether the context was dispatched at least ttl
// before now. Stale contexts are eligible for reclamation.
func (c *ExecutionContext) StaleBy(now time.Time, ttl time.Duration) bool {
	return !c.DispatchedAt.Add(ttl).After(now)
}
