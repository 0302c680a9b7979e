package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrNotOwner            = errors.New("not_owner")
	ErrInvalidState        = errors.New("invalid_state")
	ErrOrderExpired        = errors.New("order_expired")
	ErrPaused              = errors.New("paused")
	ErrNotExecutor         = errors.New("not_executor")
	ErrPriceNotMet         = errors.New("price_not_met")
	ErrDuplicateExecution  = errors.New("duplicate_execution")
	ErrContextNotFound     = errors.New("context_not_found")
	ErrSlippageViolation   = errors.New("slippage_violation")
	ErrAssetNotAllowed     = errors.New("asset_not_allowed")
	ErrSlippageTooHigh     = errors.New("slippage_too_high")
	ErrFeeTooHigh          = errors.New("fee_too_high")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrDispatchFailed      = errors.New("dispatch_failed")
	ErrWebhookNotFound     = errors.New("webhook_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
