package domain

import "math/big"

// SwapRequest is the payload dispatched to the external swap venue.
// MinAmountOut travels with the request as a venue-side guardrail.
type SwapRequest struct {
	RequestID    string
	OrderID      uint64
	FromAsset    string
	FromAmount   *big.Int
	ToAsset      string
	MinAmountOut *big.Int
}

// SwapOutput is a single (asset, amount) payment returned by the venue.
type SwapOutput struct {
	Asset  string
	Amount *big.Int
}

// SwapResult is the venue's resolution for a dispatched request:
// either a set of output payments or a failure with a message.
type SwapResult struct {
	Success bool
	Outputs []SwapOutput
	Message string
}

// OutputFor returns the output amount denominated in the given asset,
// or zero if the venue returned none.
func (r *SwapResult) OutputFor(asset string) *big.Int {
	for _, out := range r.Outputs {
		if out.Asset == asset && out.Amount != nil {
			return new(big.Int).Set(out.Amount)
		}
	}
	return new(big.Int)
}
