package domain

import (
	"fmt"
	"math/big"
)

// BPSDenominator is the basis-point scale: 10000 bp = 100%.
const BPSDenominator = 10_000

// MinimumOutput computes the smallest acceptable swap output for an
// order: expected = fromAmount * priceNum / priceDenom, reduced by the
// slippage tolerance. Both divisions truncate toward zero, so the
// minimum is never rounded up. Arithmetic is arbitrary-precision;
// intermediate products of amount × price routinely exceed 64 bits.
func MinimumOutput(fromAmount, priceNum, priceDenom *big.Int, slippageBP uint64) (*big.Int, error) {
	if priceDenom == nil || priceDenom.Sign() == 0 {
		return nil, fmt.Errorf("price denominator must be non-zero")
	}
	if slippageBP > BPSDenominator {
		return nil, fmt.Errorf("slippage %d bp exceeds %d bp", slippageBP, BPSDenominator)
	}

	expected := new(big.Int).Mul(fromAmount, priceNum)
	expected.Quo(expected, priceDenom)

	minOut := expected.Mul(expected, big.NewInt(BPSDenominator-int64(slippageBP)))
	return minOut.Quo(minOut, big.NewInt(BPSDenominator)), nil
}

// SplitFee divides a swap output into the executor's fee and the
// user's share: fee = output * feeBPS / 10000, truncated. The user
// receives the exact remainder, so fee + user == output.
func SplitFee(output *big.Int, feeBPS uint64) (fee, user *big.Int) {
	fee = new(big.Int).Mul(output, new(big.Int).SetUint64(feeBPS))
	fee.Quo(fee, big.NewInt(BPSDenominator))
	user = new(big.Int).Sub(output, fee)
	return fee, user
}
