package domain

import (
	"math/big"
	"testing"

	"pgregory.net/rapid"
)

// genAmount generates a positive amount up to 128 bits wide, so products
// with prices routinely exceed uint64.
func genAmount() *rapid.Generator[*big.Int] {
	return rapid.Custom(func(t *rapid.T) *big.Int {
		hi := rapid.Uint64().Draw(t, "hi")
		lo := rapid.Uint64Range(1, ^uint64(0)).Draw(t, "lo")
		v := new(big.Int).SetUint64(hi)
		v.Lsh(v, 64)
		return v.Add(v, new(big.Int).SetUint64(lo))
	})
}

func TestProperty_SplitFeeConserves(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		output := genAmount().Draw(t, "output")
		feeBPS := rapid.Uint64Range(0, MaxFeeBPS).Draw(t, "feeBPS")

		fee, user := SplitFee(output, feeBPS)

		total := new(big.Int).Add(fee, user)
		if total.Cmp(output) != 0 {
			t.Fatalf("fee %s + user %s = %s, want %s", fee, user, total, output)
		}
		if fee.Sign() < 0 {
			t.Fatalf("fee %s is negative", fee)
		}
		if user.Sign() < 0 {
			t.Fatalf("user share %s is negative", user)
		}
	})
}

func TestProperty_MinimumOutputNeverExceedsExpected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fromAmount := genAmount().Draw(t, "fromAmount")
		priceNum := genAmount().Draw(t, "priceNum")
		priceDenom := genAmount().Draw(t, "priceDenom")
		slippageBP := rapid.Uint64Range(0, BPSDenominator).Draw(t, "slippageBP")

		minOut, err := MinimumOutput(fromAmount, priceNum, priceDenom, slippageBP)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := new(big.Int).Mul(fromAmount, priceNum)
		expected.Quo(expected, priceDenom)

		if minOut.Cmp(expected) > 0 {
			t.Fatalf("minimum %s exceeds expected output %s", minOut, expected)
		}
		if minOut.Sign() < 0 {
			t.Fatalf("minimum %s is negative", minOut)
		}
		if slippageBP == 0 && minOut.Cmp(expected) != 0 {
			t.Fatalf("zero slippage: minimum %s differs from expected %s", minOut, expected)
		}
	})
}

func TestProperty_PriceMetMatchesRationalComparison(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		o := &Order{
			PriceNumerator:   genAmount().Draw(t, "priceNum"),
			PriceDenominator: genAmount().Draw(t, "priceDenom"),
		}
		observedNum := genAmount().Draw(t, "observedNum")
		observedDenom := genAmount().Draw(t, "observedDenom")

		got := o.PriceMet(observedNum, observedDenom)

		observed := new(big.Rat).SetFrac(observedNum, observedDenom)
		target := new(big.Rat).SetFrac(o.PriceNumerator, o.PriceDenominator)
		want := observed.Cmp(target) <= 0

		if got != want {
			t.Fatalf("PriceMet(%s/%s) vs target %s/%s = %v, want %v",
				observedNum, observedDenom, o.PriceNumerator, o.PriceDenominator, got, want)
		}
	})
}
