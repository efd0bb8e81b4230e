/*
This file contains the liquidity range construction: the [kA, kB] price band
the payoff shape is concentrated on, and the theta normalization factor
derived from it. The range is always built symmetrically around the strike in
log space, kA = k*exp(-m*sigma*sqrt(tau)) and kB = k*exp(+m*sigma*sqrt(tau)).
*/

package finance

import (
	"errors"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/utils"
)

// Error definitions for range construction
var (
	ErrInvalidRangeInput = errors.New("liquidity range input is invalid")
)

// minLiquidityBound floors kA so downstream divisions by sqrt(kA) can never
// hit zero, even for extreme volatility inputs.
var minLiquidityBound = sdkmath.LegacyNewDecWithPrec(1, 9) // 1e-9

// rangeTolerance is the relative width below which a bound is considered to
// have collapsed onto the strike.
const rangeTolerance = 1e-9

// LiquidityRange computes kA and kB for a strike, a range multiplier m, a
// baseline volatility sigma and tau years to maturity. kA is floored to a
// minimum positive value.
func LiquidityRange(strike, multiplier, sigma, tau sdkmath.LegacyDec) (kA, kB sdkmath.LegacyDec, err error) {
	zero := sdkmath.LegacyZeroDec()
	if !strike.IsPositive() || sigma.IsNegative() || tau.IsNegative() {
		return zero, zero, ErrInvalidRangeInput
	}
	k, err := utils.DecToFloat(strike)
	if err != nil {
		return zero, zero, err
	}
	m, err := utils.DecToFloat(multiplier)
	if err != nil {
		return zero, zero, err
	}
	s, err := utils.DecToFloat(sigma)
	if err != nil {
		return zero, zero, err
	}
	t, err := utils.DecToFloat(tau)
	if err != nil {
		return zero, zero, err
	}

	width := m * s * math.Sqrt(t)
	kA, err = utils.FloatToDec(k * math.Exp(-width))
	if err != nil {
		return zero, zero, err
	}
	kB, err = utils.FloatToDec(k * math.Exp(width))
	if err != nil {
		return zero, zero, err
	}
	if kA.LT(minLiquidityBound) {
		kA = minLiquidityBound
	}
	return kA, kB, nil
}

// Theta returns the normalization factor 2 - sqrt(kA/k) - sqrt(k/kB). It is
// derived, never independently settable.
func Theta(strike, kA, kB sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if !strike.IsPositive() || !kA.IsPositive() || !kB.IsPositive() {
		return sdkmath.LegacyZeroDec(), ErrInvalidRangeInput
	}
	k, err := utils.DecToFloat(strike)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	a, err := utils.DecToFloat(kA)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	b, err := utils.DecToFloat(kB)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	return utils.FloatToDec(2 - math.Sqrt(a/k) - math.Sqrt(k/b))
}

// RangeDegenerate reports whether either bound has collapsed onto the strike
// within numeric tolerance. A degenerate range makes theta vanish and the
// payoff shape meaningless; the issuer pauses new trading on the series.
func RangeDegenerate(strike, kA, kB sdkmath.LegacyDec) bool {
	k, errK := utils.DecToFloat(strike)
	a, errA := utils.DecToFloat(kA)
	b, errB := utils.DecToFloat(kB)
	if errK != nil || errA != nil || errB != nil {
		return true
	}
	if k <= 0 {
		return true
	}
	return a >= k*(1-rangeTolerance) || b <= k*(1+rangeTolerance)
}
