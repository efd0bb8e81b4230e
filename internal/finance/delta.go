/*
This file contains the delta-hedge math: per-unit price sensitivities for the
two flavors and the signed side-token quantity the vault must trade to stay
hedged. Deltas are expressed in side-token units per unit of notional. Both
are clamped to their liquidity-range-implied limits, the asymptotic payoff
slopes, so extreme price ratios saturate instead of overflowing.
*/

package finance

import (
	"errors"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/utils"
)

// Error definitions for hedge sizing
var (
	ErrInsufficientSideTokens = errors.New("hedge exceeds side token balance")
)

// hedgeRoundingTolerance lets a sell that marginally exceeds the on-hand side
// balance (by under 0.01%) clamp to the balance instead of failing.
var hedgeRoundingTolerance = sdkmath.LegacyNewDecWithPrec(1, 4) // 1e-4

// Deltas returns the per-unit hedge sensitivities of the up and down flavors.
// The up delta lies in [0, upLimit], the down delta in [downLimit, 0]; the
// limits are the payoff slopes outside the liquidity range.
func Deltas(in PriceInput) (upDelta, downDelta sdkmath.LegacyDec, err error) {
	zero := sdkmath.LegacyZeroDec()
	ki, err := in.kernel()
	if err != nil {
		return zero, zero, err
	}

	upLimit := 0.5 / ki.k
	downLimit := (0.5 - (1/ki.rootA-1/ki.rootB)/ki.theta) / ki.k

	var upF, downF float64
	if ki.sigRtTau <= 0 {
		upF, downF = ki.intrinsicDeltas()
	} else {
		upF = ki.deltaUp()
		downF = ki.deltaDown()
	}
	upF = math.Max(0, math.Min(upF, upLimit))
	downF = math.Min(0, math.Max(downF, downLimit))

	if upDelta, err = utils.FloatToDec(upF); err != nil {
		return zero, zero, err
	}
	if downDelta, err = utils.FloatToDec(downF); err != nil {
		return zero, zero, err
	}
	return upDelta, downDelta, nil
}

// deltaUp differentiates the bull price in S. Boundary terms cancel because
// the payoff is continuous; only the explicit z and sqrt(z) prefactors
// survive.
func (ki kernelInput) deltaUp() float64 {
	b := ki.kB / ki.k
	half := ki.halfPowerDrift()
	disc := math.Exp(-ki.r * ki.tau)

	n1K, n1B := cdf(ki.d1(1)), cdf(ki.d1(b))
	n3K, n3B := cdf(ki.d3(1)), cdf(ki.d3(b))

	band := (0.5+1/(ki.theta*ki.rootB))*(n1K-n1B) -
		disc*half*(n3K-n3B)/(ki.theta*math.Sqrt(ki.z0))
	tail := 0.5 * n1B
	return (band + tail) / ki.k
}

// deltaDown mirrors deltaUp over the bear regions; it is non-positive.
func (ki kernelInput) deltaDown() float64 {
	a := ki.kA / ki.k
	half := ki.halfPowerDrift()
	disc := math.Exp(-ki.r * ki.tau)

	m1K, m1A := cdf(-ki.d1(1)), cdf(-ki.d1(a))
	m3K, m3A := cdf(-ki.d3(1)), cdf(-ki.d3(a))

	band := (0.5+1/(ki.theta*ki.rootB))*(m1K-m1A) -
		disc*half*(m3K-m3A)/(ki.theta*math.Sqrt(ki.z0))
	tail := (0.5 - (1/ki.rootA-1/ki.rootB)/ki.theta) * m1A
	return (band + tail) / ki.k
}

// intrinsicDeltas is the deterministic slope of the payoff at z0, used when
// the diffusion term has vanished (tau or sigma zero).
func (ki kernelInput) intrinsicDeltas() (up, down float64) {
	z := ki.z0
	a := ki.kA / ki.k
	b := ki.kB / ki.k
	switch {
	case z > 1:
		if z >= b {
			up = 0.5 / ki.k
		} else {
			up = (0.5 - (1/math.Sqrt(z)-1/ki.rootB)/ki.theta) / ki.k
		}
	case z < 1:
		if z <= a {
			down = (0.5 - (1/ki.rootA-1/ki.rootB)/ki.theta) / ki.k
		} else {
			down = (0.5 - (1/math.Sqrt(z)-1/ki.rootB)/ki.theta) / ki.k
		}
	}
	return up, down
}

// HedgeAmount converts per-unit deltas and a traded notional into the signed
// side-token quantity the vault must buy (positive) or sell (negative).
// Burns flip the sign: closing exposure unwinds the hedge. When the computed
// sell marginally exceeds the on-hand side balance, within the rounding
// tolerance, it snaps to sell exactly the balance; a larger excess fails.
func HedgeAmount(upDelta, downDelta, amountUp, amountDown, sideBalance sdkmath.LegacyDec, isMint bool) (sdkmath.LegacyDec, error) {
	trade := upDelta.MulTruncate(amountUp).Add(downDelta.MulTruncate(amountDown))
	if !isMint {
		trade = trade.Neg()
	}
	if trade.IsNegative() {
		sell := trade.Neg()
		if sell.GT(sideBalance) {
			limit := sideBalance.Mul(sdkmath.LegacyOneDec().Add(hedgeRoundingTolerance))
			if sell.GT(limit) {
				return sdkmath.LegacyZeroDec(), ErrInsufficientSideTokens
			}
			trade = sideBalance.Neg()
		}
	}
	return trade, nil
}
