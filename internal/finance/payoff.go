/*
This file contains the closed-form payoff percentages owed at maturity, per
unit of notional and denominated in the base token. The shape is the
impermanent loss of a liquidity position concentrated on [kA, kB] against a
50/50 hold, normalized by theta; the bull flavor collects it above the strike,
the bear flavor below. Separate formulas apply inside and outside the range
because the concentrated position stops rebalancing at the bounds.
*/

package finance

import (
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/utils"
)

// PayoffPercentages returns the per-unit payoff of the up and down flavors at
// the given spot. Both are zero at the strike; exactly one is non-zero
// anywhere else.
func PayoffPercentages(in PriceInput) (up, down sdkmath.LegacyDec, err error) {
	zero := sdkmath.LegacyZeroDec()
	ki, err := in.kernel()
	if err != nil {
		return zero, zero, err
	}
	upF, downF := ki.payoffPerc()
	if up, err = utils.FloatToDec(clampResidue(upF)); err != nil {
		return zero, zero, err
	}
	if down, err = utils.FloatToDec(clampResidue(downF)); err != nil {
		return zero, zero, err
	}
	return up, down, nil
}

// clampResidue snaps tiny negative float artifacts to zero. Anything beyond
// the residue tolerance is handled by the price path, which treats it as a
// real pricing fault; the payoff shape itself is non-negative by construction.
func clampResidue(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func (ki kernelInput) payoffPerc() (up, down float64) {
	z := ki.z0
	a := ki.kA / ki.k
	b := ki.kB / ki.k
	switch {
	case z > 1:
		if z >= b {
			up = ki.payoffAboveRange(z)
		} else {
			up = ki.payoffInRange(z)
		}
	case z < 1:
		if z <= a {
			down = ki.payoffBelowRange(z)
		} else {
			down = ki.payoffInRange(z)
		}
	}
	return up, down
}

// payoffInRange is (1+z)/2 - (2*sqrt(z) - sqrt(a) - z/sqrt(b)) / theta for
// a <= z <= b, with a = kA/k and b = kB/k. Zero at z = 1.
func (ki kernelInput) payoffInRange(z float64) float64 {
	hold := (1 + z) / 2
	lp := (2*math.Sqrt(z) - ki.rootA - z/ki.rootB) / ki.theta
	return hold - lp
}

// payoffAboveRange applies once the position is entirely in the base asset:
// the concentrated value is frozen at (sqrt(b) - sqrt(a)) / theta.
func (ki kernelInput) payoffAboveRange(z float64) float64 {
	hold := (1 + z) / 2
	lp := (ki.rootB - ki.rootA) / ki.theta
	return hold - lp
}

// payoffBelowRange applies once the position is entirely in the side asset:
// the concentrated value decays linearly, z*(1/sqrt(a) - 1/sqrt(b)) / theta.
func (ki kernelInput) payoffBelowRange(z float64) float64 {
	hold := (1 + z) / 2
	lp := z * (1/ki.rootA - 1/ki.rootB) / ki.theta
	return hold - lp
}
