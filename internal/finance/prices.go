/*
This file contains the closed-form option prices. Each side's price is the
discounted risk-neutral expectation of its payoff shape under a lognormal
terminal price. The payoff decomposes into constant, linear and square-root
terms with breakpoints at the strike and the range bounds, so the expectation
reduces to weighted cumulative-normal terms evaluated at three moneyness
references (S/K, S/Ka, S/Kb) through d1, d2 and d3.
*/

package finance

import (
	"errors"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/utils"
)

// Error definitions for the price path
var (
	// ErrNegativePrice indicates a negative residue beyond rounding tolerance:
	// a real pricing fault, not a float artifact.
	ErrNegativePrice = errors.New("negative option price beyond tolerance")
)

// negativeResidueTolerance separates rounding artifacts (clamped to zero)
// from genuine pricing faults (rejected).
const negativeResidueTolerance = 1e-9

// Prices returns the unitary up and down option prices for the input. Prices
// are per unit of notional and denominated in the base token.
func Prices(in PriceInput) (up, down sdkmath.LegacyDec, err error) {
	zero := sdkmath.LegacyZeroDec()
	ki, err := in.kernel()
	if err != nil {
		return zero, zero, err
	}

	var upF, downF float64
	if ki.sigRtTau <= 0 {
		// Degenerate diffusion: the terminal price is known, so each side is
		// worth its discounted intrinsic payoff.
		pUp, pDown := ki.payoffPerc()
		disc := math.Exp(-ki.r * ki.tau)
		upF, downF = disc*pUp, disc*pDown
	} else {
		upF = ki.priceUp()
		downF = ki.priceDown()
	}

	if upF, err = checkResidue(upF); err != nil {
		return zero, zero, err
	}
	if downF, err = checkResidue(downF); err != nil {
		return zero, zero, err
	}
	if up, err = utils.FloatToDec(upF); err != nil {
		return zero, zero, err
	}
	if down, err = utils.FloatToDec(downF); err != nil {
		return zero, zero, err
	}
	return up, down, nil
}

// checkResidue clamps sub-tolerance negative values to zero and rejects
// anything more negative.
func checkResidue(v float64) (float64, error) {
	if v >= 0 {
		return v, nil
	}
	if v > -negativeResidueTolerance {
		return 0, nil
	}
	return 0, ErrNegativePrice
}

// priceUp integrates the bull payoff over [K, Kb] and [Kb, inf).
func (ki kernelInput) priceUp() float64 {
	b := ki.kB / ki.k
	growth := math.Exp(ki.r * ki.tau)
	half := ki.halfPowerDrift()

	n1K, n1B := cdf(ki.d1(1)), cdf(ki.d1(b))
	n2K, n2B := cdf(ki.d2(1)), cdf(ki.d2(b))
	n3K, n3B := cdf(ki.d3(1)), cdf(ki.d3(b))

	// Band K < S_T < Kb: hold leg minus concentrated leg.
	ones := n2K - n2B
	linear := ki.z0 * growth * (n1K - n1B)
	root := math.Sqrt(ki.z0) * half * (n3K - n3B)
	band := (ones+linear)/2 - (2*root-ki.rootA*ones-linear/ki.rootB)/ki.theta

	// Tail S_T >= Kb: concentrated leg frozen at (sqrt(b)-sqrt(a))/theta.
	tailOnes := n2B
	tailLinear := ki.z0 * growth * n1B
	tail := (tailOnes+tailLinear)/2 - (ki.rootB-ki.rootA)/ki.theta*tailOnes

	return math.Exp(-ki.r*ki.tau) * (band + tail)
}

// priceDown integrates the bear payoff over [Ka, K] and (0, Ka].
func (ki kernelInput) priceDown() float64 {
	a := ki.kA / ki.k
	growth := math.Exp(ki.r * ki.tau)
	half := ki.halfPowerDrift()

	m1K, m1A := cdf(-ki.d1(1)), cdf(-ki.d1(a))
	m2K, m2A := cdf(-ki.d2(1)), cdf(-ki.d2(a))
	m3K, m3A := cdf(-ki.d3(1)), cdf(-ki.d3(a))

	// Band Ka < S_T < K.
	ones := m2K - m2A
	linear := ki.z0 * growth * (m1K - m1A)
	root := math.Sqrt(ki.z0) * half * (m3K - m3A)
	band := (ones+linear)/2 - (2*root-ki.rootA*ones-linear/ki.rootB)/ki.theta

	// Tail S_T <= Ka: concentrated leg decays linearly with slope
	// (1/sqrt(a)-1/sqrt(b))/theta.
	tailOnes := m2A
	tailLinear := ki.z0 * growth * m1A
	tail := (tailOnes+tailLinear)/2 - (1/ki.rootA-1/ki.rootB)/ki.theta*tailLinear

	return math.Exp(-ki.r*ki.tau) * (band + tail)
}
