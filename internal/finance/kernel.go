/*
This file contains the shared numeric kernel for the pricing engine: the
float64 view of the pricing inputs and the cumulative-normal approximation.
All accounting stays in 18-decimal fixed point; only the transcendental
evaluations pass through here.
*/

package finance

import (
	"errors"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/utils"
)

// Error definitions for kernel input validation
var (
	ErrInvalidPriceInput = errors.New("pricing input is invalid")
)

// PriceInput carries everything the closed-form price, payoff and delta
// functions need. All values are 18-decimal fixed point; Tau is expressed in
// years.
type PriceInput struct {
	Spot     sdkmath.LegacyDec
	Strike   sdkmath.LegacyDec
	KA       sdkmath.LegacyDec
	KB       sdkmath.LegacyDec
	Theta    sdkmath.LegacyDec
	Sigma    sdkmath.LegacyDec
	RiskFree sdkmath.LegacyDec
	Tau      sdkmath.LegacyDec
}

// kernelInput is the float64 mirror of PriceInput with the derived quantities
// every formula shares: z0 = S/K, the log-space band edges and sqrt terms.
type kernelInput struct {
	s, k, kA, kB  float64
	theta         float64
	sigma, r, tau float64

	z0       float64 // S/K
	rootA    float64 // sqrt(kA/k)
	rootB    float64 // sqrt(kB/k)
	sigRtTau float64 // sigma*sqrt(tau)
}

func (in PriceInput) kernel() (kernelInput, error) {
	var ki kernelInput
	var err error
	if ki.s, err = utils.DecToFloat(in.Spot); err != nil {
		return ki, err
	}
	if ki.k, err = utils.DecToFloat(in.Strike); err != nil {
		return ki, err
	}
	if ki.kA, err = utils.DecToFloat(in.KA); err != nil {
		return ki, err
	}
	if ki.kB, err = utils.DecToFloat(in.KB); err != nil {
		return ki, err
	}
	if ki.theta, err = utils.DecToFloat(in.Theta); err != nil {
		return ki, err
	}
	if ki.sigma, err = utils.DecToFloat(in.Sigma); err != nil {
		return ki, err
	}
	if ki.r, err = utils.DecToFloat(in.RiskFree); err != nil {
		return ki, err
	}
	if ki.tau, err = utils.DecToFloat(in.Tau); err != nil {
		return ki, err
	}
	if ki.s <= 0 || ki.k <= 0 || ki.kA <= 0 || ki.kB <= ki.kA || ki.theta <= 0 {
		return ki, ErrInvalidPriceInput
	}
	ki.z0 = ki.s / ki.k
	ki.rootA = math.Sqrt(ki.kA / ki.k)
	ki.rootB = math.Sqrt(ki.kB / ki.k)
	ki.sigRtTau = ki.sigma * math.Sqrt(ki.tau)
	return ki, nil
}

// cdf is the standard normal cumulative distribution, evaluated through the
// complementary error function.
func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// d2 is the log-moneyness-plus-drift term against threshold y (in strike
// units): (ln(z0/y) + (r - sigma^2/2)tau) / (sigma*sqrt(tau)). d1 adds a full
// volatility step, d3 a half step.
func (ki kernelInput) d2(y float64) float64 {
	return (math.Log(ki.z0/y) + (ki.r-0.5*ki.sigma*ki.sigma)*ki.tau) / ki.sigRtTau
}

func (ki kernelInput) d1(y float64) float64 {
	return ki.d2(y) + ki.sigRtTau
}

func (ki kernelInput) d3(y float64) float64 {
	return ki.d2(y) + 0.5*ki.sigRtTau
}

// halfPowerDrift is the drift correction for the sqrt(z) terms:
// E[sqrt(z_T) 1{...}] = sqrt(z0) * exp(r*tau/2 - sigma^2*tau/8) * N(d3).
func (ki kernelInput) halfPowerDrift() float64 {
	return math.Exp(0.5*ki.r*ki.tau - ki.sigma*ki.sigma*ki.tau/8)
}
