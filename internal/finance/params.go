/*
This file contains the per-series finance parameters. One Parameters value is
created at each roll together with the new epoch; tunables live behind
delayed-activation holders so operator changes only bite after the configured
delay.
*/

package finance

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/types"
)

// Tunables are the operator-adjustable knobs, all delayed-activation.
type Tunables struct {
	SigmaMultiplier       types.TimeLocked[sdkmath.LegacyDec] `json:"sigma_multiplier"`
	UtilizationRateFactor types.TimeLocked[sdkmath.LegacyDec] `json:"utilization_rate_factor"`
	TimeDecay             types.TimeLocked[sdkmath.LegacyDec] `json:"time_decay"`
	PriceDiscountFactor   types.TimeLocked[sdkmath.LegacyDec] `json:"price_discount_factor"`
	UseOracleVolatility   types.TimeLocked[bool]              `json:"use_oracle_volatility"`
}

// DefaultTunables returns the launch configuration: 2x range multiplier, a
// 3x utilization sensitivity, a 25% per-epoch decay toward baseline, no sell
// discount, and utilization-driven volatility.
func DefaultTunables() Tunables {
	return Tunables{
		SigmaMultiplier:       types.NewTimeLocked(sdkmath.LegacyNewDec(2)),
		UtilizationRateFactor: types.NewTimeLocked(sdkmath.LegacyNewDec(3)),
		TimeDecay:             types.NewTimeLocked(sdkmath.LegacyNewDecWithPrec(25, 2)),
		PriceDiscountFactor:   types.NewTimeLocked(sdkmath.LegacyZeroDec()),
		UseOracleVolatility:   types.NewTimeLocked(false),
	}
}

// Parameters is one option series' maturity-scoped state: the strike and
// liquidity range the epoch was rolled at, the baseline volatility, and the
// running utilization tracker. kA <= CurrentStrike <= kB is expected; Theta
// is derived from the three, never set independently.
type Parameters struct {
	Maturity         int64             `json:"maturity"` // epoch checkpoint, unix seconds
	CurrentStrike    sdkmath.LegacyDec `json:"current_strike"`
	InitialLiquidity types.Amount      `json:"initial_liquidity"`
	KA               sdkmath.LegacyDec `json:"k_a"`
	KB               sdkmath.LegacyDec `json:"k_b"`
	Theta            sdkmath.LegacyDec `json:"theta"`
	SigmaZero        sdkmath.LegacyDec `json:"sigma_zero"`
	Tunables         Tunables          `json:"tunables"`
	Volatility       VolatilityState   `json:"volatility"`
}

// NewParameters rotates a parameter set for a fresh epoch: it derives the
// liquidity range and theta from the strike and volatility and resets the
// utilization tracker.
func NewParameters(maturity time.Time, strike, sigmaZero sdkmath.LegacyDec, tunables Tunables, epochStart time.Time) (Parameters, error) {
	tau := YearsBetween(epochStart, maturity)
	kA, kB, err := LiquidityRange(strike, tunables.SigmaMultiplier.Get(epochStart), sigmaZero, tau)
	if err != nil {
		return Parameters{}, err
	}
	theta, err := Theta(strike, kA, kB)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{
		Maturity:         maturity.Unix(),
		CurrentStrike:    strike,
		InitialLiquidity: types.ZeroAmount(),
		KA:               kA,
		KB:               kB,
		Theta:            theta,
		SigmaZero:        sigmaZero,
		Tunables:         tunables,
		Volatility:       NewVolatilityState(epochStart),
	}, nil
}

// PriceInputAt assembles the pricing input for the series at a spot price and
// evaluation time.
func (p Parameters) PriceInputAt(spot, riskFree sdkmath.LegacyDec, now time.Time) PriceInput {
	return PriceInput{
		Spot:     spot,
		Strike:   p.CurrentStrike,
		KA:       p.KA,
		KB:       p.KB,
		Theta:    p.Theta,
		Sigma:    p.SigmaZero,
		RiskFree: riskFree,
		Tau:      YearsBetween(now, time.Unix(p.Maturity, 0).UTC()),
	}
}

// Degenerate reports whether the series' range has collapsed onto the strike.
func (p Parameters) Degenerate() bool {
	return RangeDegenerate(p.CurrentStrike, p.KA, p.KB)
}

// secondsPerYear uses the 365-day convention.
const secondsPerYear = 365 * 24 * 3600

// YearsBetween returns the year fraction from now to maturity as fixed point,
// floored at zero for anything already matured.
func YearsBetween(now, maturity time.Time) sdkmath.LegacyDec {
	seconds := int64(maturity.Sub(now) / time.Second)
	if seconds <= 0 {
		return sdkmath.LegacyZeroDec()
	}
	return sdkmath.LegacyNewDec(seconds).QuoTruncate(sdkmath.LegacyNewDec(secondsPerYear))
}
