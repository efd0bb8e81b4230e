/*
This file contains the volatility machinery: the time-weighted average of
post-trade utilization maintained incrementally across an epoch, the fold of
that average into the next epoch's baseline volatility, and an annualized
realized-volatility estimator over historical prices for seeding a series.
*/

package finance

import (
	"errors"
	"math"
	"sort"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/utils"
)

// ErrInsufficientData indicates that not enough data points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// VolatilityState accumulates the time-weighted post-trade utilization rate
// since the epoch began. Updated on every trade; read once at roll time.
type VolatilityState struct {
	EpochStart time.Time         `json:"epoch_start"`
	LastUpdate time.Time         `json:"last_update"`
	LastUr     sdkmath.LegacyDec `json:"last_ur"`
	Integral   sdkmath.LegacyDec `json:"integral"` // sum of ur * seconds held
}

// NewVolatilityState starts tracking at the epoch's opening timestamp.
func NewVolatilityState(epochStart time.Time) VolatilityState {
	return VolatilityState{
		EpochStart: epochStart,
		LastUpdate: epochStart,
		LastUr:     sdkmath.LegacyZeroDec(),
		Integral:   sdkmath.LegacyZeroDec(),
	}
}

// Update folds the utilization that held since the previous trade into the
// integral and records the new post-trade rate.
func (v *VolatilityState) Update(now time.Time, postTradeUr sdkmath.LegacyDec) {
	if now.After(v.LastUpdate) {
		held := sdkmath.LegacyNewDec(int64(now.Sub(v.LastUpdate) / time.Second))
		v.Integral = v.Integral.Add(v.LastUr.MulTruncate(held))
		v.LastUpdate = now
	}
	v.LastUr = postTradeUr
}

// TimeWeightedUr closes the accumulation at epochEnd and returns the average
// utilization over the whole epoch.
func (v VolatilityState) TimeWeightedUr(epochEnd time.Time) sdkmath.LegacyDec {
	span := sdkmath.LegacyNewDec(int64(epochEnd.Sub(v.EpochStart) / time.Second))
	if !span.IsPositive() {
		return v.LastUr
	}
	integral := v.Integral
	if epochEnd.After(v.LastUpdate) {
		tailHeld := sdkmath.LegacyNewDec(int64(epochEnd.Sub(v.LastUpdate) / time.Second))
		integral = integral.Add(v.LastUr.MulTruncate(tailHeld))
	}
	return integral.QuoTruncate(span)
}

// SigmaZeroNext derives the next epoch's baseline volatility. The utilization
// average enters through a cubic sensitivity term scaled by urFactor, and the
// result decays linearly toward the reference volatility with timeDecay in
// (0, 1]: a quiet epoch pulls sigma back to its long-run baseline.
func SigmaZeroNext(sigmaPrev, sigmaRef, tvwUr, urFactor, timeDecay sdkmath.LegacyDec) sdkmath.LegacyDec {
	one := sdkmath.LegacyOneDec()
	cubic := tvwUr.MulTruncate(tvwUr).MulTruncate(tvwUr)
	adjusted := sigmaPrev.MulTruncate(one.Add(urFactor.Sub(one).MulTruncate(cubic)))
	return sigmaRef.Add(timeDecay.MulTruncate(adjusted.Sub(sigmaRef)))
}

// PricePoint is one historical price observation.
type PricePoint struct {
	Timestamp time.Time
	Price     sdkmath.LegacyDec
}

// RealizedVolatility calculates the annualized historical volatility from a
// series of price data. It assumes the price data is sorted chronologically;
// if not, it sorts it first. It uses logarithmic returns and population
// standard deviation. The annualizationFactor should match the frequency of
// the data (e.g. 8760 for hourly, 365 for daily).
func RealizedVolatility(prices []PricePoint, annualizationFactor float64) (sdkmath.LegacyDec, error) {
	n := len(prices)
	if n < 2 {
		return sdkmath.LegacyZeroDec(), ErrInsufficientData
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Timestamp.Before(prices[j].Timestamp)
	})

	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		current, err := utils.DecToFloat(prices[i].Price)
		if err != nil {
			continue
		}
		previous, err := utils.DecToFloat(prices[i-1].Price)
		if err != nil {
			continue
		}
		// Non-positive prices would break math.Log; skip the pair.
		if previous <= 0 || current <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(current/previous))
	}

	numReturns := len(logReturns)
	if numReturns == 0 {
		return sdkmath.LegacyZeroDec(), ErrInsufficientData
	}

	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mean := sum / float64(numReturns)

	var sumSqDiff float64
	for _, r := range logReturns {
		sumSqDiff += (r - mean) * (r - mean)
	}
	variance := sumSqDiff / float64(numReturns)

	annualized := math.Sqrt(variance) * math.Sqrt(annualizationFactor)
	return utils.FloatToDec(annualized)
}
