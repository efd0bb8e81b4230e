package oracle

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
)

// StaticOracle is an in-process oracle fed by the operator or by tests. Reads
// may run concurrently with feed updates.
type StaticOracle struct {
	mu     sync.RWMutex
	prices map[string]sdkmath.LegacyDec
	ivs    map[string]sdkmath.LegacyDec
	rates  map[string]sdkmath.LegacyDec
}

// NewStaticOracle returns an empty oracle; pairs must be fed before use.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		prices: make(map[string]sdkmath.LegacyDec),
		ivs:    make(map[string]sdkmath.LegacyDec),
		rates:  make(map[string]sdkmath.LegacyDec),
	}
}

func pairKey(tokenA, tokenB string) string {
	return tokenA + "/" + tokenB
}

// SetPrice feeds the spot price for a pair, and its inverse for the reversed
// pair so both query directions resolve.
func (o *StaticOracle) SetPrice(tokenA, tokenB string, price sdkmath.LegacyDec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[pairKey(tokenA, tokenB)] = price
	if price.IsPositive() {
		o.prices[pairKey(tokenB, tokenA)] = sdkmath.LegacyOneDec().QuoTruncate(price)
	}
}

// SetImpliedVolatility feeds the implied volatility for a pair.
func (o *StaticOracle) SetImpliedVolatility(tokenA, tokenB string, iv sdkmath.LegacyDec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ivs[pairKey(tokenA, tokenB)] = iv
}

// SetRiskFreeRate feeds the annualized risk-free rate for a token.
func (o *StaticOracle) SetRiskFreeRate(token string, rate sdkmath.LegacyDec) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rates[token] = rate
}

// GetPrice implements PriceOracle.
func (o *StaticOracle) GetPrice(tokenA, tokenB string) (sdkmath.LegacyDec, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	price, ok := o.prices[pairKey(tokenA, tokenB)]
	if !ok {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s/%s", ErrUnknownPair, tokenA, tokenB)
	}
	return price, nil
}

// GetImpliedVolatility implements PriceOracle. Strike and period are accepted
// for interface compatibility; the static feed carries one surface point.
func (o *StaticOracle) GetImpliedVolatility(tokenA, tokenB string, _ sdkmath.LegacyDec, _ time.Duration) (sdkmath.LegacyDec, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	iv, ok := o.ivs[pairKey(tokenA, tokenB)]
	if !ok {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s/%s", ErrUnknownPair, tokenA, tokenB)
	}
	return iv, nil
}

// GetRiskFreeRate implements PriceOracle. Unknown tokens earn zero.
func (o *StaticOracle) GetRiskFreeRate(token string) (sdkmath.LegacyDec, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	rate, ok := o.rates[token]
	if !ok {
		return sdkmath.LegacyZeroDec(), nil
	}
	return rate, nil
}
