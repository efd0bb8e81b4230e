/*
This file contains the price oracle contract the core consumes. The oracle is
an external collaborator: it must answer whenever the core calls it, and a
missing oracle is a fatal configuration error rather than a retryable one.
*/

package oracle

import (
	"errors"
	"time"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for oracle consumers
var (
	ErrMissingOracle = errors.New("missing oracle")
	ErrUnknownPair   = errors.New("oracle has no price for pair")
)

// PriceOracle exposes spot prices, implied volatilities and risk-free rates.
// Prices are 18-decimal ratios of tokenB per tokenA.
type PriceOracle interface {
	// GetPrice returns the spot price of tokenA denominated in tokenB.
	GetPrice(tokenA, tokenB string) (sdkmath.LegacyDec, error)

	// GetImpliedVolatility returns the market implied volatility for the pair
	// at the given strike over the given period length.
	GetImpliedVolatility(tokenA, tokenB string, strike sdkmath.LegacyDec, periodLength time.Duration) (sdkmath.LegacyDec, error)

	// GetRiskFreeRate returns the annualized risk-free rate for the token.
	GetRiskFreeRate(token string) (sdkmath.LegacyDec, error)
}
