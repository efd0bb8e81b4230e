package exchange

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/oracle"
)

// SimAdapter is a deterministic swap venue that fills at the oracle price
// plus a configurable proportional spread. It backs the service's sim mode
// and the test suites; a live deployment swaps in a venue-specific adapter.
type SimAdapter struct {
	mu     sync.Mutex
	oracle oracle.PriceOracle
	spread sdkmath.LegacyDec // proportional, e.g. 0.003 for 30 bps
}

// NewSimAdapter builds a sim venue around a price source.
func NewSimAdapter(priceSource oracle.PriceOracle, spread sdkmath.LegacyDec) *SimAdapter {
	return &SimAdapter{oracle: priceSource, spread: spread}
}

func (s *SimAdapter) price(tokenIn, tokenOut string) (sdkmath.LegacyDec, error) {
	p, err := s.oracle.GetPrice(tokenIn, tokenOut)
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s/%s", ErrUnknownPair, tokenIn, tokenOut)
	}
	return p, nil
}

// GetOutputAmount implements SwapAdapter.
func (s *SimAdapter) GetOutputAmount(tokenIn, tokenOut string, amountIn sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	p, err := s.price(tokenIn, tokenOut)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	haircut := sdkmath.LegacyOneDec().Sub(s.spread)
	return amountIn.MulTruncate(p).MulTruncate(haircut), nil
}

// GetInputAmount implements SwapAdapter.
func (s *SimAdapter) GetInputAmount(tokenIn, tokenOut string, amountOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	p, err := s.price(tokenOut, tokenIn)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	markup := sdkmath.LegacyOneDec().Add(s.spread)
	return amountOut.MulTruncate(p).MulTruncate(markup), nil
}

// GetInputAmountMax implements SwapAdapter. The sim venue fills exactly at
// its preview, so the worst case equals the preview.
func (s *SimAdapter) GetInputAmountMax(tokenIn, tokenOut string, amountOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	return s.GetInputAmount(tokenIn, tokenOut, amountOut)
}

// SwapIn implements SwapAdapter.
func (s *SimAdapter) SwapIn(tokenIn, tokenOut string, amountIn sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.GetOutputAmount(tokenIn, tokenOut, amountIn)
}

// SwapOut implements SwapAdapter.
func (s *SimAdapter) SwapOut(tokenIn, tokenOut string, amountOut, maxInput sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, err := s.GetInputAmount(tokenIn, tokenOut, amountOut)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	if in.GT(maxInput) {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: need %s, max %s", ErrSlippageExceeded, in, maxInput)
	}
	return in, nil
}
