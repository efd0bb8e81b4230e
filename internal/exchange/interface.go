/*
This file contains the swap adapter contract. The core treats every swap as
atomic and final; a swap that cannot meet its bound fails the whole enclosing
operation. Previews are read-only and never move funds.
*/

package exchange

import (
	"errors"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for swap execution
var (
	ErrSlippageExceeded = errors.New("swap slippage bound exceeded")
	ErrUnknownPair      = errors.New("exchange has no market for pair")
)

// SwapAdapter converts between the two asset kinds of a series.
type SwapAdapter interface {
	// SwapIn sells exactly amountIn of tokenIn and returns the amount of
	// tokenOut received.
	SwapIn(tokenIn, tokenOut string, amountIn sdkmath.LegacyDec) (sdkmath.LegacyDec, error)

	// SwapOut buys exactly amountOut of tokenOut, spending at most maxInput
	// of tokenIn, and returns the amount actually spent.
	SwapOut(tokenIn, tokenOut string, amountOut, maxInput sdkmath.LegacyDec) (sdkmath.LegacyDec, error)

	// GetOutputAmount previews SwapIn.
	GetOutputAmount(tokenIn, tokenOut string, amountIn sdkmath.LegacyDec) (sdkmath.LegacyDec, error)

	// GetInputAmount previews SwapOut.
	GetInputAmount(tokenIn, tokenOut string, amountOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error)

	// GetInputAmountMax previews the worst-case SwapOut cost including the
	// venue's slippage allowance.
	GetInputAmountMax(tokenIn, tokenOut string, amountOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error)
}
