/*
This file contains common utility functions for converting between token-native
integer amounts, 18-decimal protocol fixed point, and the float64 values used
by the transcendental pricing kernels.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

// Protocol-wide fixed point carries 18 fractional decimal digits. Token-native
// amounts are normalized to this scale before any engine call.
const ProtocolDecimals = 18

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidDecimals  = errors.New("token decimals are invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// NormalizeAmount converts a token-native integer amount into the 18-decimal
// protocol representation. decimals is the token's native fractional digit
// count (e.g. 6 for USDC-style tokens).
func NormalizeAmount(amount sdkmath.Int, decimals int) (sdkmath.LegacyDec, error) {
	if decimals < 0 || decimals > ProtocolDecimals {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidDecimals, decimals)
	}
	if amount.IsNil() {
		return sdkmath.LegacyDec{}, ErrAmountNil
	}
	if amount.IsNegative() {
		return sdkmath.LegacyDec{}, ErrAmountNegative
	}
	return sdkmath.LegacyNewDecFromIntWithPrec(amount, int64(decimals)), nil
}

// DenormalizeAmount converts an 18-decimal protocol quantity back into a
// token-native integer amount, truncating any precision the token cannot
// represent. Truncation, never rounding, is the protocol-wide convention.
func DenormalizeAmount(amount sdkmath.LegacyDec, decimals int) (sdkmath.Int, error) {
	if decimals < 0 || decimals > ProtocolDecimals {
		return sdkmath.Int{}, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidDecimals, decimals)
	}
	if amount.IsNil() {
		return sdkmath.Int{}, ErrAmountNil
	}
	if amount.IsNegative() {
		return sdkmath.Int{}, ErrAmountNegative
	}
	factor := sdkmath.LegacyNewDec(10).Power(uint64(decimals))
	return amount.MulTruncate(factor).TruncateInt(), nil
}

// DecToFloat bridges a protocol quantity into float64 for the transcendental
// pricing kernels. The accounting paths never use this; only log/exp/sqrt and
// the cumulative-normal approximation do.
func DecToFloat(d sdkmath.LegacyDec) (float64, error) {
	if d.IsNil() {
		return 0, ErrAmountNil
	}
	f, err := d.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, f)
	}
	return f, nil
}

// FloatToDec snaps a float64 kernel result back into the 18-decimal protocol
// representation. String formatting avoids binary floating point artifacts in
// the lower digits.
func FloatToDec(f float64) (sdkmath.LegacyDec, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: value is %f", ErrNotFinite, f)
	}
	d, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.18f", f))
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	return d, nil
}
