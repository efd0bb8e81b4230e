/*
This file contains the paired notional type shared by the notional ledger, the
position ledger, the pricing engine and the option issuer. Up and Down are the
two option flavors whose combined payoff approximates impermanent-gain
exposure.
*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Amount is a pair of notional quantities, one per option flavor. Arithmetic
// never underflows; callers check before decreasing.
type Amount struct {
	Up   sdkmath.LegacyDec `json:"up"`
	Down sdkmath.LegacyDec `json:"down"`
}

// ZeroAmount returns an Amount with both flavors initialized to zero.
func ZeroAmount() Amount {
	return Amount{Up: sdkmath.LegacyZeroDec(), Down: sdkmath.LegacyZeroDec()}
}

// NewAmount builds an Amount from the two flavor quantities.
func NewAmount(up, down sdkmath.LegacyDec) Amount {
	return Amount{Up: up, Down: down}
}

// Total returns Up + Down.
func (a Amount) Total() sdkmath.LegacyDec {
	return a.Up.Add(a.Down)
}

// IsZero reports whether both flavors are zero.
func (a Amount) IsZero() bool {
	return a.Up.IsZero() && a.Down.IsZero()
}

// Increase adds the other amount flavor-wise.
func (a Amount) Increase(other Amount) Amount {
	return Amount{Up: a.Up.Add(other.Up), Down: a.Down.Add(other.Down)}
}

// Decrease subtracts the other amount flavor-wise. The caller must have
// verified Covers(other) first; a negative result is a programming error.
func (a Amount) Decrease(other Amount) Amount {
	return Amount{Up: a.Up.Sub(other.Up), Down: a.Down.Sub(other.Down)}
}

// Covers reports whether a is flavor-wise greater than or equal to other.
func (a Amount) Covers(other Amount) bool {
	return a.Up.GTE(other.Up) && a.Down.GTE(other.Down)
}
