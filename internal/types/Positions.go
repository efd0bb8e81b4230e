/*
This file contains the per-owner ledger entry types: option positions held
against a series, vault deposit receipts, and withdrawal claims. Epochs are
identified by their checkpoint unix timestamp; zero means "never written".
*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Position is an option holding keyed by (epoch, owner, strike). A position
// exists iff Epoch is non-zero. Premium accumulates additively across mints
// into the same key and is proportionally reduced on partial burns.
type Position struct {
	Epoch      int64             `json:"epoch"`
	Owner      string            `json:"owner"`
	Strike     sdkmath.LegacyDec `json:"strike"`
	AmountUp   sdkmath.LegacyDec `json:"amount_up"`
	AmountDown sdkmath.LegacyDec `json:"amount_down"`
	Premium    sdkmath.LegacyDec `json:"premium"`
}

// Exists reports whether the position has ever been written.
func (p Position) Exists() bool {
	return p.Epoch != 0
}

// Amount returns the held notional as a flavor pair.
func (p Position) Amount() Amount {
	return Amount{Up: p.AmountUp, Down: p.AmountDown}
}

// DepositReceipt tracks a depositor's pending and settled vault deposits.
// Shares owed for a past epoch are computed lazily from Amount and that
// epoch's finalized share price; once accrued they move to UnredeemedShares
// and Amount is reused for the new epoch.
type DepositReceipt struct {
	Epoch            int64             `json:"epoch"`
	Amount           sdkmath.LegacyDec `json:"amount"`
	UnredeemedShares sdkmath.LegacyDec `json:"unredeemed_shares"`
	CumulativeAmount sdkmath.LegacyDec `json:"cumulative_amount"`
}

// Withdrawal is a depositor's claim to exit at the share price finalized for
// Epoch. Same-epoch requests accumulate; a second request in a different,
// still-incomplete epoch is rejected by the vault.
type Withdrawal struct {
	Epoch  int64             `json:"epoch"`
	Shares sdkmath.LegacyDec `json:"shares"`
}
