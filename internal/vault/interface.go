package vault

import (
	sdkmath "cosmossdk.io/math"
)

// RollResult reports the accounting finalized by one epoch roll.
type RollResult struct {
	PricePerShare    sdkmath.LegacyDec
	SharesMinted     sdkmath.LegacyDec
	LockedInitially  sdkmath.LegacyDec
	PortfolioValue   sdkmath.LegacyDec
	ReservedPayoff   sdkmath.LegacyDec
	PendingWithdrawn sdkmath.LegacyDec
	Dead             bool
	Paused           bool
}

// HedgeVault is the narrow system-facing surface the option issuer holds.
// The issuer cannot invoke arbitrary vault state mutation; these primitives
// and nothing else, each gated by a capability check on the caller.
type HedgeVault interface {
	// DeltaHedge buys (positive) or sells (negative) a signed quantity of the
	// side token, returning the base amount traded.
	DeltaHedge(caller string, sideAmount sdkmath.LegacyDec) (sdkmath.LegacyDec, error)

	// ReservePayoff sets aside residual payoff computed at epoch end.
	ReservePayoff(caller string, amount sdkmath.LegacyDec) error

	// TransferPayoff pays out an option holder, drawing from the reserved
	// payoff bucket for matured epochs or from general liquidity otherwise.
	// amount is the gross claim; fee is retained in the fee bucket and the
	// holder receives amount minus fee.
	TransferPayoff(caller, recipient string, amount, fee sdkmath.LegacyDec, pastEpoch bool) error

	// CollectPremium credits a mint's premium to the portfolio and its fee to
	// the fee bucket.
	CollectPremium(caller string, premium, fee sdkmath.LegacyDec) error

	// RollEpoch runs the roll-time accounting and moves the vault into the
	// next epoch.
	RollEpoch(caller string, nextEpoch int64, spot sdkmath.LegacyDec) (RollResult, error)

	// SideTokenBalance returns the side tokens currently on hand.
	SideTokenBalance() sdkmath.LegacyDec

	// LockedInitially returns the capital backing the active epoch.
	LockedInitially() sdkmath.LegacyDec

	// IsDead reports whether the vault has been liquidated.
	IsDead() bool
}
