/*
This file contains the persistence-facing record types: per-trade receipts and
per-roll snapshots. These are written to the database for the dashboard and
post-mortem analysis; the in-memory ledgers remain the source of truth.
*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// TradeKind distinguishes receipt rows.
type TradeKind string

const (
	TradeMint TradeKind = "MINT"
	TradeBurn TradeKind = "BURN"
)

// TradeReceipt records one settled mint or burn.
type TradeReceipt struct {
	ReceiptID  int64             `json:"receipt_id,omitempty"` // Auto-incremented by DB
	TradeID    string            `json:"trade_id"`
	Kind       TradeKind         `json:"kind"`
	Epoch      int64             `json:"epoch"`
	Owner      string            `json:"owner"`
	Strike     sdkmath.LegacyDec `json:"strike"`
	AmountUp   sdkmath.LegacyDec `json:"amount_up"`
	AmountDown sdkmath.LegacyDec `json:"amount_down"`
	Premium    sdkmath.LegacyDec `json:"premium"` // Paid on mint, received on burn
	Fee        sdkmath.LegacyDec `json:"fee"`
	Timestamp  time.Time         `json:"timestamp"`
}

// RollSnapshot records the state transition performed by one epoch roll.
type RollSnapshot struct {
	SnapshotID int64     `json:"snapshot_id,omitempty"` // Auto-incremented by DB
	RollNumber int       `json:"roll_number"`
	Timestamp  time.Time `json:"timestamp"`

	PreviousEpoch int64 `json:"previous_epoch"`
	CurrentEpoch  int64 `json:"current_epoch"`

	// Finalized accounting for the epoch that just ended
	PricePerShare      sdkmath.LegacyDec `json:"price_per_share"`
	OutstandingShares  sdkmath.LegacyDec `json:"outstanding_shares"`
	PortfolioValue     sdkmath.LegacyDec `json:"portfolio_value"`
	LockedInitially    sdkmath.LegacyDec `json:"locked_initially"`
	ReservedPayoff     sdkmath.LegacyDec `json:"reserved_payoff"`
	PendingWithdrawals sdkmath.LegacyDec `json:"pending_withdrawals"`

	// Parameters rotated in for the new epoch
	Strike      sdkmath.LegacyDec `json:"strike"`
	KA          sdkmath.LegacyDec `json:"k_a"`
	KB          sdkmath.LegacyDec `json:"k_b"`
	SigmaZero   sdkmath.LegacyDec `json:"sigma_zero"`
	VaultDead   bool              `json:"vault_dead"`
	VaultPaused bool              `json:"vault_paused"`
}
