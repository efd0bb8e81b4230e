package vault

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/odyn-fi/odyn/internal/auth"
	"github.com/odyn-fi/odyn/internal/exchange"
	"github.com/odyn-fi/odyn/internal/oracle"
	"github.com/odyn-fi/odyn/internal/types"
)

const issuerID = "test-issuer"

func dec(t *testing.T, s string) sdkmath.LegacyDec {
	t.Helper()
	d, err := sdkmath.LegacyNewDecFromStr(s)
	require.NoError(t, err)
	return d
}

// newTestVault builds a vault over a zero-spread sim venue so every trade
// fills exactly at the oracle price.
func newTestVault(t *testing.T, maxDeposit sdkmath.LegacyDec) (*Vault, *oracle.StaticOracle) {
	t.Helper()
	feed := oracle.NewStaticOracle()
	feed.SetPrice("ETH", "USDC", sdkmath.LegacyOneDec())
	venue := exchange.NewSimAdapter(feed, sdkmath.LegacyZeroDec())

	v, err := New(Config{
		BaseToken:    types.Token{Symbol: "USDC", Denom: "USDC", Decimals: 6},
		SideToken:    types.Token{Symbol: "ETH", Denom: "ETH", Decimals: 18},
		Exchange:     venue,
		Policy:       auth.Policy{IssuerID: issuerID},
		MaxDeposit:   maxDeposit,
		HedgeMargin:  dec(t, "0.01"),
		InitialEpoch: 100,
	})
	require.NoError(t, err)
	return v, feed
}

func TestGenesisDepositMintsParShares(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))

	result, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)
	require.Equal(t, sdkmath.LegacyOneDec().String(), result.PricePerShare.String())
	require.Equal(t, sdkmath.LegacyNewDec(100).String(), result.SharesMinted.String())
	require.Equal(t, sdkmath.LegacyNewDec(100).String(), result.LockedInitially.String())

	// Shares accrue lazily at the finalized price.
	require.NoError(t, v.Redeem("alice", sdkmath.LegacyNewDec(100)))
	require.Equal(t, sdkmath.LegacyNewDec(100).String(), v.ShareBalance("alice").String())

	// After the roll the portfolio sits at an equal-value split.
	snap := v.Snapshot()
	require.Equal(t, sdkmath.LegacyNewDec(50).String(), snap.BaseBalance.String())
	require.Equal(t, sdkmath.LegacyNewDec(50).String(), snap.SideBalance.String())
	require.Equal(t, sdkmath.LegacyNewDec(100).String(), snap.TotalShares.String())
}

func TestSecondDepositorMintsAtFinalizedPrice(t *testing.T) {
	v, feed := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	// Bob deposits during the epoch; the side holdings then double in value.
	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "bob", ""))
	spot := sdkmath.LegacyNewDec(2)
	feed.SetPrice("ETH", "USDC", spot)

	result, err := v.RollEpoch(issuerID, 300, spot)
	require.NoError(t, err)

	// Portfolio: 50 base + 100 bob + 50 side * 2 = 250; bob's pending 100
	// is stripped, so 100 shares price at 1.5.
	require.Equal(t, dec(t, "1.5").String(), result.PricePerShare.String())

	// Bob's shares are worth his deposit at entry; alice captured the gain.
	require.True(t, result.SharesMinted.MulTruncate(result.PricePerShare).LTE(sdkmath.LegacyNewDec(100)))
	require.True(t, result.SharesMinted.GT(dec(t, "66.66")))
	require.True(t, result.SharesMinted.LT(dec(t, "66.67")))

	require.NoError(t, v.Redeem("alice", sdkmath.LegacyNewDec(100)))
	aliceValue := v.ShareBalance("alice").MulTruncate(result.PricePerShare)
	require.Equal(t, sdkmath.LegacyNewDec(150).String(), aliceValue.String())
}

func TestWithdrawalSettlesWithOneEpochLag(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	require.NoError(t, v.InitiateWithdraw("alice", sdkmath.LegacyNewDec(40)))

	// The claim cannot complete inside its own epoch.
	_, err = v.CompleteWithdraw("alice")
	require.ErrorIs(t, err, ErrWithdrawNotReady)

	result, err := v.RollEpoch(issuerID, 300, sdkmath.LegacyOneDec())
	require.NoError(t, err)
	require.Equal(t, sdkmath.LegacyNewDec(40).String(), result.PendingWithdrawn.String())
	require.Equal(t, sdkmath.LegacyNewDec(60).String(), result.LockedInitially.String())

	amount, err := v.CompleteWithdraw("alice")
	require.NoError(t, err)
	require.Equal(t, sdkmath.LegacyNewDec(40).String(), amount.String())

	snap := v.Snapshot()
	require.Equal(t, sdkmath.LegacyNewDec(60).String(), snap.TotalShares.String())
	require.True(t, snap.PendingWithdrawals.IsZero())
}

func TestSecondWithdrawalInNewEpochRejected(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	require.NoError(t, v.InitiateWithdraw("alice", sdkmath.LegacyNewDec(10)))
	// Same epoch accumulates.
	require.NoError(t, v.InitiateWithdraw("alice", sdkmath.LegacyNewDec(10)))

	_, err = v.RollEpoch(issuerID, 300, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	// A new claim while the old one is still unclaimed is rejected.
	err = v.InitiateWithdraw("alice", sdkmath.LegacyNewDec(10))
	require.ErrorIs(t, err, ErrExistingIncompleteWithdraw)
}

func TestKilledVaultLiquidatesAndRescues(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	v.Kill()
	result, err := v.RollEpoch(issuerID, 300, sdkmath.LegacyOneDec())
	require.NoError(t, err)
	require.True(t, result.Dead)
	require.Equal(t, sdkmath.LegacyOneDec().String(), result.PricePerShare.String())
	require.True(t, v.IsDead())

	// All side holdings were liquidated before pricing.
	require.True(t, v.SideTokenBalance().IsZero())

	// Normal flows are closed; the rescue path pays at the death price.
	require.ErrorIs(t, v.Deposit(sdkmath.LegacyNewDec(10), "bob", ""), ErrVaultDead)
	require.ErrorIs(t, v.InitiateWithdraw("alice", sdkmath.LegacyNewDec(1)), ErrVaultDead)

	amount, err := v.RescueShares("alice")
	require.NoError(t, err)
	require.Equal(t, sdkmath.LegacyNewDec(100).String(), amount.String())
	require.True(t, v.ShareBalance("alice").IsZero())
	require.True(t, v.Snapshot().TotalShares.IsZero())
}

func TestRescueRequiresDeadVault(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())
	_, err := v.RescueShares("alice")
	require.ErrorIs(t, err, ErrVaultNotDead)
}

func TestDepositCap(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyNewDec(150))

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	require.ErrorIs(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""), ErrDepositCapExceeded)
	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(50), "alice", ""))

	// The cap is per depositor.
	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(150), "bob", ""))
}

func TestIssuerPrimitivesAreCapabilityGated(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	_, err := v.DeltaHedge("mallory", sdkmath.LegacyOneDec())
	require.ErrorIs(t, err, auth.ErrUnauthorizedVaultCaller)
	require.ErrorIs(t, v.ReservePayoff("mallory", sdkmath.LegacyOneDec()), auth.ErrUnauthorizedVaultCaller)
	require.ErrorIs(t, v.CollectPremium("mallory", sdkmath.LegacyOneDec(), sdkmath.LegacyZeroDec()), auth.ErrUnauthorizedVaultCaller)
	_, err = v.RollEpoch("mallory", 200, sdkmath.LegacyOneDec())
	require.ErrorIs(t, err, auth.ErrUnauthorizedVaultCaller)
}

func TestPremiumAndFeeLandInSeparateBuckets(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.CollectPremium(issuerID, sdkmath.LegacyNewDec(10), sdkmath.LegacyOneDec()))
	snap := v.Snapshot()
	require.Equal(t, sdkmath.LegacyNewDec(10).String(), snap.BaseBalance.String())
	require.Equal(t, sdkmath.LegacyOneDec().String(), snap.FeeBalance.String())
}

func TestReservedPayoffIsProtectedFromRebalance(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	require.NoError(t, v.ReservePayoff(issuerID, sdkmath.LegacyNewDec(20)))
	result, err := v.RollEpoch(issuerID, 300, sdkmath.LegacyOneDec())
	require.NoError(t, err)
	require.Equal(t, sdkmath.LegacyNewDec(20).String(), result.ReservedPayoff.String())

	// The base side must cover the reserve after rebalancing.
	snap := v.Snapshot()
	require.True(t, snap.BaseBalance.GTE(sdkmath.LegacyNewDec(20)))
	require.Equal(t, sdkmath.LegacyNewDec(20).String(), snap.PendingPayoffs.String())

	// Claiming more than the reserve fails; claiming within it drains it.
	err = v.TransferPayoff(issuerID, "bob", sdkmath.LegacyNewDec(21), sdkmath.LegacyZeroDec(), true)
	require.ErrorIs(t, err, ErrPayoffExceedsReserve)
	require.NoError(t, v.TransferPayoff(issuerID, "bob", sdkmath.LegacyNewDec(20), sdkmath.LegacyZeroDec(), true))
	require.True(t, v.Snapshot().PendingPayoffs.IsZero())
}

// newSpreadTestVault builds a vault over a venue that charges a proportional
// spread on every fill.
func newSpreadTestVault(t *testing.T, spread string) *Vault {
	t.Helper()
	feed := oracle.NewStaticOracle()
	feed.SetPrice("ETH", "USDC", sdkmath.LegacyOneDec())
	venue := exchange.NewSimAdapter(feed, dec(t, spread))

	v, err := New(Config{
		BaseToken:    types.Token{Symbol: "USDC", Denom: "USDC", Decimals: 6},
		SideToken:    types.Token{Symbol: "ETH", Denom: "ETH", Decimals: 18},
		Exchange:     venue,
		Policy:       auth.Policy{IssuerID: issuerID},
		MaxDeposit:   sdkmath.LegacyZeroDec(),
		HedgeMargin:  dec(t, "0.01"),
		InitialEpoch: 100,
	})
	require.NoError(t, err)
	return v
}

func TestZeroSharePriceAbortsRollAndBlocksOutflows(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)
	require.NoError(t, v.InitiateWithdraw("alice", sdkmath.LegacyNewDec(40)))
	_, err = v.RollEpoch(issuerID, 300, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	// A reserve exceeding the whole portfolio prices the shares at zero.
	require.NoError(t, v.ReservePayoff(issuerID, sdkmath.LegacyNewDec(100)))
	result, err := v.RollEpoch(issuerID, 400, sdkmath.LegacyOneDec())
	require.ErrorIs(t, err, ErrZeroSharePrice)
	require.True(t, result.Paused)
	require.True(t, v.IsPaused())

	// The paused vault admits no value in or out until remediation, even for
	// a withdrawal whose price was finalized in an earlier epoch.
	require.ErrorIs(t, v.Deposit(sdkmath.LegacyNewDec(10), "bob", ""), ErrVaultPaused)
	_, err = v.CompleteWithdraw("alice")
	require.ErrorIs(t, err, ErrVaultPaused)
	require.ErrorIs(t, v.TransferPayoff(issuerID, "bob", sdkmath.LegacyOneDec(), sdkmath.LegacyZeroDec(), false), ErrVaultPaused)
}

func TestShortfallAfterRebalancePausesVault(t *testing.T) {
	v := newSpreadTestVault(t, "0.2")

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))
	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)

	// The 20% spread bleeds the rebalance: 40 base / 50 side after the roll.
	snap := v.Snapshot()
	require.Equal(t, sdkmath.LegacyNewDec(40).String(), snap.BaseBalance.String())
	require.Equal(t, sdkmath.LegacyNewDec(50).String(), snap.SideBalance.String())

	// An 80 reserve against a 90 portfolio still prices the shares above
	// zero, but selling side at the spread nets too little base to cover it.
	require.NoError(t, v.ReservePayoff(issuerID, sdkmath.LegacyNewDec(80)))
	result, err := v.RollEpoch(issuerID, 300, sdkmath.LegacyOneDec())
	require.ErrorIs(t, err, ErrLiquidityShortfall)
	require.True(t, result.Paused)
	require.True(t, v.IsPaused())

	// Reserved claims stay frozen rather than draining the base below zero.
	err = v.TransferPayoff(issuerID, "bob", sdkmath.LegacyNewDec(80), sdkmath.LegacyZeroDec(), true)
	require.ErrorIs(t, err, ErrVaultPaused)
}

func TestRedeemRequiresAccruedShares(t *testing.T) {
	v, _ := newTestVault(t, sdkmath.LegacyZeroDec())

	require.NoError(t, v.Deposit(sdkmath.LegacyNewDec(100), "alice", ""))

	// Shares do not exist until the epoch rolls.
	require.ErrorIs(t, v.Redeem("alice", sdkmath.LegacyNewDec(1)), ErrInsufficientShares)

	_, err := v.RollEpoch(issuerID, 200, sdkmath.LegacyOneDec())
	require.NoError(t, err)
	require.NoError(t, v.Redeem("alice", sdkmath.LegacyNewDec(100)))
	require.ErrorIs(t, v.Redeem("alice", sdkmath.LegacyNewDec(1)), ErrInsufficientShares)
}
