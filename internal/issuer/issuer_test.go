package issuer

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/odyn-fi/odyn/internal/auth"
	"github.com/odyn-fi/odyn/internal/epoch"
	"github.com/odyn-fi/odyn/internal/exchange"
	"github.com/odyn-fi/odyn/internal/fees"
	"github.com/odyn-fi/odyn/internal/finance"
	"github.com/odyn-fi/odyn/internal/notional"
	"github.com/odyn-fi/odyn/internal/oracle"
	"github.com/odyn-fi/odyn/internal/types"
	"github.com/odyn-fi/odyn/internal/vault"
)

const (
	rollerID   = "roller"
	managerID  = "pm"
	testIssuer = "issuer-1"
)

// openSpend is a spend bound no test premium comes near.
var openSpend = sdkmath.LegacyNewDec(1000000)

func dec(t *testing.T, s string) sdkmath.LegacyDec {
	t.Helper()
	d, err := sdkmath.LegacyNewDecFromStr(s)
	require.NoError(t, err)
	return d
}

type testEnv struct {
	now    time.Time
	feed   *oracle.StaticOracle
	vault  *vault.Vault
	issuer *Issuer
	epochs *epoch.Controller
	fees   *fees.Schedule
}

func newTestEnv(t *testing.T) *testEnv {
	return newTunedEnv(t, finance.DefaultTunables(), nil)
}

// newTunedEnv wires a series over a zero-spread sim venue with zero fees, a
// daily epoch and a 2000 base-per-side spot.
func newTunedEnv(t *testing.T, tunables finance.Tunables, rec Recorder) *testEnv {
	t.Helper()
	e := &testEnv{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}

	e.feed = oracle.NewStaticOracle()
	e.feed.SetPrice("ETH", "USDC", sdkmath.LegacyNewDec(2000))
	venue := exchange.NewSimAdapter(e.feed, sdkmath.LegacyZeroDec())

	epochs, err := epoch.New(24*time.Hour, 24*time.Hour, e.now)
	require.NoError(t, err)
	e.epochs = epochs

	policy := auth.Policy{Roller: rollerID, PositionManager: managerID, IssuerID: testIssuer}

	e.vault, err = vault.New(vault.Config{
		BaseToken:    types.Token{Symbol: "USDC", Denom: "USDC", Decimals: 6},
		SideToken:    types.Token{Symbol: "ETH", Denom: "ETH", Decimals: 18},
		Exchange:     venue,
		Policy:       policy,
		MaxDeposit:   sdkmath.LegacyZeroDec(),
		HedgeMargin:  dec(t, "0.01"),
		InitialEpoch: epochs.Current().Unix(),
	})
	require.NoError(t, err)

	zero := sdkmath.LegacyZeroDec()
	e.fees = fees.NewSchedule(zero, zero, zero, zero, time.Hour)

	e.issuer, err = New(Config{
		SeriesID:      "ETH-USDC-1D",
		BaseToken:     types.Token{Symbol: "USDC", Denom: "USDC", Decimals: 6},
		SideToken:     types.Token{Symbol: "ETH", Denom: "ETH", Decimals: 18},
		Vault:         e.vault,
		Oracle:        e.feed,
		Exchange:      venue,
		Epochs:        epochs,
		Fees:          e.fees,
		Policy:        policy,
		Recorder:      rec,
		BaselineSigma: dec(t, "0.5"),
		Tunables:      tunables,
		Clock:         func() time.Time { return e.now },
	})
	require.NoError(t, err)
	return e
}

// bootstrap deposits vault liquidity and rolls the first epoch so trading
// can begin.
func (e *testEnv) bootstrap(t *testing.T) {
	t.Helper()
	require.NoError(t, e.vault.Deposit(sdkmath.LegacyNewDec(1000), "lp", ""))
	e.now = e.epochs.Current().Add(time.Minute)
	_, err := e.issuer.RollEpoch(rollerID)
	require.NoError(t, err)
}

func TestMintBeforeFirstRollLacksNotional(t *testing.T) {
	e := newTestEnv(t)
	strike := e.issuer.State().Strike

	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.ErrorIs(t, err, notional.ErrNotEnoughNotional)
}

func TestFirstRollAllocatesNotionalEvenly(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)

	state := e.issuer.State()
	require.Equal(t, sdkmath.LegacyNewDec(2000).String(), state.Strike.String())
	require.Equal(t, sdkmath.LegacyNewDec(500).String(), state.Available.Up.String())
	require.Equal(t, sdkmath.LegacyNewDec(500).String(), state.Available.Down.String())
	require.False(t, state.Paused)
}

func TestMintBurnRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	e.now = e.now.Add(6 * time.Hour)

	strike := e.issuer.State().Strike
	premium, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.NoError(t, err)
	require.True(t, premium.IsPositive())

	epochKey := e.issuer.State().CurrentEpoch
	pos := e.issuer.PositionOf(epochKey, "user", strike)
	require.True(t, pos.Exists())
	require.Equal(t, sdkmath.LegacyNewDec(10).String(), pos.AmountUp.String())
	require.Equal(t, premium.String(), pos.Premium.String())

	info := e.issuer.NotionalInfo(epochKey, strike)
	require.Equal(t, sdkmath.LegacyNewDec(20).String(), info.Used.Total().String())

	// Burn half before maturity at fair value.
	e.now = e.now.Add(time.Hour)
	net, err := e.issuer.Burn("user", epochKey, strike, sdkmath.LegacyNewDec(5), sdkmath.LegacyNewDec(5), sdkmath.LegacyZeroDec())
	require.NoError(t, err)
	require.False(t, net.IsNegative())

	pos = e.issuer.PositionOf(epochKey, "user", strike)
	require.Equal(t, sdkmath.LegacyNewDec(5).String(), pos.AmountUp.String())
	info = e.issuer.NotionalInfo(epochKey, strike)
	require.Equal(t, sdkmath.LegacyNewDec(10).String(), info.Used.Total().String())
}

func TestMintRejectsWrongStrike(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)

	_, err := e.issuer.Mint("user", "user", sdkmath.LegacyNewDec(1999), sdkmath.LegacyNewDec(1), sdkmath.LegacyNewDec(1), openSpend)
	require.ErrorIs(t, err, ErrInvalidStrike)
}

func TestMintRequiresBalancedAmountsForUsers(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	strike := e.issuer.State().Strike

	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(1), sdkmath.LegacyNewDec(2), openSpend)
	require.ErrorIs(t, err, ErrUnbalancedAmount)

	// The position manager may mint asymmetrically.
	_, err = e.issuer.Mint(managerID, managerID, strike, sdkmath.LegacyNewDec(1), sdkmath.LegacyNewDec(2), openSpend)
	require.NoError(t, err)
}

func TestMintRespectsMaxSpend(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	strike := e.issuer.State().Strike

	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDecWithPrec(1, 18))
	require.ErrorIs(t, err, ErrPremiumExceedsMax)
}

func TestMintRequiresSpendBound(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	strike := e.issuer.State().Strike

	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyOneDec(), sdkmath.LegacyOneDec(), sdkmath.LegacyZeroDec())
	require.ErrorIs(t, err, ErrInvalidSpendBound)

	_, err = e.issuer.Mint("user", "user", strike, sdkmath.LegacyOneDec(), sdkmath.LegacyOneDec(), dec(t, "-1"))
	require.ErrorIs(t, err, ErrInvalidSpendBound)
}

func TestMintExceedingNotionalFails(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	strike := e.issuer.State().Strike

	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(600), sdkmath.LegacyNewDec(600), openSpend)
	require.ErrorIs(t, err, notional.ErrNotEnoughNotional)
}

func TestMaturedBurnClaimsPayoff(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	e.now = e.now.Add(6 * time.Hour)

	strike := e.issuer.State().Strike
	epochKey := e.issuer.State().CurrentEpoch
	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.NoError(t, err)

	// The side asset rallies 20% into maturity; the bull flavor settles
	// in the money.
	e.feed.SetPrice("ETH", "USDC", sdkmath.LegacyNewDec(2400))
	e.now = e.epochs.Current().Add(time.Minute)
	snapshot, err := e.issuer.RollEpoch(rollerID)
	require.NoError(t, err)
	require.True(t, snapshot.ReservedPayoff.IsPositive())
	require.Equal(t, sdkmath.LegacyNewDec(2400).String(), snapshot.Strike.String())

	// The settled claim pays the pro-rata share and drains the reserve.
	net, err := e.issuer.Burn("user", epochKey, strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), sdkmath.LegacyZeroDec())
	require.NoError(t, err)
	require.True(t, net.IsPositive())
	require.True(t, e.vault.Snapshot().PendingPayoffs.IsZero())

	require.False(t, e.issuer.PositionOf(epochKey, "user", strike).Exists())
}

func TestMaturedClaimBelowVaultFeeFails(t *testing.T) {
	e := newTestEnv(t)
	e.fees.ProposeVaultMinFee(dec(t, "0.05"), e.now)
	e.bootstrap(t)
	e.now = e.now.Add(6 * time.Hour)

	strike := e.issuer.State().Strike
	epochKey := e.issuer.State().CurrentEpoch
	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.NoError(t, err)

	// Spot closes at the strike: the settled claim is worth nothing and
	// cannot cover the mandatory vault fee.
	e.now = e.epochs.Current().Add(time.Minute)
	_, err = e.issuer.RollEpoch(rollerID)
	require.NoError(t, err)

	_, err = e.issuer.Burn("user", epochKey, strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), sdkmath.LegacyZeroDec())
	require.ErrorIs(t, err, ErrPayoffTooLow)

	// The rejected claim leaves the position intact.
	require.True(t, e.issuer.PositionOf(epochKey, "user", strike).Exists())
}

func TestSettledAtStrikeHasNoPayoff(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	e.now = e.now.Add(6 * time.Hour)

	strike := e.issuer.State().Strike
	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.NoError(t, err)

	// Spot closes exactly at the strike: neither flavor pays.
	e.now = e.epochs.Current().Add(time.Minute)
	snapshot, err := e.issuer.RollEpoch(rollerID)
	require.NoError(t, err)
	require.True(t, snapshot.ReservedPayoff.IsZero())
}

func TestRollAuthorizationAndPhase(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.issuer.RollEpoch("mallory")
	require.ErrorIs(t, err, auth.ErrUnauthorizedRoller)

	// The roller cannot roll a live epoch.
	_, err = e.issuer.RollEpoch(rollerID)
	require.ErrorIs(t, err, epoch.ErrEpochNotFinished)
}

func TestMintRejectedAfterEpochEnds(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	strike := e.issuer.State().Strike

	// Past the checkpoint, order-sensitive operations wait for the roll.
	e.now = e.epochs.Current().Add(time.Minute)
	_, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(1), sdkmath.LegacyNewDec(1), openSpend)
	require.ErrorIs(t, err, epoch.ErrEpochFinished)
}

func TestPremiumQuoteMatchesMint(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	e.now = e.now.Add(6 * time.Hour)
	strike := e.issuer.State().Strike

	quoted, fee, err := e.issuer.PremiumQuote(sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10))
	require.NoError(t, err)
	require.True(t, fee.IsZero())

	premium, err := e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.NoError(t, err)
	require.Equal(t, quoted.String(), premium.String())
}

func TestZeroNotionalTradesRejected(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrap(t)
	strike := e.issuer.State().Strike
	zero := sdkmath.LegacyZeroDec()

	_, err := e.issuer.Mint("user", "user", strike, zero, zero, openSpend)
	require.ErrorIs(t, err, ErrZeroNotional)

	_, err = e.issuer.Burn("user", e.issuer.State().CurrentEpoch, strike, zero, zero, zero)
	require.ErrorIs(t, err, ErrZeroNotional)
}

func TestDegenerateRangePausesTradingUntilRecovery(t *testing.T) {
	tunables := finance.DefaultTunables()
	tunables.UseOracleVolatility = types.NewTimeLocked(true)
	e := newTunedEnv(t, tunables, nil)
	e.feed.SetImpliedVolatility("ETH", "USDC", sdkmath.LegacyZeroDec())
	e.bootstrap(t)

	// A zero volatility collapses the range onto the strike; the series
	// pauses rather than quoting zero-width options.
	state := e.issuer.State()
	require.True(t, state.Paused)
	require.False(t, state.Halted)
	require.Equal(t, state.Strike.String(), state.KA.String())
	require.Equal(t, state.Strike.String(), state.KB.String())

	_, err := e.issuer.Mint("user", "user", state.Strike, sdkmath.LegacyOneDec(), sdkmath.LegacyOneDec(), openSpend)
	require.ErrorIs(t, err, ErrTradingPaused)

	// The pause is not terminal: a recovered volatility surface reopens
	// trading at the next roll.
	e.feed.SetImpliedVolatility("ETH", "USDC", dec(t, "0.5"))
	e.now = e.epochs.Current().Add(time.Minute)
	_, err = e.issuer.RollEpoch(rollerID)
	require.NoError(t, err)
	require.False(t, e.issuer.State().Paused)
}

// captureRecorder collects what the issuer hands to persistence.
type captureRecorder struct {
	receipts  int
	snapshots int
	params    []finance.Parameters
}

func (r *captureRecorder) SaveTradeReceipt(types.TradeReceipt) error {
	r.receipts++
	return nil
}

func (r *captureRecorder) SaveRollSnapshot(types.RollSnapshot) error {
	r.snapshots++
	return nil
}

func (r *captureRecorder) SaveFinanceParameters(_ string, p finance.Parameters) error {
	r.params = append(r.params, p)
	return nil
}

func TestRollPersistsSnapshotAndParameters(t *testing.T) {
	rec := &captureRecorder{}
	e := newTunedEnv(t, finance.DefaultTunables(), rec)
	e.bootstrap(t)

	require.Equal(t, 1, rec.snapshots)
	require.Len(t, rec.params, 1)
	require.Equal(t, e.issuer.State().Strike.String(), rec.params[0].CurrentStrike.String())
}

// flakyVault is a scriptable HedgeVault that records the payoff reserved
// against it and can be told to reject its next roll.
type flakyVault struct {
	locked   sdkmath.LegacyDec
	side     sdkmath.LegacyDec
	reserved sdkmath.LegacyDec
	failRoll bool
}

func newFlakyVault(locked sdkmath.LegacyDec) *flakyVault {
	return &flakyVault{
		locked:   locked,
		side:     sdkmath.LegacyNewDec(100),
		reserved: sdkmath.LegacyZeroDec(),
	}
}

func (v *flakyVault) DeltaHedge(_ string, sideAmount sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	v.side = v.side.Add(sideAmount)
	return sdkmath.LegacyZeroDec(), nil
}

func (v *flakyVault) ReservePayoff(_ string, amount sdkmath.LegacyDec) error {
	v.reserved = v.reserved.Add(amount)
	return nil
}

func (v *flakyVault) TransferPayoff(_, _ string, _, _ sdkmath.LegacyDec, _ bool) error {
	return nil
}

func (v *flakyVault) CollectPremium(_ string, _, _ sdkmath.LegacyDec) error {
	return nil
}

func (v *flakyVault) RollEpoch(_ string, _ int64, _ sdkmath.LegacyDec) (vault.RollResult, error) {
	if v.failRoll {
		return vault.RollResult{Paused: true}, vault.ErrLiquidityShortfall
	}
	return vault.RollResult{
		PricePerShare:    sdkmath.LegacyOneDec(),
		SharesMinted:     v.locked,
		LockedInitially:  v.locked,
		PortfolioValue:   v.locked,
		ReservedPayoff:   v.reserved,
		PendingWithdrawn: sdkmath.LegacyZeroDec(),
	}, nil
}

func (v *flakyVault) SideTokenBalance() sdkmath.LegacyDec { return v.side }
func (v *flakyVault) LockedInitially() sdkmath.LegacyDec  { return v.locked }
func (v *flakyVault) IsDead() bool                        { return false }

func TestRetriedRollSettlesPayoffOnce(t *testing.T) {
	e := &testEnv{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	e.feed = oracle.NewStaticOracle()
	e.feed.SetPrice("ETH", "USDC", sdkmath.LegacyNewDec(2000))
	venue := exchange.NewSimAdapter(e.feed, sdkmath.LegacyZeroDec())

	epochs, err := epoch.New(24*time.Hour, 24*time.Hour, e.now)
	require.NoError(t, err)
	e.epochs = epochs

	fv := newFlakyVault(sdkmath.LegacyNewDec(1000))
	zero := sdkmath.LegacyZeroDec()
	e.issuer, err = New(Config{
		SeriesID:      "ETH-USDC-1D",
		BaseToken:     types.Token{Symbol: "USDC", Denom: "USDC", Decimals: 6},
		SideToken:     types.Token{Symbol: "ETH", Denom: "ETH", Decimals: 18},
		Vault:         fv,
		Oracle:        e.feed,
		Exchange:      venue,
		Epochs:        epochs,
		Fees:          fees.NewSchedule(zero, zero, zero, zero, time.Hour),
		Policy:        auth.Policy{Roller: rollerID, PositionManager: managerID, IssuerID: testIssuer},
		BaselineSigma: dec(t, "0.5"),
		Tunables:      finance.DefaultTunables(),
		Clock:         func() time.Time { return e.now },
	})
	require.NoError(t, err)

	e.now = epochs.Current().Add(time.Minute)
	_, err = e.issuer.RollEpoch(rollerID)
	require.NoError(t, err)

	strike := e.issuer.State().Strike
	epochKey := e.issuer.State().CurrentEpoch
	_, err = e.issuer.Mint("user", "user", strike, sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(10), openSpend)
	require.NoError(t, err)

	// The bull flavor settles in the money, then the vault rejects the roll
	// after the settlement phase has already run.
	e.feed.SetPrice("ETH", "USDC", sdkmath.LegacyNewDec(2400))
	e.now = epochs.Current().Add(time.Minute)
	fv.failRoll = true
	_, err = e.issuer.RollEpoch(rollerID)
	require.ErrorIs(t, err, vault.ErrLiquidityShortfall)

	accounted := e.issuer.NotionalInfo(epochKey, strike).Payoff
	require.True(t, accounted.Total().IsPositive())
	reserved := fv.reserved

	// Retrying must neither account nor reserve the payoff a second time.
	_, err = e.issuer.RollEpoch(rollerID)
	require.ErrorIs(t, err, ErrRollHalted)
	require.Equal(t, accounted.Total().String(), e.issuer.NotionalInfo(epochKey, strike).Payoff.Total().String())
	require.Equal(t, reserved.String(), fv.reserved.String())

	state := e.issuer.State()
	require.True(t, state.Paused)
	require.True(t, state.Halted)
	_, err = e.issuer.Mint("user", "user", strike, sdkmath.LegacyOneDec(), sdkmath.LegacyOneDec(), openSpend)
	require.ErrorIs(t, err, ErrTradingPaused)
}
