/*
This file contains the option issuer: the single writer that mints and burns
impermanent-gain positions against the vault's liquidity and drives the epoch
roll. Minting reserves notional, collects a premium, records the position and
delta-hedges the vault in one serialized step; burning reverses it at the
current fair value or, after maturity, at the position's pro-rata share of
the settled payoff. The roll settles the ending epoch's residual payoff,
rolls the vault, and rotates the finance parameters for the new epoch.
*/

package issuer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/odyn-fi/odyn/internal/auth"
	"github.com/odyn-fi/odyn/internal/epoch"
	"github.com/odyn-fi/odyn/internal/exchange"
	"github.com/odyn-fi/odyn/internal/fees"
	"github.com/odyn-fi/odyn/internal/finance"
	"github.com/odyn-fi/odyn/internal/logger"
	"github.com/odyn-fi/odyn/internal/notional"
	"github.com/odyn-fi/odyn/internal/oracle"
	"github.com/odyn-fi/odyn/internal/positions"
	"github.com/odyn-fi/odyn/internal/types"
	"github.com/odyn-fi/odyn/internal/vault"
)

// Error definitions for trade and roll gating
var (
	ErrTradingPaused       = errors.New("trading is paused on this series")
	ErrSeriesDead          = errors.New("series vault is dead")
	ErrRollHalted          = errors.New("epoch roll halted pending manual remediation")
	ErrInvalidStrike       = errors.New("strike does not match the active epoch")
	ErrZeroNotional        = errors.New("trade notional is zero")
	ErrNegativeNotional    = errors.New("trade notional is negative")
	ErrUnbalancedAmount    = errors.New("unbalanced amounts require the position manager")
	ErrInvalidSpendBound   = errors.New("maximum spend bound must be positive")
	ErrPremiumExceedsMax   = errors.New("premium exceeds the maximum spend")
	ErrPayoutBelowMin      = errors.New("payout below the minimum accepted")
	ErrPayoffTooLow        = errors.New("payoff too low to cover the vault fee")
	ErrEpochMismatch       = errors.New("position epoch does not match the burn path")
	ErrMissingCollaborator = errors.New("issuer collaborator is nil")
)

var issuerLogger = logger.GetForComponent("issuer")

// Recorder persists trade receipts and roll snapshots. The in-memory ledgers
// stay authoritative; persistence failures are logged and do not fail trades.
type Recorder interface {
	SaveTradeReceipt(receipt types.TradeReceipt) error
	SaveRollSnapshot(snapshot types.RollSnapshot) error
	SaveFinanceParameters(seriesID string, params finance.Parameters) error
}

// Config assembles an issuer's collaborators.
type Config struct {
	SeriesID  string
	BaseToken types.Token
	SideToken types.Token

	Vault    vault.HedgeVault
	Oracle   oracle.PriceOracle
	Exchange exchange.SwapAdapter
	Epochs   *epoch.Controller
	Fees     *fees.Schedule
	Policy   auth.Policy
	Recorder Recorder // optional

	BaselineSigma sdkmath.LegacyDec
	Tunables      finance.Tunables

	// Clock defaults to time.Now; tests substitute a fixed one.
	Clock func() time.Time
}

// Issuer owns the option-side ledgers of one series. Every mutation runs
// under the issuer's lock, giving the whole trade path single-writer
// semantics across the notional ledger, the position ledger and the vault.
type Issuer struct {
	mu sync.Mutex

	seriesID  string
	baseToken types.Token
	sideToken types.Token

	vault    vault.HedgeVault
	oracle   oracle.PriceOracle
	exchange exchange.SwapAdapter
	epochs   *epoch.Controller
	fees     *fees.Schedule
	policy   auth.Policy
	recorder Recorder

	notionals *notional.Ledger
	positions *positions.Ledger

	params        finance.Parameters
	baselineSigma sdkmath.LegacyDec
	paused        bool

	// halted stops further rolls after a fatal roll failure; settledEpoch
	// makes the settlement phase idempotent so a retried roll can never
	// account the same residual payoff twice.
	halted       bool
	settledEpoch int64

	clock func() time.Time
}

// New builds an issuer and rotates the first epoch's parameters. The first
// strike is the oracle spot at construction time.
func New(cfg Config) (*Issuer, error) {
	if cfg.Vault == nil || cfg.Oracle == nil || cfg.Exchange == nil || cfg.Epochs == nil || cfg.Fees == nil {
		return nil, ErrMissingCollaborator
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	now := clock()

	spot, err := cfg.Oracle.GetPrice(cfg.SideToken.Symbol, cfg.BaseToken.Symbol)
	if err != nil {
		return nil, fmt.Errorf("initial strike: %w", err)
	}
	params, err := finance.NewParameters(cfg.Epochs.Current(), spot, cfg.BaselineSigma, cfg.Tunables, now)
	if err != nil {
		return nil, fmt.Errorf("initial parameters: %w", err)
	}

	i := &Issuer{
		seriesID:      cfg.SeriesID,
		baseToken:     cfg.BaseToken,
		sideToken:     cfg.SideToken,
		vault:         cfg.Vault,
		oracle:        cfg.Oracle,
		exchange:      cfg.Exchange,
		epochs:        cfg.Epochs,
		fees:          cfg.Fees,
		policy:        cfg.Policy,
		recorder:      cfg.Recorder,
		notionals:     notional.NewLedger(),
		positions:     positions.NewLedger(),
		params:        params,
		baselineSigma: cfg.BaselineSigma,
		clock:         clock,
	}
	return i, nil
}

// spotPrice returns the oracle price of the side token in base terms.
func (i *Issuer) spotPrice() (sdkmath.LegacyDec, error) {
	return i.oracle.GetPrice(i.sideToken.Symbol, i.baseToken.Symbol)
}

// swapSpotPrice returns the venue-implied price of the side token: what one
// side token actually fetches on the exchange right now.
func (i *Issuer) swapSpotPrice() (sdkmath.LegacyDec, error) {
	return i.exchange.GetOutputAmount(i.sideToken.Symbol, i.baseToken.Symbol, sdkmath.LegacyOneDec())
}

// premiumAt prices the trade notional at one spot reference.
func (i *Issuer) premiumAt(spot, riskFree sdkmath.LegacyDec, now time.Time, amount types.Amount) (sdkmath.LegacyDec, error) {
	up, down, err := finance.Prices(i.params.PriceInputAt(spot, riskFree, now))
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	return up.MulTruncate(amount.Up).Add(down.MulTruncate(amount.Down)), nil
}

// fairValues prices the notional at both the oracle and the venue spot.
// Mints charge the higher of the two, burns pay the lower, so a stale oracle
// or a skewed pool can never be arbitraged against the vault.
func (i *Issuer) fairValues(now time.Time, amount types.Amount) (atOracle, atVenue sdkmath.LegacyDec, err error) {
	zero := sdkmath.LegacyZeroDec()
	oracleSpot, err := i.spotPrice()
	if err != nil {
		return zero, zero, err
	}
	venueSpot, err := i.swapSpotPrice()
	if err != nil {
		return zero, zero, err
	}
	riskFree, err := i.oracle.GetRiskFreeRate(i.baseToken.Symbol)
	if err != nil {
		riskFree = zero
	}
	if atOracle, err = i.premiumAt(oracleSpot, riskFree, now, amount); err != nil {
		return zero, zero, err
	}
	if atVenue, err = i.premiumAt(venueSpot, riskFree, now, amount); err != nil {
		return zero, zero, err
	}
	return atOracle, atVenue, nil
}

// Mint issues amountUp/amountDown notional to owner at the active epoch's
// strike. maxSpend bounds premium plus fee and must be positive. Unbalanced
// amounts are restricted to the position manager. Returns the premium paid
// (fee excluded).
func (i *Issuer) Mint(caller, owner string, strike, amountUp, amountDown, maxSpend sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	zero := sdkmath.LegacyZeroDec()
	now := i.clock()

	if err := i.tradeGate(now); err != nil {
		return zero, err
	}
	if amountUp.IsNegative() || amountDown.IsNegative() {
		return zero, ErrNegativeNotional
	}
	amount := types.NewAmount(amountUp, amountDown)
	if amount.IsZero() {
		return zero, ErrZeroNotional
	}
	if !strike.Equal(i.params.CurrentStrike) {
		return zero, ErrInvalidStrike
	}
	if !amountUp.Equal(amountDown) {
		if err := i.policy.CheckPositionManager(caller); err != nil {
			return zero, ErrUnbalancedAmount
		}
	}
	// The bound is mandatory: a zero maxSpend is a caller bug, not consent to
	// pay anything.
	if !maxSpend.IsPositive() {
		return zero, ErrInvalidSpendBound
	}

	epochKey := i.params.Maturity
	atOracle, atVenue, err := i.fairValues(now, amount)
	if err != nil {
		return zero, err
	}
	premium := sdkmath.LegacyMaxDec(atOracle, atVenue)
	fee, _ := i.fees.TradeBuyFee(now, premium)
	if premium.Add(fee).GT(maxSpend) {
		return zero, ErrPremiumExceedsMax
	}

	// Project the post-trade utilization before reserving, then reserve.
	postUr := i.notionals.PostTradeUtilizationRate(epochKey, strike, amount.Total(), true)
	if err := i.notionals.IncreaseUsage(epochKey, strike, amount); err != nil {
		return zero, err
	}

	if err := i.hedge(now, amount, true); err != nil {
		// Unwind the reservation so a failed hedge leaves no phantom usage.
		_ = i.notionals.DecreaseUsage(epochKey, strike, amount)
		return zero, err
	}

	if err := i.vault.CollectPremium(i.policy.IssuerID, premium, fee); err != nil {
		return zero, err
	}
	i.positions.Record(epochKey, owner, strike, amount, premium)
	i.params.Volatility.Update(now, postUr)

	i.record(types.TradeReceipt{
		TradeID:    uuid.NewString(),
		Kind:       types.TradeMint,
		Epoch:      epochKey,
		Owner:      owner,
		Strike:     strike,
		AmountUp:   amountUp,
		AmountDown: amountDown,
		Premium:    premium,
		Fee:        fee,
		Timestamp:  now,
	})

	issuerLogger.Info().
		Str("owner", owner).
		Str("premium", premium.String()).
		Str("fee", fee.String()).
		Int64("epoch", epochKey).
		Msg("Position minted")
	return premium, nil
}

// Burn closes amountUp/amountDown of owner's position at positionEpoch.
// For the active epoch it pays the current fair value less the configured
// discount; for a matured epoch it pays the pro-rata share of the settled
// payoff. minPayout bounds the net proceeds; zero disables the bound.
// Returns the net amount paid to the owner.
func (i *Issuer) Burn(owner string, positionEpoch int64, strike, amountUp, amountDown, minPayout sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	zero := sdkmath.LegacyZeroDec()
	now := i.clock()

	if amountUp.IsNegative() || amountDown.IsNegative() {
		return zero, ErrNegativeNotional
	}
	amount := types.NewAmount(amountUp, amountDown)
	if amount.IsZero() {
		return zero, ErrZeroNotional
	}
	pos := i.positions.Get(positionEpoch, owner, strike)
	if !pos.Exists() {
		return zero, positions.ErrPositionNotFound
	}
	if !pos.Amount().Covers(amount) {
		return zero, positions.ErrAmountExceedsPosition
	}

	var net sdkmath.LegacyDec
	var err error
	if positionEpoch == i.params.Maturity {
		net, err = i.burnActive(now, owner, strike, amount)
	} else {
		net, err = i.burnMatured(now, owner, positionEpoch, strike, amount)
	}
	if err != nil {
		return zero, err
	}
	if minPayout.IsPositive() && net.LT(minPayout) {
		return zero, ErrPayoutBelowMin
	}
	return net, nil
}

// burnActive closes position notional against the live epoch at fair value.
func (i *Issuer) burnActive(now time.Time, owner string, strike sdkmath.LegacyDec, amount types.Amount) (sdkmath.LegacyDec, error) {
	zero := sdkmath.LegacyZeroDec()
	if err := i.epochs.RequireActive(now); err != nil {
		return zero, err
	}
	if i.paused {
		return zero, ErrTradingPaused
	}
	epochKey := i.params.Maturity

	atOracle, atVenue, err := i.fairValues(now, amount)
	if err != nil {
		return zero, err
	}
	paid := sdkmath.LegacyMinDec(atOracle, atVenue)
	discount := i.params.Tunables.PriceDiscountFactor.Get(now)
	if discount.IsPositive() {
		paid = paid.MulTruncate(sdkmath.LegacyOneDec().Sub(discount))
	}
	maturity := time.Unix(epochKey, 0).UTC()
	fee, vaultFee := i.fees.TradeSellFee(now, maturity, paid)
	if paid.LT(vaultFee) {
		return zero, ErrPayoffTooLow
	}
	if fee.GT(paid) {
		fee = paid
	}

	postUr := i.notionals.PostTradeUtilizationRate(epochKey, strike, amount.Total(), false)
	if err := i.notionals.DecreaseUsage(epochKey, strike, amount); err != nil {
		return zero, err
	}
	if err := i.hedge(now, amount, false); err != nil {
		_ = i.notionals.IncreaseUsage(epochKey, strike, amount)
		return zero, err
	}
	if err := i.positions.Reduce(epochKey, owner, strike, amount); err != nil {
		return zero, err
	}
	if err := i.vault.TransferPayoff(i.policy.IssuerID, owner, paid, fee, false); err != nil {
		return zero, err
	}
	i.params.Volatility.Update(now, postUr)

	net := paid.Sub(fee)
	i.record(types.TradeReceipt{
		TradeID:    uuid.NewString(),
		Kind:       types.TradeBurn,
		Epoch:      epochKey,
		Owner:      owner,
		Strike:     strike,
		AmountUp:   amount.Up,
		AmountDown: amount.Down,
		Premium:    net,
		Fee:        fee,
		Timestamp:  now,
	})
	issuerLogger.Info().
		Str("owner", owner).
		Str("paid", net.String()).
		Int64("epoch", epochKey).
		Msg("Position burned before maturity")
	return net, nil
}

// burnMatured claims a settled position's share of the accounted payoff.
// Usage and payoff deplete together so later claimants keep the same
// pro-rata rate.
func (i *Issuer) burnMatured(now time.Time, owner string, positionEpoch int64, strike sdkmath.LegacyDec, amount types.Amount) (sdkmath.LegacyDec, error) {
	zero := sdkmath.LegacyZeroDec()
	if positionEpoch > i.params.Maturity {
		return zero, ErrEpochMismatch
	}

	share := i.notionals.ShareOfPayoff(positionEpoch, strike, amount)
	paid := share.Total()
	maturity := time.Unix(positionEpoch, 0).UTC()
	fee, vaultFee := i.fees.TradeSellFee(now, maturity, paid)
	if paid.LT(vaultFee) {
		// The claim cannot cover the mandatory vault portion.
		return zero, ErrPayoffTooLow
	}
	if fee.GT(paid) {
		// The proportional portion is trimmed to the claim; the vault portion
		// above was verified covered.
		fee = paid
	}

	if err := i.notionals.DecreasePayoff(positionEpoch, strike, share); err != nil {
		return zero, err
	}
	if err := i.notionals.DecreaseUsage(positionEpoch, strike, amount); err != nil {
		return zero, err
	}
	if err := i.positions.Reduce(positionEpoch, owner, strike, amount); err != nil {
		return zero, err
	}
	if err := i.vault.TransferPayoff(i.policy.IssuerID, owner, paid, fee, true); err != nil {
		return zero, err
	}

	net := paid.Sub(fee)
	i.record(types.TradeReceipt{
		TradeID:    uuid.NewString(),
		Kind:       types.TradeBurn,
		Epoch:      positionEpoch,
		Owner:      owner,
		Strike:     strike,
		AmountUp:   amount.Up,
		AmountDown: amount.Down,
		Premium:    net,
		Fee:        fee,
		Timestamp:  now,
	})
	issuerLogger.Info().
		Str("owner", owner).
		Str("paid", net.String()).
		Int64("epoch", positionEpoch).
		Msg("Matured position claimed")
	return net, nil
}

// hedge recomputes the per-unit deltas at the oracle spot and trades the
// vault's side-token holdings to stay delta-neutral for the trade.
func (i *Issuer) hedge(now time.Time, amount types.Amount, isMint bool) error {
	spot, err := i.spotPrice()
	if err != nil {
		return err
	}
	riskFree, err := i.oracle.GetRiskFreeRate(i.baseToken.Symbol)
	if err != nil {
		riskFree = sdkmath.LegacyZeroDec()
	}
	upDelta, downDelta, err := finance.Deltas(i.params.PriceInputAt(spot, riskFree, now))
	if err != nil {
		return err
	}
	trade, err := finance.HedgeAmount(upDelta, downDelta, amount.Up, amount.Down, i.vault.SideTokenBalance(), isMint)
	if err != nil {
		return err
	}
	if trade.IsZero() {
		return nil
	}
	_, err = i.vault.DeltaHedge(i.policy.IssuerID, trade)
	return err
}

// tradeGate rejects trades outside a live epoch or on a paused or dead series.
func (i *Issuer) tradeGate(now time.Time) error {
	if i.vault.IsDead() {
		return ErrSeriesDead
	}
	if i.paused {
		return ErrTradingPaused
	}
	return i.epochs.RequireActive(now)
}

// RollEpoch settles the ending epoch and opens the next one: residual payoff
// is computed at the final spot and reserved in the vault, the vault finalizes
// its share price and rebalances, and fresh parameters rotate in with the new
// strike set to the roll spot. Only the configured roller may call it.
func (i *Issuer) RollEpoch(caller string) (types.RollSnapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.clock()

	if err := i.policy.CheckRoller(caller); err != nil {
		return types.RollSnapshot{}, err
	}
	if i.halted {
		return types.RollSnapshot{}, ErrRollHalted
	}
	if err := i.epochs.RequireFinished(now); err != nil {
		return types.RollSnapshot{}, err
	}

	spot, err := i.spotPrice()
	if err != nil {
		return types.RollSnapshot{}, fmt.Errorf("roll spot: %w", err)
	}
	riskFree, err := i.oracle.GetRiskFreeRate(i.baseToken.Symbol)
	if err != nil {
		riskFree = sdkmath.LegacyZeroDec()
	}

	endingEpoch := i.params.Maturity
	maturity := time.Unix(endingEpoch, 0).UTC()

	// Settle: residual payoff for the used notional at the final spot.
	// Settlement runs at most once per ending epoch, so a roll that fails in a
	// later step and is retried can never account the same payoff twice.
	if i.settledEpoch != endingEpoch {
		totalReserve := sdkmath.LegacyZeroDec()
		for _, strike := range i.notionals.Strikes(endingEpoch) {
			info := i.notionals.Get(endingEpoch, strike)
			if info.Used.IsZero() {
				continue
			}
			upPerc, downPerc, err := finance.PayoffPercentages(i.params.PriceInputAt(spot, riskFree, maturity))
			if err != nil {
				return types.RollSnapshot{}, fmt.Errorf("settle payoff: %w", err)
			}
			payUp := upPerc.MulTruncate(info.Used.Up)
			payDown := downPerc.MulTruncate(info.Used.Down)
			i.notionals.AccountPayoffs(endingEpoch, strike, payUp, payDown)
			totalReserve = totalReserve.Add(payUp).Add(payDown)
		}
		if totalReserve.IsPositive() {
			if err := i.vault.ReservePayoff(i.policy.IssuerID, totalReserve); err != nil {
				return types.RollSnapshot{}, err
			}
		}
		i.settledEpoch = endingEpoch
	}

	// Next baseline volatility: either the oracle's implied surface or the
	// utilization-driven fold toward the reference.
	tunables := i.params.Tunables
	var sigmaNext sdkmath.LegacyDec
	if tunables.UseOracleVolatility.Get(now) {
		sigmaNext, err = i.oracle.GetImpliedVolatility(i.sideToken.Symbol, i.baseToken.Symbol, spot, i.epochs.Frequency())
		if err != nil {
			return types.RollSnapshot{}, fmt.Errorf("oracle volatility: %w", err)
		}
	} else {
		tvwUr := i.params.Volatility.TimeWeightedUr(maturity)
		sigmaNext = finance.SigmaZeroNext(
			i.params.SigmaZero,
			i.baselineSigma,
			tvwUr,
			tunables.UtilizationRateFactor.Get(now),
			tunables.TimeDecay.Get(now),
		)
	}

	if err := i.epochs.Roll(now); err != nil {
		return types.RollSnapshot{}, err
	}
	newEpoch := i.epochs.Current().Unix()

	result, err := i.vault.RollEpoch(i.policy.IssuerID, newEpoch, spot)
	if err != nil {
		i.paused = true
		i.halted = true
		issuerLogger.Error().Err(err).Msg("Vault roll failed; series halted for remediation")
		return types.RollSnapshot{}, err
	}

	params, err := finance.NewParameters(i.epochs.Current(), spot, sigmaNext, tunables, now)
	if err != nil {
		i.paused = true
		i.halted = true
		return types.RollSnapshot{}, fmt.Errorf("rotate parameters: %w", err)
	}

	if !result.Dead {
		// Split the locked capital evenly across the two flavors.
		half := result.LockedInitially.QuoTruncate(sdkmath.LegacyNewDec(2))
		initial := types.NewAmount(half, half)
		i.notionals.SetInitial(newEpoch, params.CurrentStrike, initial)
		params.InitialLiquidity = initial
	}

	i.params = params
	i.paused = result.Dead || result.Paused || params.Degenerate()
	if i.paused {
		issuerLogger.Warn().
			Bool("dead", result.Dead).
			Bool("degenerate", params.Degenerate()).
			Msg("Trading paused after roll")
	}

	snapshot := types.RollSnapshot{
		RollNumber:         i.epochs.RollCount(),
		Timestamp:          now,
		PreviousEpoch:      endingEpoch,
		CurrentEpoch:       newEpoch,
		PricePerShare:      result.PricePerShare,
		OutstandingShares:  result.SharesMinted,
		PortfolioValue:     result.PortfolioValue,
		LockedInitially:    result.LockedInitially,
		ReservedPayoff:     result.ReservedPayoff,
		PendingWithdrawals: result.PendingWithdrawn,
		Strike:             params.CurrentStrike,
		KA:                 params.KA,
		KB:                 params.KB,
		SigmaZero:          params.SigmaZero,
		VaultDead:          result.Dead,
		VaultPaused:        result.Paused,
	}
	if i.recorder != nil {
		if err := i.recorder.SaveRollSnapshot(snapshot); err != nil {
			issuerLogger.Error().Err(err).Msg("Failed to persist roll snapshot")
		}
		if err := i.recorder.SaveFinanceParameters(i.seriesID, params); err != nil {
			issuerLogger.Error().Err(err).Msg("Failed to persist finance parameters")
		}
	}

	issuerLogger.Info().
		Int64("previousEpoch", endingEpoch).
		Int64("currentEpoch", newEpoch).
		Str("strike", params.CurrentStrike.String()).
		Str("sigmaZero", params.SigmaZero.String()).
		Msg("Epoch rolled")
	return snapshot, nil
}

// record persists a trade receipt when a recorder is configured.
func (i *Issuer) record(receipt types.TradeReceipt) {
	if i.recorder == nil {
		return
	}
	if err := i.recorder.SaveTradeReceipt(receipt); err != nil {
		issuerLogger.Error().Err(err).Str("tradeID", receipt.TradeID).Msg("Failed to persist trade receipt")
	}
}

// PremiumQuote previews the premium and fee a mint would pay right now.
func (i *Issuer) PremiumQuote(amountUp, amountDown sdkmath.LegacyDec) (premium, fee sdkmath.LegacyDec, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	zero := sdkmath.LegacyZeroDec()
	now := i.clock()
	amount := types.NewAmount(amountUp, amountDown)
	if amount.IsZero() {
		return zero, zero, ErrZeroNotional
	}
	atOracle, atVenue, err := i.fairValues(now, amount)
	if err != nil {
		return zero, zero, err
	}
	premium = sdkmath.LegacyMaxDec(atOracle, atVenue)
	fee, _ = i.fees.TradeBuyFee(now, premium)
	return premium, fee, nil
}

// PayoffQuote previews the net proceeds of burning a matured position.
func (i *Issuer) PayoffQuote(positionEpoch int64, strike, amountUp, amountDown sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	share := i.notionals.ShareOfPayoff(positionEpoch, strike, types.NewAmount(amountUp, amountDown))
	return share.Total(), nil
}

// PositionOf returns a copy of an owner's position.
func (i *Issuer) PositionOf(positionEpoch int64, owner string, strike sdkmath.LegacyDec) types.Position {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.positions.Get(positionEpoch, owner, strike)
}

// NotionalInfo returns a copy of the ledger entry for (epoch, strike).
func (i *Issuer) NotionalInfo(positionEpoch int64, strike sdkmath.LegacyDec) notional.Info {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.notionals.Get(positionEpoch, strike)
}

// SeriesState is the read-only view served by the web layer.
type SeriesState struct {
	SeriesID      string            `json:"series_id"`
	CurrentEpoch  int64             `json:"current_epoch"`
	PreviousEpoch int64             `json:"previous_epoch"`
	RollCount     int               `json:"roll_count"`
	Strike        sdkmath.LegacyDec `json:"strike"`
	KA            sdkmath.LegacyDec `json:"k_a"`
	KB            sdkmath.LegacyDec `json:"k_b"`
	SigmaZero     sdkmath.LegacyDec `json:"sigma_zero"`
	Paused        bool              `json:"paused"`
	Halted        bool              `json:"halted"`
	Available     types.Amount      `json:"available"`
}

// State returns a consistent snapshot of the series.
func (i *Issuer) State() SeriesState {
	i.mu.Lock()
	defer i.mu.Unlock()
	previousEpoch := int64(0)
	if !i.epochs.Previous().IsZero() {
		previousEpoch = i.epochs.Previous().Unix()
	}
	return SeriesState{
		SeriesID:      i.seriesID,
		CurrentEpoch:  i.params.Maturity,
		PreviousEpoch: previousEpoch,
		RollCount:     i.epochs.RollCount(),
		Strike:        i.params.CurrentStrike,
		KA:            i.params.KA,
		KB:            i.params.KB,
		SigmaZero:     i.params.SigmaZero,
		Paused:        i.paused,
		Halted:        i.halted,
		Available:     i.notionals.Available(i.params.Maturity, i.params.CurrentStrike),
	}
}
