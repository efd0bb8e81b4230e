/*
This file contains the share-based liquidity vault. Deposits are two-phase:
tokens enter pendingDeposits immediately, shares mint at the next roll once
the epoch's true portfolio value is known. Withdrawals settle with a
one-epoch lag at the share price finalized for the epoch the claim was made
in. The roll-time algorithm finalizes the share price, moves the liability
buckets, and rebalances the two holdings to an equal-value split.
*/

package vault

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/auth"
	"github.com/odyn-fi/odyn/internal/exchange"
	"github.com/odyn-fi/odyn/internal/logger"
	"github.com/odyn-fi/odyn/internal/types"
)

// Error definitions. The first group are precondition and economic guards;
// the fatal group aborts an entire roll and pauses the vault for manual
// remediation, since retrying without a correction would fail identically.
var (
	ErrVaultDead                  = errors.New("vault is dead")
	ErrVaultNotDead               = errors.New("vault is not dead")
	ErrVaultPaused                = errors.New("vault is paused")
	ErrZeroAmount                 = errors.New("amount is zero")
	ErrDepositCapExceeded         = errors.New("deposit cap exceeded")
	ErrInsufficientShares         = errors.New("insufficient shares")
	ErrExistingIncompleteWithdraw = errors.New("existing incomplete withdrawal")
	ErrWithdrawNotReady           = errors.New("withdrawal epoch has not completed")
	ErrNothingToWithdraw          = errors.New("nothing to withdraw")
	ErrPayoffExceedsReserve       = errors.New("payoff transfer exceeds reserved amount")
	ErrInsufficientSideBalance    = errors.New("insufficient side token balance")

	// Fatal invariant breaches
	ErrZeroSharePrice     = errors.New("share price computed as zero with outstanding shares")
	ErrLiquidityShortfall = errors.New("insufficient liquidity to cover pending liabilities")
)

var vaultLogger = logger.GetForComponent("vault")

// Config assembles a vault's collaborators and limits.
type Config struct {
	BaseToken    types.Token
	SideToken    types.Token
	Exchange     exchange.SwapAdapter
	Policy       auth.Policy
	Entitlements auth.EntitlementChecker // nil unless priority access is on
	MaxDeposit   sdkmath.LegacyDec       // zero disables the cap
	HedgeMargin  sdkmath.LegacyDec       // buy-side slippage margin
	InitialEpoch int64
}

// Vault owns the underlying assets of one series. All mutators run under one
// lock: the execution model is strictly serialized single-writer, and the
// lock enforces that read-only queries never observe a partial mutation.
type Vault struct {
	mu sync.Mutex

	baseToken    types.Token
	sideToken    types.Token
	exchange     exchange.SwapAdapter
	policy       auth.Policy
	entitlements auth.EntitlementChecker
	maxDeposit   sdkmath.LegacyDec
	hedgeMargin  sdkmath.LegacyDec

	currentEpoch int64

	// Holdings, all 18-decimal. Fees sit outside the portfolio so they never
	// inflate the share price.
	baseBalance sdkmath.LegacyDec
	sideBalance sdkmath.LegacyDec
	feeBalance  sdkmath.LegacyDec

	// Share accounting
	totalShares        sdkmath.LegacyDec
	shareBalances      map[string]sdkmath.LegacyDec
	epochPricePerShare map[int64]sdkmath.LegacyDec

	// Liquidity state
	lockedInitially    sdkmath.LegacyDec
	pendingDeposits    sdkmath.LegacyDec
	pendingWithdrawals sdkmath.LegacyDec
	pendingPayoffs     sdkmath.LegacyDec
	newPendingPayoffs  sdkmath.LegacyDec
	totalDeposit       sdkmath.LegacyDec
	heldShares         sdkmath.LegacyDec
	newHeldShares      sdkmath.LegacyDec

	dead   bool
	killed bool
	paused bool

	deadPricePerShare sdkmath.LegacyDec

	depositReceipts map[string]*types.DepositReceipt
	withdrawals     map[string]*types.Withdrawal
}

// New builds an empty vault for the configured pair.
func New(cfg Config) (*Vault, error) {
	if cfg.Exchange == nil {
		return nil, errors.New("exchange adapter cannot be nil")
	}
	zero := sdkmath.LegacyZeroDec()
	v := &Vault{
		baseToken:          cfg.BaseToken,
		sideToken:          cfg.SideToken,
		exchange:           cfg.Exchange,
		policy:             cfg.Policy,
		entitlements:       cfg.Entitlements,
		maxDeposit:         cfg.MaxDeposit,
		hedgeMargin:        cfg.HedgeMargin,
		currentEpoch:       cfg.InitialEpoch,
		baseBalance:        zero,
		sideBalance:        zero,
		feeBalance:         zero,
		totalShares:        zero,
		shareBalances:      make(map[string]sdkmath.LegacyDec),
		epochPricePerShare: make(map[int64]sdkmath.LegacyDec),
		lockedInitially:    zero,
		pendingDeposits:    zero,
		pendingWithdrawals: zero,
		pendingPayoffs:     zero,
		newPendingPayoffs:  zero,
		totalDeposit:       zero,
		heldShares:         zero,
		newHeldShares:      zero,
		deadPricePerShare:  zero,
		depositReceipts:    make(map[string]*types.DepositReceipt),
		withdrawals:        make(map[string]*types.Withdrawal),
	}
	return v, nil
}

// Deposit pulls amount into the pending bucket for the receiver. Shares mint
// at the next roll at that roll's finalized price. accessToken is consulted
// only when the priority-access gate is configured.
func (v *Vault) Deposit(amount sdkmath.LegacyDec, receiver, accessToken string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dead {
		return ErrVaultDead
	}
	if v.paused {
		return ErrVaultPaused
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	if v.entitlements != nil {
		if err := v.entitlements.CheckCap(accessToken, amount.String()); err != nil {
			return err
		}
	}

	receipt := v.receipt(receiver)
	if v.maxDeposit.IsPositive() && receipt.CumulativeAmount.Add(amount).GT(v.maxDeposit) {
		return ErrDepositCapExceeded
	}

	v.accrueShares(receipt)
	if receipt.Epoch != v.currentEpoch {
		receipt.Epoch = v.currentEpoch
		receipt.Amount = amount
	} else {
		receipt.Amount = receipt.Amount.Add(amount)
	}
	receipt.CumulativeAmount = receipt.CumulativeAmount.Add(amount)

	v.pendingDeposits = v.pendingDeposits.Add(amount)
	v.totalDeposit = v.totalDeposit.Add(amount)
	v.baseBalance = v.baseBalance.Add(amount)

	vaultLogger.Debug().
		Str("receiver", receiver).
		Str("amount", amount.String()).
		Int64("epoch", v.currentEpoch).
		Msg("Deposit queued for next roll")
	return nil
}

// receipt returns the receiver's deposit receipt, creating it on first use.
func (v *Vault) receipt(receiver string) *types.DepositReceipt {
	r, ok := v.depositReceipts[receiver]
	if !ok {
		zero := sdkmath.LegacyZeroDec()
		r = &types.DepositReceipt{
			Amount:           zero,
			UnredeemedShares: zero,
			CumulativeAmount: zero,
		}
		v.depositReceipts[receiver] = r
	}
	return r
}

// accrueShares converts a past epoch's deposit into its share entitlement at
// that epoch's finalized price. Lazy: runs on the next touch of the receipt.
func (v *Vault) accrueShares(r *types.DepositReceipt) {
	if r.Epoch == 0 || r.Epoch == v.currentEpoch || !r.Amount.IsPositive() {
		return
	}
	pps, ok := v.epochPricePerShare[r.Epoch]
	if !ok || !pps.IsPositive() {
		return
	}
	r.UnredeemedShares = r.UnredeemedShares.Add(r.Amount.QuoTruncate(pps))
	r.Amount = sdkmath.LegacyZeroDec()
}

// Redeem converts accrued-but-unminted share entitlement into held shares
// without moving value.
func (v *Vault) Redeem(owner string, shares sdkmath.LegacyDec) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !shares.IsPositive() {
		return ErrZeroAmount
	}
	receipt := v.receipt(owner)
	v.accrueShares(receipt)
	if receipt.UnredeemedShares.LT(shares) {
		return ErrInsufficientShares
	}
	receipt.UnredeemedShares = receipt.UnredeemedShares.Sub(shares)
	v.creditShares(owner, shares)
	return nil
}

func (v *Vault) creditShares(owner string, shares sdkmath.LegacyDec) {
	bal, ok := v.shareBalances[owner]
	if !ok {
		bal = sdkmath.LegacyZeroDec()
	}
	v.shareBalances[owner] = bal.Add(shares)
}

// redeemAll performs the implicit full redeem used by the withdrawal paths.
func (v *Vault) redeemAll(owner string) {
	receipt := v.receipt(owner)
	v.accrueShares(receipt)
	if receipt.UnredeemedShares.IsPositive() {
		v.creditShares(owner, receipt.UnredeemedShares)
		receipt.UnredeemedShares = sdkmath.LegacyZeroDec()
	}
}

// InitiateWithdraw transfers shares into vault custody and records a claim
// against the current epoch's future share price. A second request in a
// different, still-incomplete epoch is rejected; same-epoch requests
// accumulate. The depositor's counted cumulative deposit shrinks
// proportionally to keep the cap accounting correct.
func (v *Vault) InitiateWithdraw(owner string, shares sdkmath.LegacyDec) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dead {
		return ErrVaultDead
	}
	if !shares.IsPositive() {
		return ErrZeroAmount
	}
	v.redeemAll(owner)

	balance, ok := v.shareBalances[owner]
	if !ok || balance.LT(shares) {
		return ErrInsufficientShares
	}

	w, exists := v.withdrawals[owner]
	if exists && w.Epoch != v.currentEpoch && w.Shares.IsPositive() {
		return ErrExistingIncompleteWithdraw
	}
	if !exists {
		w = &types.Withdrawal{Shares: sdkmath.LegacyZeroDec()}
		v.withdrawals[owner] = w
	}
	if w.Epoch != v.currentEpoch {
		w.Epoch = v.currentEpoch
		w.Shares = sdkmath.LegacyZeroDec()
	}

	receipt := v.receipt(owner)
	if receipt.CumulativeAmount.IsPositive() && balance.IsPositive() {
		portion := receipt.CumulativeAmount.MulTruncate(shares).QuoTruncate(balance)
		receipt.CumulativeAmount = receipt.CumulativeAmount.Sub(portion)
		v.totalDeposit = v.totalDeposit.Sub(portion)
	}

	v.shareBalances[owner] = balance.Sub(shares)
	v.newHeldShares = v.newHeldShares.Add(shares)
	w.Shares = w.Shares.Add(shares)

	vaultLogger.Debug().
		Str("owner", owner).
		Str("shares", shares.String()).
		Int64("epoch", v.currentEpoch).
		Msg("Withdrawal initiated")
	return nil
}

// CompleteWithdraw burns the custodied shares and pays out at the price
// finalized for the claim's epoch. Valid only once at least one epoch has
// rolled since the claim. Returns the base amount paid.
func (v *Vault) CompleteWithdraw(owner string) (sdkmath.LegacyDec, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	zero := sdkmath.LegacyZeroDec()
	// A paused vault no longer covers its liabilities in full; outbound value
	// waits for remediation.
	if v.paused {
		return zero, ErrVaultPaused
	}
	w, ok := v.withdrawals[owner]
	if !ok || !w.Shares.IsPositive() {
		return zero, ErrNothingToWithdraw
	}
	if w.Epoch == v.currentEpoch {
		return zero, ErrWithdrawNotReady
	}
	pps := v.epochPricePerShare[w.Epoch]
	amount := w.Shares.MulTruncate(pps)

	v.heldShares = v.heldShares.Sub(w.Shares)
	v.pendingWithdrawals = v.pendingWithdrawals.Sub(amount)
	v.baseBalance = v.baseBalance.Sub(amount)
	delete(v.withdrawals, owner)

	vaultLogger.Info().
		Str("owner", owner).
		Str("amount", amount.String()).
		Msg("Withdrawal completed")
	return amount, nil
}

// RescueShares is the dead-vault exit: a depositor converts their full share
// entitlement at the liquidation price without touching the normal withdraw
// path.
func (v *Vault) RescueShares(owner string) (sdkmath.LegacyDec, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	zero := sdkmath.LegacyZeroDec()
	if !v.dead {
		return zero, ErrVaultNotDead
	}
	v.redeemAll(owner)
	shares := v.shareBalances[owner]
	if shares.IsNil() || !shares.IsPositive() {
		return zero, ErrInsufficientShares
	}
	amount := shares.MulTruncate(v.deadPricePerShare)
	v.shareBalances[owner] = zero
	v.totalShares = v.totalShares.Sub(shares)
	v.baseBalance = v.baseBalance.Sub(amount)

	vaultLogger.Info().
		Str("owner", owner).
		Str("amount", amount.String()).
		Msg("Shares rescued from dead vault")
	return amount, nil
}

// Kill flags the vault for liquidation at the next roll.
func (v *Vault) Kill() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.killed = true
	vaultLogger.Warn().Msg("Vault flagged for liquidation at next roll")
}

// ReservePayoff implements HedgeVault.
func (v *Vault) ReservePayoff(caller string, amount sdkmath.LegacyDec) error {
	if err := v.policy.CheckIssuer(caller); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.newPendingPayoffs = v.newPendingPayoffs.Add(amount)
	return nil
}

// TransferPayoff implements HedgeVault. The gross claim leaves the portfolio;
// the fee portion lands in the fee bucket and the rest goes to the recipient.
func (v *Vault) TransferPayoff(caller, recipient string, amount, fee sdkmath.LegacyDec, pastEpoch bool) error {
	if err := v.policy.CheckIssuer(caller); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.paused {
		return ErrVaultPaused
	}
	if pastEpoch {
		if v.pendingPayoffs.LT(amount) {
			return ErrPayoffExceedsReserve
		}
		v.pendingPayoffs = v.pendingPayoffs.Sub(amount)
	}
	v.baseBalance = v.baseBalance.Sub(amount)
	v.feeBalance = v.feeBalance.Add(fee)
	vaultLogger.Debug().
		Str("recipient", recipient).
		Str("amount", amount.String()).
		Str("fee", fee.String()).
		Bool("pastEpoch", pastEpoch).
		Msg("Payoff transferred")
	return nil
}

// CollectPremium implements HedgeVault.
func (v *Vault) CollectPremium(caller string, premium, fee sdkmath.LegacyDec) error {
	if err := v.policy.CheckIssuer(caller); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.baseBalance = v.baseBalance.Add(premium)
	v.feeBalance = v.feeBalance.Add(fee)
	return nil
}

// DeltaHedge implements HedgeVault. Positive sideAmount buys side tokens,
// negative sells. On the buy side, when available base liquidity cannot
// cover the theoretical maximum cost, the configured slippage margin pads
// the spend bound instead of failing outright.
func (v *Vault) DeltaHedge(caller string, sideAmount sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if err := v.policy.CheckIssuer(caller); err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.trade(sideAmount)
}

// trade executes the signed side-token trade. Callers hold the lock.
func (v *Vault) trade(sideAmount sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	zero := sdkmath.LegacyZeroDec()
	if sideAmount.IsZero() {
		return zero, nil
	}
	if sideAmount.IsPositive() {
		maxCost, err := v.exchange.GetInputAmountMax(v.baseToken.Symbol, v.sideToken.Symbol, sideAmount)
		if err != nil {
			return zero, err
		}
		available := v.baseBalance.Sub(v.pendingWithdrawals).Sub(v.pendingPayoffs)
		maxInput := maxCost
		if maxCost.GT(available) {
			maxInput = available.MulTruncate(sdkmath.LegacyOneDec().Add(v.hedgeMargin))
		}
		spent, err := v.exchange.SwapOut(v.baseToken.Symbol, v.sideToken.Symbol, sideAmount, maxInput)
		if err != nil {
			return zero, err
		}
		v.baseBalance = v.baseBalance.Sub(spent)
		v.sideBalance = v.sideBalance.Add(sideAmount)
		return spent, nil
	}

	sell := sideAmount.Neg()
	if sell.GT(v.sideBalance) {
		return zero, ErrInsufficientSideBalance
	}
	got, err := v.exchange.SwapIn(v.sideToken.Symbol, v.baseToken.Symbol, sell)
	if err != nil {
		return zero, err
	}
	v.sideBalance = v.sideBalance.Sub(sell)
	v.baseBalance = v.baseBalance.Add(got)
	return got, nil
}

// RollEpoch implements HedgeVault: the roll-time algorithm. On a kill flag it
// liquidates the side holdings and marks the vault dead before pricing. The
// zero-share-price and liquidity-shortfall checks are fatal: they pause the
// vault rather than under-paying anyone.
func (v *Vault) RollEpoch(caller string, nextEpoch int64, spot sdkmath.LegacyDec) (RollResult, error) {
	if err := v.policy.CheckIssuer(caller); err != nil {
		return RollResult{}, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	zero := sdkmath.LegacyZeroDec()
	one := sdkmath.LegacyOneDec()

	// (1) Manual kill: liquidate all side holdings, mark dead.
	if v.killed && !v.dead {
		if v.sideBalance.IsPositive() {
			if _, err := v.trade(v.sideBalance.Neg()); err != nil {
				return RollResult{}, fmt.Errorf("kill liquidation failed: %w", err)
			}
		}
		v.dead = true
		vaultLogger.Warn().Msg("Vault liquidated and marked dead")
	}

	// (2) Portfolio value; fees sit outside it.
	portfolio := v.baseBalance.Add(v.sideBalance.MulTruncate(spot))

	// (3) Liquidity backing shares: strip every liability bucket.
	assetValue := portfolio.
		Sub(v.newPendingPayoffs).
		Sub(v.pendingWithdrawals).
		Sub(v.pendingPayoffs).
		Sub(v.pendingDeposits)
	if assetValue.IsNegative() {
		assetValue = zero
	}

	// (4) Finalize the share price. 1:1 with no shares outstanding; zero with
	// shares outstanding is fatal, it would wipe out future depositors.
	var pps sdkmath.LegacyDec
	if v.totalShares.IsZero() {
		pps = one
	} else {
		pps = assetValue.QuoTruncate(v.totalShares)
		if pps.IsZero() {
			v.paused = true
			return RollResult{Paused: true}, ErrZeroSharePrice
		}
	}
	v.epochPricePerShare[v.currentEpoch] = pps

	// (5) Withdrawal claims made this epoch lock in at this price. The shares
	// burn now; their value becomes a base-denominated liability.
	withdrawLiability := v.newHeldShares.MulTruncate(pps)
	v.heldShares = v.heldShares.Add(v.newHeldShares)
	v.totalShares = v.totalShares.Sub(v.newHeldShares)
	v.pendingWithdrawals = v.pendingWithdrawals.Add(withdrawLiability)
	v.newHeldShares = zero

	// (6) Newly reserved payoff becomes claimable.
	reserved := v.newPendingPayoffs
	v.pendingPayoffs = v.pendingPayoffs.Add(reserved)
	v.newPendingPayoffs = zero

	// (7) Mint shares for the period's deposits at the finalized price.
	minted := zero
	if v.pendingDeposits.IsPositive() {
		minted = v.pendingDeposits.QuoTruncate(pps)
		v.totalShares = v.totalShares.Add(minted)
	}
	// Capital backing the new epoch: what the remaining shares are worth plus
	// the fresh deposits, net of the withdrawal liability finalized above.
	v.lockedInitially = assetValue.Sub(withdrawLiability).Add(v.pendingDeposits)
	if v.lockedInitially.IsNegative() {
		v.lockedInitially = zero
	}
	v.pendingDeposits = zero

	if v.dead {
		v.deadPricePerShare = pps
		v.currentEpoch = nextEpoch
		return RollResult{
			PricePerShare:   pps,
			SharesMinted:    minted,
			LockedInitially: v.lockedInitially,
			PortfolioValue:  portfolio,
			ReservedPayoff:  reserved,
			Dead:            true,
		}, nil
	}

	// (8) Rebalance to a 50/50 value split after reserving for liabilities,
	// then verify the base side covers what the vault owes.
	if err := v.adjustBalances(spot); err != nil {
		return RollResult{}, err
	}
	liabilities := v.pendingWithdrawals.Add(v.pendingPayoffs)
	if v.baseBalance.LT(liabilities) {
		v.paused = true
		vaultLogger.Error().
			Str("baseBalance", v.baseBalance.String()).
			Str("liabilities", liabilities.String()).
			Msg("Vault under-collateralized after rebalance; pausing")
		return RollResult{Paused: true}, ErrLiquidityShortfall
	}

	v.currentEpoch = nextEpoch
	return RollResult{
		PricePerShare:    pps,
		SharesMinted:     minted,
		LockedInitially:  v.lockedInitially,
		PortfolioValue:   portfolio,
		ReservedPayoff:   reserved,
		PendingWithdrawn: withdrawLiability,
	}, nil
}

// adjustBalances trades toward an equal-value split of the investable
// portfolio. If base on hand cannot cover pending liabilities, it sells
// exactly enough side to cover the shortfall plus half of the remainder;
// otherwise it buys side toward the target. Callers hold the lock.
func (v *Vault) adjustBalances(spot sdkmath.LegacyDec) error {
	if !spot.IsPositive() {
		return errors.New("spot price must be positive for rebalance")
	}
	reserved := v.pendingWithdrawals.Add(v.pendingPayoffs)
	portfolio := v.baseBalance.Add(v.sideBalance.MulTruncate(spot))
	investable := portfolio.Sub(reserved)
	if investable.IsNegative() {
		investable = sdkmath.LegacyZeroDec()
	}
	half := investable.QuoTruncate(sdkmath.LegacyNewDec(2))
	targetSide := half.QuoTruncate(spot)
	trade := targetSide.Sub(v.sideBalance)
	if trade.IsZero() {
		return nil
	}
	// Selling more than held cannot happen here: targetSide >= 0.
	_, err := v.trade(trade)
	return err
}

// SideTokenBalance implements HedgeVault.
func (v *Vault) SideTokenBalance() sdkmath.LegacyDec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sideBalance
}

// LockedInitially implements HedgeVault.
func (v *Vault) LockedInitially() sdkmath.LegacyDec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lockedInitially
}

// IsDead implements HedgeVault.
func (v *Vault) IsDead() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dead
}

// IsPaused reports the operator-visible pause state.
func (v *Vault) IsPaused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

// State is a read-only snapshot for the web layer.
type State struct {
	Epoch              int64             `json:"epoch"`
	BaseBalance        sdkmath.LegacyDec `json:"base_balance"`
	SideBalance        sdkmath.LegacyDec `json:"side_balance"`
	FeeBalance         sdkmath.LegacyDec `json:"fee_balance"`
	TotalShares        sdkmath.LegacyDec `json:"total_shares"`
	LockedInitially    sdkmath.LegacyDec `json:"locked_initially"`
	PendingDeposits    sdkmath.LegacyDec `json:"pending_deposits"`
	PendingWithdrawals sdkmath.LegacyDec `json:"pending_withdrawals"`
	PendingPayoffs     sdkmath.LegacyDec `json:"pending_payoffs"`
	TotalDeposit       sdkmath.LegacyDec `json:"total_deposit"`
	HeldShares         sdkmath.LegacyDec `json:"held_shares"`
	Dead               bool              `json:"dead"`
	Killed             bool              `json:"killed"`
	Paused             bool              `json:"paused"`
}

// Snapshot returns a consistent copy of the vault's liquidity state.
func (v *Vault) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Epoch:              v.currentEpoch,
		BaseBalance:        v.baseBalance,
		SideBalance:        v.sideBalance,
		FeeBalance:         v.feeBalance,
		TotalShares:        v.totalShares,
		LockedInitially:    v.lockedInitially,
		PendingDeposits:    v.pendingDeposits,
		PendingWithdrawals: v.pendingWithdrawals,
		PendingPayoffs:     v.pendingPayoffs,
		TotalDeposit:       v.totalDeposit,
		HeldShares:         v.heldShares,
		Dead:               v.dead,
		Killed:             v.killed,
		Paused:             v.paused,
	}
}

// ShareBalance returns owner's held shares.
func (v *Vault) ShareBalance(owner string) sdkmath.LegacyDec {
	v.mu.Lock()
	defer v.mu.Unlock()
	if bal, ok := v.shareBalances[owner]; ok {
		return bal
	}
	return sdkmath.LegacyZeroDec()
}

// PricePerShare returns the finalized share price for an epoch, or zero if
// that epoch has not rolled.
func (v *Vault) PricePerShare(epoch int64) sdkmath.LegacyDec {
	v.mu.Lock()
	defer v.mu.Unlock()
	if pps, ok := v.epochPricePerShare[epoch]; ok {
		return pps
	}
	return sdkmath.LegacyZeroDec()
}
