/*
This file contains the notional ledger: per-epoch, per-strike bookkeeping of
initial, used and set-aside (payoff) liquidity, split across the two option
flavors. The option issuer is the only writer; the vault and the web layer
read through it. Invariant: Used never exceeds Initial flavor-wise while an
epoch is live, and Payoff only becomes non-zero after the epoch has ended.
*/

package notional

import (
	"errors"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/types"
)

// Error definitions for ledger arithmetic guards
var (
	ErrNotEnoughNotional = errors.New("not enough notional")
	ErrUsageUnderflow    = errors.New("usage decrease exceeds used notional")
	ErrPayoffUnderflow   = errors.New("payoff decrease exceeds accounted payoff")
	ErrNoEntry           = errors.New("no ledger entry for epoch and strike")
)

// Info is one ledger entry, keyed by (epoch, strike).
type Info struct {
	Initial types.Amount `json:"initial"`
	Used    types.Amount `json:"used"`
	Payoff  types.Amount `json:"payoff"`
}

type strikeKey string

// Ledger holds entries for all epochs of one series. It performs no locking:
// the issuer serializes every mutation (single-writer execution model).
type Ledger struct {
	entries map[int64]map[strikeKey]*Info
	strikes map[int64][]sdkmath.LegacyDec
}

// NewLedger returns an empty notional ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[int64]map[strikeKey]*Info),
		strikes: make(map[int64][]sdkmath.LegacyDec),
	}
}

func keyOf(strike sdkmath.LegacyDec) strikeKey {
	return strikeKey(strike.String())
}

func (l *Ledger) entry(epoch int64, strike sdkmath.LegacyDec) *Info {
	byStrike, ok := l.entries[epoch]
	if !ok {
		return nil
	}
	return byStrike[keyOf(strike)]
}

// ensure returns the entry for (epoch, strike), creating it zeroed on first use.
func (l *Ledger) ensure(epoch int64, strike sdkmath.LegacyDec) *Info {
	byStrike, ok := l.entries[epoch]
	if !ok {
		byStrike = make(map[strikeKey]*Info)
		l.entries[epoch] = byStrike
	}
	k := keyOf(strike)
	info, ok := byStrike[k]
	if !ok {
		info = &Info{
			Initial: types.ZeroAmount(),
			Used:    types.ZeroAmount(),
			Payoff:  types.ZeroAmount(),
		}
		byStrike[k] = info
		l.strikes[epoch] = append(l.strikes[epoch], strike)
	}
	return info
}

// SetInitial allocates the liquidity backing an epoch's strike. Called once
// per strike at roll time, before any trade for that epoch is accepted.
func (l *Ledger) SetInitial(epoch int64, strike sdkmath.LegacyDec, amount types.Amount) {
	l.ensure(epoch, strike).Initial = amount
}

// Strikes returns every strike with a ledger entry for the epoch, in
// allocation order.
func (l *Ledger) Strikes(epoch int64) []sdkmath.LegacyDec {
	return l.strikes[epoch]
}

// Get returns a copy of the entry, or a zeroed Info if none exists.
func (l *Ledger) Get(epoch int64, strike sdkmath.LegacyDec) Info {
	info := l.entry(epoch, strike)
	if info == nil {
		return Info{
			Initial: types.ZeroAmount(),
			Used:    types.ZeroAmount(),
			Payoff:  types.ZeroAmount(),
		}
	}
	return *info
}

// Available returns Initial - Used flavor-wise.
func (l *Ledger) Available(epoch int64, strike sdkmath.LegacyDec) types.Amount {
	info := l.entry(epoch, strike)
	if info == nil {
		return types.ZeroAmount()
	}
	return info.Initial.Decrease(info.Used)
}

// IncreaseUsage reserves notional for a freshly minted position. Fails with
// ErrNotEnoughNotional if either flavor would exceed its initial allocation.
func (l *Ledger) IncreaseUsage(epoch int64, strike sdkmath.LegacyDec, amount types.Amount) error {
	info := l.ensure(epoch, strike)
	if !l.Available(epoch, strike).Covers(amount) {
		return ErrNotEnoughNotional
	}
	info.Used = info.Used.Increase(amount)
	return nil
}

// DecreaseUsage releases notional on burn. Never drives Used negative.
func (l *Ledger) DecreaseUsage(epoch int64, strike sdkmath.LegacyDec, amount types.Amount) error {
	info := l.entry(epoch, strike)
	if info == nil {
		return ErrNoEntry
	}
	if !info.Used.Covers(amount) {
		return ErrUsageUnderflow
	}
	info.Used = info.Used.Decrease(amount)
	return nil
}

// AccountPayoffs sets aside the residual payoff computed for an ended epoch.
// It is depleted exactly by the per-position shares claimed afterwards.
func (l *Ledger) AccountPayoffs(epoch int64, strike sdkmath.LegacyDec, up, down sdkmath.LegacyDec) {
	info := l.ensure(epoch, strike)
	info.Payoff = info.Payoff.Increase(types.NewAmount(up, down))
}

// DecreasePayoff depletes the set-aside payoff as positions claim their
// shares. Never drives Payoff negative.
func (l *Ledger) DecreasePayoff(epoch int64, strike sdkmath.LegacyDec, amount types.Amount) error {
	info := l.entry(epoch, strike)
	if info == nil {
		return ErrNoEntry
	}
	if !info.Payoff.Covers(amount) {
		return ErrPayoffUnderflow
	}
	info.Payoff = info.Payoff.Decrease(amount)
	return nil
}

// ShareOfPayoff computes a position's pro-rata share of the accounted payoff,
// amount * payoff / used per flavor. LegacyDec carries the multiplication in
// a wide big.Int intermediate, so no precision is lost before the final
// truncation. A zero Used with non-zero amount cannot occur under
// the ledger invariants; it would mean a position was minted without usage.
func (l *Ledger) ShareOfPayoff(epoch int64, strike sdkmath.LegacyDec, amount types.Amount) types.Amount {
	info := l.entry(epoch, strike)
	if info == nil {
		return types.ZeroAmount()
	}
	share := types.ZeroAmount()
	if amount.Up.IsPositive() {
		share.Up = amount.Up.MulTruncate(info.Payoff.Up).QuoTruncate(info.Used.Up)
	}
	if amount.Down.IsPositive() {
		share.Down = amount.Down.MulTruncate(info.Payoff.Down).QuoTruncate(info.Used.Down)
	}
	return share
}

// UtilizationRateFactors returns the used and total notional across both
// flavors, the inputs to the utilization rate used/total.
func (l *Ledger) UtilizationRateFactors(epoch int64, strike sdkmath.LegacyDec) (used, total sdkmath.LegacyDec) {
	info := l.entry(epoch, strike)
	if info == nil {
		return sdkmath.LegacyZeroDec(), sdkmath.LegacyZeroDec()
	}
	return info.Used.Total(), info.Initial.Total()
}

// PostTradeUtilizationRate projects used/total after hypothetically applying
// a trade. Sells clamp at zero rather than underflowing: a burn can never
// report negative utilization.
func (l *Ledger) PostTradeUtilizationRate(epoch int64, strike sdkmath.LegacyDec, amount sdkmath.LegacyDec, isBuy bool) sdkmath.LegacyDec {
	used, total := l.UtilizationRateFactors(epoch, strike)
	if total.IsZero() {
		return sdkmath.LegacyZeroDec()
	}
	if isBuy {
		used = used.Add(amount)
	} else if used.GT(amount) {
		used = used.Sub(amount)
	} else {
		used = sdkmath.LegacyZeroDec()
	}
	return used.QuoTruncate(total)
}
