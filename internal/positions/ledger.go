/*
This file contains the position ledger: per-epoch, per-owner, per-strike
option holdings and their entry premium. The option issuer is the only writer.
*/

package positions

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/types"
)

// Error definitions for position lookups and burns
var (
	ErrPositionNotFound      = errors.New("position not found")
	ErrAmountExceedsPosition = errors.New("amount exceeds position")
)

// Ledger holds every position of one series. No locking: the issuer
// serializes all mutations.
type Ledger struct {
	positions map[string]*types.Position
}

// NewLedger returns an empty position ledger.
func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*types.Position)}
}

func keyOf(epoch int64, owner string, strike sdkmath.LegacyDec) string {
	return fmt.Sprintf("%d/%s/%s", epoch, owner, strike.String())
}

// Get returns a copy of the position, or a non-existing zero position.
func (l *Ledger) Get(epoch int64, owner string, strike sdkmath.LegacyDec) types.Position {
	if p, ok := l.positions[keyOf(epoch, owner, strike)]; ok {
		return *p
	}
	return types.Position{
		Strike:     strike,
		Owner:      owner,
		AmountUp:   sdkmath.LegacyZeroDec(),
		AmountDown: sdkmath.LegacyZeroDec(),
		Premium:    sdkmath.LegacyZeroDec(),
	}
}

// Record applies a mint: the amounts add to the holding and the paid premium
// accumulates additively into the key.
func (l *Ledger) Record(epoch int64, owner string, strike sdkmath.LegacyDec, amount types.Amount, premium sdkmath.LegacyDec) {
	k := keyOf(epoch, owner, strike)
	p, ok := l.positions[k]
	if !ok {
		p = &types.Position{
			Epoch:      epoch,
			Owner:      owner,
			Strike:     strike,
			AmountUp:   sdkmath.LegacyZeroDec(),
			AmountDown: sdkmath.LegacyZeroDec(),
			Premium:    sdkmath.LegacyZeroDec(),
		}
		l.positions[k] = p
	}
	p.AmountUp = p.AmountUp.Add(amount.Up)
	p.AmountDown = p.AmountDown.Add(amount.Down)
	p.Premium = p.Premium.Add(premium)
}

// Reduce applies a burn. The entry premium shrinks proportionally to the
// burned fraction of the total held notional; a full burn deletes the key.
func (l *Ledger) Reduce(epoch int64, owner string, strike sdkmath.LegacyDec, amount types.Amount) error {
	k := keyOf(epoch, owner, strike)
	p, ok := l.positions[k]
	if !ok {
		return ErrPositionNotFound
	}
	held := p.Amount()
	if !held.Covers(amount) {
		return ErrAmountExceedsPosition
	}
	total := held.Total()
	if total.IsPositive() {
		reduction := amount.Total().MulTruncate(p.Premium).QuoTruncate(total)
		p.Premium = p.Premium.Sub(reduction)
	}
	p.AmountUp = p.AmountUp.Sub(amount.Up)
	p.AmountDown = p.AmountDown.Sub(amount.Down)
	if p.AmountUp.IsZero() && p.AmountDown.IsZero() {
		delete(l.positions, k)
	}
	return nil
}

// ByEpoch returns copies of every position open against the epoch.
func (l *Ledger) ByEpoch(epoch int64) []types.Position {
	var out []types.Position
	for _, p := range l.positions {
		if p.Epoch == epoch {
			out = append(out, *p)
		}
	}
	return out
}
