/*
This file contains the fee schedule provider. Fee percentages are tiered by
whether the trade happens before or after maturity, and every tunable sits
behind a delayed-activation holder: a proposed rate only takes effect after
the configured delay, and reads return the previously active value until
then.
*/

package fees

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/odyn-fi/odyn/internal/types"
)

// Schedule computes trade fees for one series. The zero value is unusable;
// construct with NewSchedule.
type Schedule struct {
	buyRate          types.TimeLocked[sdkmath.LegacyDec]
	sellRate         types.TimeLocked[sdkmath.LegacyDec]
	maturitySellRate types.TimeLocked[sdkmath.LegacyDec]
	vaultMinFee      types.TimeLocked[sdkmath.LegacyDec]
	changeDelay      time.Duration
}

// NewSchedule builds a schedule with immediately active rates. Rates are
// proportional (0.0015 means 15 bps); vaultMinFee is an absolute base-token
// amount the vault always collects.
func NewSchedule(buyRate, sellRate, maturitySellRate, vaultMinFee sdkmath.LegacyDec, changeDelay time.Duration) *Schedule {
	return &Schedule{
		buyRate:          types.NewTimeLocked(buyRate),
		sellRate:         types.NewTimeLocked(sellRate),
		maturitySellRate: types.NewTimeLocked(maturitySellRate),
		vaultMinFee:      types.NewTimeLocked(vaultMinFee),
		changeDelay:      changeDelay,
	}
}

// ProposeBuyRate schedules a new buy rate, active after the change delay.
func (s *Schedule) ProposeBuyRate(rate sdkmath.LegacyDec, now time.Time) {
	s.buyRate.Propose(rate, now, now.Add(s.changeDelay))
}

// ProposeSellRate schedules a new pre-maturity sell rate.
func (s *Schedule) ProposeSellRate(rate sdkmath.LegacyDec, now time.Time) {
	s.sellRate.Propose(rate, now, now.Add(s.changeDelay))
}

// ProposeMaturitySellRate schedules a new post-maturity sell rate.
func (s *Schedule) ProposeMaturitySellRate(rate sdkmath.LegacyDec, now time.Time) {
	s.maturitySellRate.Propose(rate, now, now.Add(s.changeDelay))
}

// ProposeVaultMinFee schedules a new mandatory vault fee portion.
func (s *Schedule) ProposeVaultMinFee(fee sdkmath.LegacyDec, now time.Time) {
	s.vaultMinFee.Propose(fee, now, now.Add(s.changeDelay))
}

// TradeBuyFee returns the all-in fee for a mint and the mandatory vault
// portion within it. The proportional part applies to the premium paid.
func (s *Schedule) TradeBuyFee(now time.Time, premium sdkmath.LegacyDec) (fee, vaultFee sdkmath.LegacyDec) {
	vaultFee = s.vaultMinFee.Get(now)
	fee = premium.MulTruncate(s.buyRate.Get(now)).Add(vaultFee)
	return fee, vaultFee
}

// TradeSellFee returns the fee for a burn and the mandatory vault portion.
// Before maturity the rate applies to the position's current value; after
// maturity the post-maturity tier applies to the payoff being claimed.
func (s *Schedule) TradeSellFee(now, maturity time.Time, currentValue sdkmath.LegacyDec) (fee, vaultFee sdkmath.LegacyDec) {
	rate := s.sellRate.Get(now)
	if !now.Before(maturity) {
		rate = s.maturitySellRate.Get(now)
	}
	vaultFee = s.vaultMinFee.Get(now)
	fee = currentValue.MulTruncate(rate).Add(vaultFee)
	return fee, vaultFee
}
