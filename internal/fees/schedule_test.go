package fees

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) sdkmath.LegacyDec {
	t.Helper()
	d, err := sdkmath.LegacyNewDecFromStr(s)
	require.NoError(t, err)
	return d
}

func testSchedule(t *testing.T) *Schedule {
	t.Helper()
	return NewSchedule(
		dec(t, "0.0015"), // 15 bps on buys
		dec(t, "0.0020"), // 20 bps on pre-maturity sells
		dec(t, "0.0010"), // 10 bps on matured claims
		dec(t, "0.05"),   // flat vault fee
		24*time.Hour,
	)
}

func TestTradeBuyFee(t *testing.T) {
	s := testSchedule(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	fee, vaultFee := s.TradeBuyFee(now, sdkmath.LegacyNewDec(1000))
	require.Equal(t, dec(t, "0.05").String(), vaultFee.String())
	// 1000 * 0.0015 + 0.05
	require.Equal(t, dec(t, "1.55").String(), fee.String())
}

func TestTradeSellFeeTiers(t *testing.T) {
	s := testSchedule(t)
	maturity := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	value := sdkmath.LegacyNewDec(1000)

	// Before maturity the sell rate applies.
	before := maturity.Add(-time.Hour)
	fee, vaultFee := s.TradeSellFee(before, maturity, value)
	require.Equal(t, dec(t, "2.05").String(), fee.String())
	require.Equal(t, dec(t, "0.05").String(), vaultFee.String())

	// At and after maturity the post-maturity tier applies.
	fee, _ = s.TradeSellFee(maturity, maturity, value)
	require.Equal(t, dec(t, "1.05").String(), fee.String())

	fee, _ = s.TradeSellFee(maturity.Add(time.Hour), maturity, value)
	require.Equal(t, dec(t, "1.05").String(), fee.String())
}

func TestProposedRateWaitsForDelay(t *testing.T) {
	s := testSchedule(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	s.ProposeBuyRate(dec(t, "0.0030"), now)

	// Before the delay elapses the old rate still applies.
	fee, _ := s.TradeBuyFee(now.Add(12*time.Hour), sdkmath.LegacyNewDec(1000))
	require.Equal(t, dec(t, "1.55").String(), fee.String())

	// After the delay the proposed rate bites.
	fee, _ = s.TradeBuyFee(now.Add(25*time.Hour), sdkmath.LegacyNewDec(1000))
	require.Equal(t, dec(t, "3.05").String(), fee.String())
}

func TestProposeVaultMinFee(t *testing.T) {
	s := testSchedule(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	s.ProposeVaultMinFee(dec(t, "0.10"), now)
	_, vaultFee := s.TradeBuyFee(now.Add(25*time.Hour), sdkmath.LegacyNewDec(100))
	require.Equal(t, dec(t, "0.10").String(), vaultFee.String())
}
