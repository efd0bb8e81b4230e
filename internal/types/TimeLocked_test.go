package types

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestTimeLockedImmediateValue(t *testing.T) {
	tl := NewTimeLocked(sdkmath.LegacyNewDec(5))
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, sdkmath.LegacyNewDec(5).String(), tl.Get(now).String())
}

func TestTimeLockedProposalActivatesAfterDelay(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimeLocked(sdkmath.LegacyNewDec(5))
	tl.Propose(sdkmath.LegacyNewDec(9), now, now.Add(time.Hour))

	require.Equal(t, sdkmath.LegacyNewDec(5).String(), tl.Get(now).String())
	require.Equal(t, sdkmath.LegacyNewDec(5).String(), tl.Get(now.Add(59*time.Minute)).String())
	require.Equal(t, sdkmath.LegacyNewDec(9).String(), tl.Get(now.Add(time.Hour)).String())
	require.Equal(t, sdkmath.LegacyNewDec(9).String(), tl.Get(now.Add(2*time.Hour)).String())
}

func TestTimeLockedReproposalDiscardsPending(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimeLocked(sdkmath.LegacyNewDec(5))
	tl.Propose(sdkmath.LegacyNewDec(9), now, now.Add(time.Hour))

	// The first proposal never activated; the second replaces it.
	tl.Propose(sdkmath.LegacyNewDec(7), now.Add(30*time.Minute), now.Add(90*time.Minute))
	require.Equal(t, sdkmath.LegacyNewDec(5).String(), tl.Get(now.Add(time.Hour)).String())
	require.Equal(t, sdkmath.LegacyNewDec(7).String(), tl.Get(now.Add(90*time.Minute)).String())
}

func TestTimeLockedGenericOverBool(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimeLocked(false)
	tl.Propose(true, now, now.Add(time.Hour))
	require.False(t, tl.Get(now))
	require.True(t, tl.Get(now.Add(time.Hour)))
}

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(sdkmath.LegacyNewDec(10), sdkmath.LegacyNewDec(20))
	b := NewAmount(sdkmath.LegacyNewDec(3), sdkmath.LegacyNewDec(4))

	require.Equal(t, sdkmath.LegacyNewDec(30).String(), a.Total().String())
	require.True(t, a.Covers(b))
	require.False(t, b.Covers(a))

	sum := a.Increase(b)
	require.Equal(t, sdkmath.LegacyNewDec(13).String(), sum.Up.String())
	require.Equal(t, sdkmath.LegacyNewDec(24).String(), sum.Down.String())

	diff := a.Decrease(b)
	require.Equal(t, sdkmath.LegacyNewDec(7).String(), diff.Up.String())
	require.Equal(t, sdkmath.LegacyNewDec(16).String(), diff.Down.String())

	require.True(t, ZeroAmount().IsZero())
	require.False(t, a.IsZero())
}

func TestPositionExists(t *testing.T) {
	var p Position
	require.False(t, p.Exists())
	p.Epoch = 1717200000
	require.True(t, p.Exists())
}
