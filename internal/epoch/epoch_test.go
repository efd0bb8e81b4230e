package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAlignsToGrid(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	c, err := New(24*time.Hour, 24*time.Hour, now)
	require.NoError(t, err)

	current := c.Current()
	require.True(t, current.After(now))
	require.Zero(t, current.Sub(Reference)%(24*time.Hour), "checkpoint must sit on the grid")
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), current)
}

func TestNewRejectsBadFrequency(t *testing.T) {
	_, err := New(0, 0, time.Now())
	require.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestNewUsesFirstSpanForBootstrap(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	c, err := New(24*time.Hour, time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), c.Current())
}

func TestCheckpointEqualToNowCountsAsElapsed(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // exactly on the grid
	c, err := New(24*time.Hour, 24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), c.Current())
}

func TestRollRequiresFinishedEpoch(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	c, err := New(24*time.Hour, 24*time.Hour, now)
	require.NoError(t, err)

	require.ErrorIs(t, c.Roll(now), ErrEpochNotFinished)
	require.Equal(t, 0, c.RollCount())

	afterCheckpoint := c.Current().Add(time.Minute)
	require.NoError(t, c.Roll(afterCheckpoint))
	require.Equal(t, 1, c.RollCount())
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), c.Previous())
	require.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), c.Current())
}

func TestRollSkipsMissedCheckpoints(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	c, err := New(24*time.Hour, 24*time.Hour, now)
	require.NoError(t, err)

	// The roller comes back five days late; a single roll converges.
	lateNow := c.Current().Add(5 * 24 * time.Hour).Add(time.Hour)
	require.NoError(t, c.Roll(lateNow))
	require.True(t, c.Current().After(lateNow))
	require.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), c.Current())
}

func TestPhaseGates(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	c, err := New(24*time.Hour, 24*time.Hour, now)
	require.NoError(t, err)

	require.NoError(t, c.RequireActive(now))
	require.ErrorIs(t, c.RequireFinished(now), ErrEpochNotFinished)

	after := c.Current().Add(time.Second)
	require.ErrorIs(t, c.RequireActive(after), ErrEpochFinished)
	require.NoError(t, c.RequireFinished(after))
}

func TestTimeToNext(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	c, err := New(24*time.Hour, 24*time.Hour, now)
	require.NoError(t, err)

	require.Equal(t, time.Hour, c.TimeToNext(now))
	require.Zero(t, c.TimeToNext(c.Current()))
}
