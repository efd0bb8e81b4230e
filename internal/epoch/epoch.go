/*
This file contains the epoch controller: the component that tracks the current
and previous settlement periods and decides when a period may roll. Checkpoints
live on a fixed grid anchored at a reference timestamp; a roller that is late
by more than one period skips the missed checkpoints instead of getting stuck.
*/

package epoch

import (
	"errors"
	"time"
)

// Error definitions for phase gating. Callers distinguish the two with
// errors.Is; both mean the operation arrived in the wrong epoch phase.
var (
	ErrEpochNotFinished = errors.New("epoch not finished yet")
	ErrEpochFinished    = errors.New("epoch is finished")
	ErrInvalidFrequency = errors.New("epoch frequency must be positive")
)

// Reference is the grid anchor. All checkpoints are Reference plus an integer
// multiple of the configured frequency. 2020-01-01T00:00:00Z predates any
// deployment, so multiples are always positive.
var Reference = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Controller tracks the current and previous settlement checkpoints for one
// option series. The zero value is not usable; construct with New.
type Controller struct {
	current   time.Time
	previous  time.Time
	frequency time.Duration
	firstSpan time.Duration
	rollCount int
}

// New creates a controller whose first checkpoint is the next grid point of
// firstSpan after now, and whose subsequent checkpoints advance by frequency.
func New(frequency, firstSpan time.Duration, now time.Time) (*Controller, error) {
	if frequency <= 0 {
		return nil, ErrInvalidFrequency
	}
	if firstSpan <= 0 {
		firstSpan = frequency
	}
	c := &Controller{
		frequency: frequency,
		firstSpan: firstSpan,
	}
	c.current = nextCheckpoint(now, firstSpan)
	return c, nil
}

// nextCheckpoint returns the first grid point strictly after now for the given
// step. Rounding is always up: a checkpoint equal to now counts as elapsed.
func nextCheckpoint(now time.Time, step time.Duration) time.Time {
	elapsed := now.Sub(Reference)
	intervals := elapsed/step + 1
	return Reference.Add(intervals * step)
}

// Current returns the checkpoint that ends the active epoch.
func (c *Controller) Current() time.Time { return c.current }

// Previous returns the checkpoint that ended the prior epoch. Zero before the
// first roll.
func (c *Controller) Previous() time.Time { return c.previous }

// Frequency returns the settlement period length.
func (c *Controller) Frequency() time.Duration { return c.frequency }

// RollCount returns how many times the epoch has rolled.
func (c *Controller) RollCount() int { return c.rollCount }

// IsFinished reports whether the active epoch's checkpoint has passed.
func (c *Controller) IsFinished(now time.Time) bool {
	return !now.Before(c.current)
}

// TimeToNext returns how long until the active epoch finishes; zero if it
// already has.
func (c *Controller) TimeToNext(now time.Time) time.Duration {
	if c.IsFinished(now) {
		return 0
	}
	return c.current.Sub(now)
}

// Roll advances to the next checkpoint strictly greater than now. It requires
// the active epoch to be finished, and skips any checkpoints already in the
// past so a late roller converges in a single call. Current never decreases.
func (c *Controller) Roll(now time.Time) error {
	if !c.IsFinished(now) {
		return ErrEpochNotFinished
	}
	c.previous = c.current
	c.current = nextCheckpoint(now, c.frequency)
	c.rollCount++
	return nil
}

// RequireActive rejects order-sensitive operations that need a live epoch.
func (c *Controller) RequireActive(now time.Time) error {
	if c.IsFinished(now) {
		return ErrEpochFinished
	}
	return nil
}

// RequireFinished rejects the roll path while the epoch is still live.
func (c *Controller) RequireFinished(now time.Time) error {
	if !c.IsFinished(now) {
		return ErrEpochNotFinished
	}
	return nil
}
