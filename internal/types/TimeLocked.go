package types

import "time"

// TimeLocked is a delayed-activation parameter holder. A proposed value only
// takes effect once ValidFrom has passed; until then reads return the
// previously active value. Every tunable finance and fee parameter in the
// system uses this uniformly.
type TimeLocked[T any] struct {
	ActiveValue   T         `json:"active_value"`
	ProposedValue T         `json:"proposed_value"`
	ValidFrom     time.Time `json:"valid_from"`
}

// NewTimeLocked returns a holder whose value is immediately active.
func NewTimeLocked[T any](value T) TimeLocked[T] {
	return TimeLocked[T]{ActiveValue: value, ProposedValue: value}
}

// Get returns the value active at now.
func (t TimeLocked[T]) Get(now time.Time) T {
	if !t.ValidFrom.IsZero() && !now.Before(t.ValidFrom) {
		return t.ProposedValue
	}
	return t.ActiveValue
}

// Propose schedules value to become active at validFrom. The currently active
// value is rotated into ActiveValue first, so an earlier still-pending
// proposal that never activated is discarded.
func (t *TimeLocked[T]) Propose(value T, now, validFrom time.Time) {
	t.ActiveValue = t.Get(now)
	t.ProposedValue = value
	t.ValidFrom = validFrom
}
