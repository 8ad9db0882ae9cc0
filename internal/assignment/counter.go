// Package assignment maps participation records onto venues under finite
// capacity. The assigned-count per venue is owned exclusively by this
// package's CounterStore; nothing else reads or writes it.
package assignment

import "context"

// CounterStore tracks the assigned count per venue. Reserve is the only way
// a seat is taken and must be a single atomic compare-and-increment: two
// concurrent reservations against the last seat must not both succeed.
type CounterStore interface {
	// Reserve takes one seat if the count is below capacity. Returns
	// sentinel.ErrCapacityFull (wrapped) when the venue is full.
	Reserve(ctx context.Context, venueName string, capacity int) error
	// Release returns one seat, e.g. when a reassignment moves a member
	// elsewhere or a record write loses its version race.
	Release(ctx context.Context, venueName string) error
	// Count reports the current assigned count for reporting.
	Count(ctx context.Context, venueName string) (int, error)
}
