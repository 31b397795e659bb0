package port

import "context"

// CounterRepository wraps the external key-value store holding integer
// counters, one key per resource pool.
type CounterRepository interface {
	// GetCount reads a counter. A missing or non-numeric value is a valid
	// outcome reported as (0, false, nil), never an error.
	GetCount(ctx context.Context, key string) (value int64, exists bool, err error)

	// SetCount writes a counter. The write is not visible until the call
	// returns nil. No retries here; retry policy belongs to the caller.
	SetCount(ctx context.Context, key string, value int64) error

	// IncrementIfBelow atomically increments the counter if its current
	// value is strictly below limit, returning whether it did. This is
	// the compare-and-swap primitive serializing per-item reservations.
	IncrementIfBelow(ctx context.Context, key string, limit int64) (bool, error)
}
