package domain

import "errors"

var (
	// ErrStoreUnavailable wraps transport failures talking to the counter
	// store. Never retried at this layer.
	ErrStoreUnavailable = errors.New("counter store unavailable")

	// ErrResourceExhausted is the normal business outcome of reserving
	// against a depleted pool. It is not a system fault.
	ErrResourceExhausted = errors.New("not enough available")

	// ErrReservationsBlocked is returned while the admission gate is
	// closed; no job is created.
	ErrReservationsBlocked = errors.New("reservations are blocked")

	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidInput rejects malformed caller input before anything is
	// enqueued.
	ErrInvalidInput = errors.New("invalid input")
)
