package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrResourceNotFound = errors.New("resource not found")

	// ErrUnavailable: the availability engine rejected the interval.
	ErrUnavailable = errors.New("resource unavailable for the requested interval")

	// ErrLockConflict: another request holds the same window.
	ErrLockConflict = errors.New("reservation window is locked by another request")

	// ErrLockExpired: commit or release against a hold that lapsed, was released
	// or was already claimed by another commit.
	ErrLockExpired = errors.New("reservation hold expired")

	ErrPaymentDeclined = errors.New("payment declined")

	ErrInvalidHandle = errors.New("invalid pending reservation handle")

	ErrInvalidTransition = errors.New("invalid workflow transition")
)
