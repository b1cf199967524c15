package repositories

import "errors"

// Sentinel errors surfaced unwrapped so services and handlers can branch.
var (
	// ErrInsufficientFunds means a wallet debit would overdraw the balance.
	// The atomic operation that detected it persisted nothing.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrInvalidTransition means a guarded status move was attempted from
	// the wrong state. Nothing was changed.
	ErrInvalidTransition = errors.New("invalid status transition")
)
