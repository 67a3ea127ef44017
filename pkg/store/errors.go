package store

import "errors"

// Sentinel errors for repository operations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrAddressNotFound corresponds to the spec's address-not-found kind.
	ErrAddressNotFound = errors.New("store: address-not-found")
	// ErrStaleTip is returned when a commit's previous-entry hash does not
	// match the address's current tip (open question (b), decided).
	ErrStaleTip = errors.New("store: stale-tip")
)
