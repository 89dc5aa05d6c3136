package recordstore

import "github.com/cockroachdb/errors"

var (
	// ErrNotInitialized is returned when the store is used before Open or
	// after Close.
	ErrNotInitialized = errors.New("record store is not initialized")

	// ErrStoreUnavailable marks failures where the device denied access to
	// the backing database.
	ErrStoreUnavailable = errors.New("record store unavailable")

	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownIndex      = errors.New("unknown index")
	ErrInvalidRecord     = errors.New("invalid record")
)
