package storage

import "errors"

var (
	// ErrNotFound indicates no record exists for the given series.
	ErrNotFound = errors.New("storage: record not found")

	// ErrInvalidSnapshotData indicates a stored ledger snapshot is
	// malformed.
	ErrInvalidSnapshotData = errors.New("storage: invalid snapshot data")

	// ErrNilSnapshot indicates a nil snapshot was passed for storage.
	ErrNilSnapshot = errors.New("storage: snapshot must not be nil")
)
