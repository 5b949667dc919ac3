package database

import "errors"

// Sentinel errors returned by every repository driver. Drivers wrap them
// with context, so callers should match with errors.Is.
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("interval overlaps an active reservation")
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
	ErrDuplicate        = errors.New("duplicate record")
)
