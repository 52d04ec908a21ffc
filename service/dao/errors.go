package dao

import "errors"

// Sentinel errors shared by the job and document DAOs, so callers branch
// with errors.Is instead of matching message text.
var (
	// ErrNotFound reports that no entity exists under the given key.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID reports an empty or malformed key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity reports an attempt to persist a nil pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
