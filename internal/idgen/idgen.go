package idgen

import "github.com/google/uuid"

// NewFunc issues identifiers.  Tests swap it for a deterministic source.
var NewFunc = func() string { return uuid.NewString() }

// New returns a fresh opaque identifier.
func New() string {
	return NewFunc()
}
