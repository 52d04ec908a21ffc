package dao

import "context"

// Service is the storage contract shared by the run-history and document
// DAOs.  Implementations are safe for concurrent use.
type Service[K comparable, T any] interface {
	// Save persists the entity, overwriting any previous version.
	Save(ctx context.Context, t *T) error

	// Load returns the entity stored under id.
	Load(ctx context.Context, id K) (*T, error)

	// Delete removes the entity stored under id.
	Delete(ctx context.Context, id K) error

	// List returns the entities matching every supplied parameter.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
