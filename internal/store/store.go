// Package store provides durable key-value storage for client credentials.
// Token validity is never inspected locally; the store only has to survive
// process restarts so that sessions outlive a single run.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("key not found")

// Store is a durable string key-value store. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get retrieves the value for the given key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value under the given key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
