// Package kv defines the durable key-value collaborator used by the
// interaction, profile, and catalog stores.
//
// Keys are scoped by the caller (one logical collection per prefix). The
// store offers no transactional guarantees across keys.
package kv

import "context"

// Store provides read/write access to JSON-encoded blobs.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for key, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}

// Key joins a collection prefix and an entity id into a store key.
func Key(collection, id string) string {
	return collection + "/" + id
}
