// Package storage provides the object store used for avatar blobs.
package storage

import "context"

// ObjectStore is the interface the avatar service depends on. The S3
// implementation is constructed in main; tests substitute fakes.
type ObjectStore interface {
	// Put stores data under key with the given content type,
	// overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the publicly resolvable URL for key.
	PublicURL(key string) string
}
