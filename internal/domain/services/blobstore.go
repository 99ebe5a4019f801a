package services

import (
	"context"
	"io"
)

// BlobStore abstracts the object store holding document binaries.
// Objects are keyed projectID/documentID/filename.
type BlobStore interface {
	// Upload stores a binary under the given key.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Remove deletes the object at key. Removing a missing object is
	// not an error.
	Remove(ctx context.Context, key string) error

	// PublicURL returns the stable public URL for key.
	PublicURL(key string) string

	// VerifyReachable checks that the object at key can actually be
	// read back (HEAD semantics).
	VerifyReachable(ctx context.Context, key string) error
}
