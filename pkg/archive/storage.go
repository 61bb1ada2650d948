package archive

import (
	"context"
)

// Storage is the key-value contract archive bundles are written through.
// Bundle keys embed an RFC 3339 timestamp, so the descending List order
// doubles as newest-first. Implementations must be safe for concurrent use.
type Storage interface {
	// Write stores data under key, replacing any previous value.
	Write(ctx context.Context, key string, data []byte) error

	// Read returns the value stored under key, or os.ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns the keys matching prefix, sorted descending.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
