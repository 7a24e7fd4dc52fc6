package driven

import "context"

// BlobStore is durable object storage addressed by slash-separated keys.
// Implementations: local filesystem, Google Cloud Storage, Amazon S3, memory.
type BlobStore interface {
	// Put writes data under key. A failed Put leaves no object behind.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the object under key.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object exists under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the object under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Copy duplicates the object at src to dst, replacing dst.
	// Returns domain.ErrNotFound if src does not exist.
	Copy(ctx context.Context, src, dst string) error

	// URI returns the canonical location of key (e.g. gs://bucket/key).
	URI(key string) string
}
