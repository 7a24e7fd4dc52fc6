package driven

import "context"

// ItemStore is a single-table key-value store of attribute maps.
// Implementations: SQLite, DynamoDB, memory.
type ItemStore interface {
	// PutItem stores item under key, replacing any existing item wholesale.
	PutItem(ctx context.Context, key string, item map[string]any) error

	// GetItem returns the full item under key.
	// Returns domain.ErrNotFound if it does not exist.
	GetItem(ctx context.Context, key string) (map[string]any, error)

	// Close releases resources.
	Close() error
}
