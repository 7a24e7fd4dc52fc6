package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

// ItemStore is an in-memory implementation of driven.ItemStore.
// Items are held as JSON so callers never share maps with the store.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items: make(map[string][]byte),
	}
}

// PutItem replaces the item under key.
func (s *ItemStore) PutItem(_ context.Context, key string, item map[string]any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = data
	return nil
}

// GetItem returns the item under key.
func (s *ItemStore) GetItem(_ context.Context, key string) (map[string]any, error) {
	s.mu.RLock()
	data, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}

	var item map[string]any
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return item, nil
}

// Close is a no-op.
func (s *ItemStore) Close() error {
	return nil
}
