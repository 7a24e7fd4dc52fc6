package vectorindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// Result is one search hit.
type Result struct {
	Chunk domain.Chunk
	Score float32
}

type entry struct {
	chunk  domain.Chunk
	vector []float32
}

// Index holds (chunk, vector) pairs in insertion order.
// It is safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	model      string
	generation string
	entries    []entry
}

// New creates an empty index for vectors of the given dimensions.
// model records which embedding model produced the vectors.
func New(dimensions int, model string) *Index {
	return &Index{
		dimensions: dimensions,
		model:      model,
	}
}

// Add appends a chunk and its embedding.
// The vector is copied; callers may reuse their slice.
func (idx *Index) Add(chunk domain.Chunk, vector []float32) error {
	if len(vector) != idx.dimensions {
		return fmt.Errorf("%w: vector for chunk %s has %d dimensions, index has %d",
			domain.ErrInvalidInput, chunk.ID, len(vector), idx.dimensions)
	}

	v := make([]float32, len(vector))
	copy(v, vector)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = append(idx.entries, entry{chunk: chunk, vector: v})
	return nil
}

// Search returns the k entries most similar to query, nearest first.
// Equal scores keep insertion order. k larger than the index returns everything.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), idx.dimensions)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]Result, len(idx.entries))
	for i, e := range idx.entries {
		results[i] = Result{Chunk: e.chunk, Score: cosineSimilarity(query, e.vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Model returns the embedding model that produced the vectors.
func (idx *Index) Model() string {
	return idx.model
}

// Generation returns the generation id the index was loaded with,
// or empty for an index that has never been encoded.
func (idx *Index) Generation() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.generation
}
