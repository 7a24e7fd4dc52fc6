package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

// Ensure CompositeRetriever implements the interface.
var _ driving.ScoredRetriever = (*CompositeRetriever)(nil)

// CompositeRetriever ranks the results of several retrievers together.
// Chunks are ordered by score; equal scores keep retriever order, then rank.
// A chunk returned by more than one retriever appears once, at its best score.
type CompositeRetriever struct {
	retrievers []driving.ScoredRetriever
}

// NewCompositeRetriever creates a retriever over rs.
func NewCompositeRetriever(rs ...driving.ScoredRetriever) *CompositeRetriever {
	return &CompositeRetriever{retrievers: rs}
}

// Retrieve returns the k nearest chunks across all retrievers.
func (c *CompositeRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	scored, err := c.RetrieveScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

// RetrieveScored asks every retriever for k chunks and returns the k best overall.
func (c *CompositeRetriever) RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	var merged []domain.ScoredChunk
	for _, r := range c.retrievers {
		results, err := r.RetrieveScored(ctx, query, k)
		if err != nil {
			return nil, err
		}
		merged = append(merged, results...)
	}

	// merged is in retriever order then rank, so a stable sort breaks ties that way.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	seen := make(map[string]struct{}, len(merged))
	out := make([]domain.ScoredChunk, 0, min(k, len(merged)))
	for _, sc := range merged {
		if _, dup := seen[sc.ID]; dup {
			continue
		}
		seen[sc.ID] = struct{}{}
		out = append(out, sc)
		if len(out) == k {
			break
		}
	}
	return out, nil
}
