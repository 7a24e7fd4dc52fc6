package driving

import (
	"context"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// Retriever returns the chunks most relevant to a query, nearest first.
type Retriever interface {
	// Retrieve returns at most k chunks. k must be positive.
	Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error)
}

// ScoredRetriever is a Retriever that also exposes similarity scores, so
// results from several retrievers can be ranked together.
type ScoredRetriever interface {
	Retriever

	// RetrieveScored returns at most k chunks with their scores, highest first.
	RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}
