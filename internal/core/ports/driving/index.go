package driving

import (
	"context"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// IndexHandle is a built or loaded vector index ready for queries.
type IndexHandle interface {
	ScoredRetriever

	// Len returns the number of indexed chunks.
	Len() int

	// Dimensions returns the embedding size.
	Dimensions() int

	// Model returns the embedding model that produced the vectors.
	Model() string
}

// IndexService builds, persists and loads named vector indexes.
type IndexService interface {
	// Build chunks and embeds docs into an in-memory index.
	Build(ctx context.Context, docs []domain.SourceDocument) (IndexHandle, error)

	// Persist writes both index artifacts under name, all or nothing.
	// Failures return a *domain.StorageWriteError.
	Persist(ctx context.Context, handle IndexHandle, name string) error

	// Load reads the index stored under name. Returns domain.ErrNotFound when
	// either artifact is missing and domain.ErrCorruptIndex when they do not decode.
	Load(ctx context.Context, name string) (IndexHandle, error)

	// LoadOrBuild loads name, rebuilding and persisting it from docs when the
	// stored index is missing or corrupt.
	LoadOrBuild(ctx context.Context, name string, docs []domain.SourceDocument) (IndexHandle, error)
}
