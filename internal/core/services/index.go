package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
	"github.com/custodia-labs/briefly/internal/postprocessors/chunker"
	"github.com/custodia-labs/briefly/internal/vectorindex"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Default index configuration values.
const (
	DefaultIndexPrefix    = "vectorstores"
	DefaultEmbedBatchSize = 64
)

// IndexConfig holds configuration for the index service.
type IndexConfig struct {
	// Prefix is the blob key prefix for persisted indexes (default: "vectorstores").
	Prefix string

	// ChunkSize is the chunk length in characters (default: 1000).
	ChunkSize int

	// ChunkOverlap is the characters shared by consecutive chunks.
	// nil uses the chunker default of 200; zero disables overlap.
	ChunkOverlap *int

	// BatchSize is the number of chunks sent per embedding call (default: 64).
	BatchSize int
}

// IndexService builds vector indexes and persists them to a blob store.
type IndexService struct {
	blobs     driven.BlobStore
	embedder  driven.EmbeddingService
	chunker   *chunker.Processor
	prefix    string
	batchSize int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewIndexService creates a new index service.
func NewIndexService(blobs driven.BlobStore, embedder driven.EmbeddingService, cfg IndexConfig) *IndexService {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultIndexPrefix
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}

	var opts []chunker.Option
	if cfg.ChunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.ChunkOverlap != nil && *cfg.ChunkOverlap >= 0 {
		opts = append(opts, chunker.WithOverlap(*cfg.ChunkOverlap))
	}

	return &IndexService{
		blobs:     blobs,
		embedder:  embedder,
		chunker:   chunker.New(opts...),
		prefix:    strings.Trim(cfg.Prefix, "/"),
		batchSize: cfg.BatchSize,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Build chunks and embeds docs. Documents that are empty or hold a fetch
// failure placeholder are skipped.
func (s *IndexService) Build(ctx context.Context, docs []domain.SourceDocument) (driving.IndexHandle, error) {
	logger.Section("Index Build")
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		if doc.IsEmpty() || doc.IsFetchError() {
			logger.Debug("skipping %s: no usable text", doc.Origin)
			continue
		}
		docChunks, err := s.chunker.Process(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.Origin, err)
		}
		logger.Debug("%s: %d chunks", doc.Origin, len(docChunks))
		chunks = append(chunks, docChunks...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text to index", domain.ErrInvalidInput)
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	idx := vectorindex.New(len(vectors[0]), s.embedder.ModelName())
	for i, chunk := range chunks {
		if err := idx.Add(chunk, vectors[i]); err != nil {
			return nil, domain.NewGenerationError("embed", err)
		}
	}

	logger.Info("built index: %d chunks, %d dimensions", idx.Len(), idx.Dimensions())
	return &indexHandle{idx: idx, embedder: s.embedder}, nil
}

func (s *IndexService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, domain.NewGenerationError("embed", err)
		}
		if len(batch) != len(texts) {
			return nil, domain.NewGenerationError("embed",
				fmt.Errorf("got %d vectors for %d chunks", len(batch), len(texts)))
		}
		vectors = append(vectors, batch...)
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil, domain.NewGenerationError("embed", errors.New("empty embedding vector"))
	}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, domain.NewGenerationError("embed",
				fmt.Errorf("vector %d has %d dimensions, want %d", i, len(v), dims))
		}
	}
	return vectors, nil
}

// Persist writes the index under name. Both artifacts are staged first, then
// copied into place with the metadata file last. On any failure every key
// written is removed.
func (s *IndexService) Persist(ctx context.Context, handle driving.IndexHandle, name string) error {
	h, ok := handle.(*indexHandle)
	if !ok {
		return fmt.Errorf("%w: index handle of type %T", domain.ErrInvalidInput, handle)
	}
	if err := validateIndexName(name); err != nil {
		return err
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	generation := uuid.NewString()
	vectors, meta, err := h.idx.Encode(generation)
	if err != nil {
		return domain.NewStorageWriteError(s.key(name, vectorindex.VectorsFile), err)
	}

	liveVec := s.key(name, vectorindex.VectorsFile)
	liveMeta := s.key(name, vectorindex.MetadataFile)
	stageDir := path.Join(s.prefix, name, ".staging-"+generation)
	stageVec := path.Join(stageDir, vectorindex.VectorsFile)
	stageMeta := path.Join(stageDir, vectorindex.MetadataFile)

	logger.Debug("persisting index %s generation %s", name, generation)

	steps := []struct {
		key string
		run func() error
	}{
		{stageVec, func() error { return s.blobs.Put(ctx, stageVec, vectors) }},
		{stageMeta, func() error { return s.blobs.Put(ctx, stageMeta, meta) }},
		{liveMeta, func() error { return s.blobs.Delete(ctx, liveMeta) }},
		{liveVec, func() error { return s.blobs.Copy(ctx, stageVec, liveVec) }},
		{liveMeta, func() error { return s.blobs.Copy(ctx, stageMeta, liveMeta) }},
	}
	for i, step := range steps {
		if err := step.run(); err != nil {
			// Nothing live has been touched before the third step.
			if i >= 2 {
				s.deleteKeys(ctx, liveMeta, liveVec)
			}
			s.deleteKeys(ctx, stageVec, stageMeta)
			return domain.NewStorageWriteError(step.key, err)
		}
	}

	s.deleteKeys(ctx, stageVec, stageMeta)
	logger.Info("persisted index %s (%d chunks)", name, h.Len())
	return nil
}

// Load reads the index stored under name.
func (s *IndexService) Load(ctx context.Context, name string) (driving.IndexHandle, error) {
	if err := validateIndexName(name); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	meta, err := s.get(ctx, s.key(name, vectorindex.MetadataFile))
	if err != nil {
		return nil, err
	}
	vectors, err := s.get(ctx, s.key(name, vectorindex.VectorsFile))
	if err != nil {
		return nil, err
	}

	idx, err := vectorindex.Decode(vectors, meta)
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", name, err)
	}
	if model := s.embedder.ModelName(); idx.Model() != "" && model != "" && idx.Model() != model {
		return nil, fmt.Errorf("load index %s: %w: built with %s, embedder is %s",
			name, domain.ErrCorruptIndex, idx.Model(), model)
	}

	logger.Debug("loaded index %s generation %s (%d chunks)", name, idx.Generation(), idx.Len())
	return &indexHandle{idx: idx, embedder: s.embedder}, nil
}

// LoadOrBuild loads name, or rebuilds it from docs when it is missing or corrupt.
func (s *IndexService) LoadOrBuild(
	ctx context.Context, name string, docs []domain.SourceDocument,
) (driving.IndexHandle, error) {
	handle, err := s.Load(ctx, name)
	if err == nil {
		return handle, nil
	}
	if !domain.IsIndexUnavailable(err) {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrKnowledgeBaseUnavailable, err)
	}

	logger.Info("index %s unavailable (%v), rebuilding", name, err)
	handle, err = s.Build(ctx, docs)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(ctx, handle, name); err != nil {
		return nil, err
	}
	return handle, nil
}

func (s *IndexService) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("index artifact %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *IndexService) deleteKeys(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			logger.Warn("cleanup %s: %v", key, err)
		}
	}
}

func (s *IndexService) key(name, file string) string {
	return path.Join(s.prefix, name, file)
}

func (s *IndexService) lockFor(name string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

func validateIndexName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: index name %q", domain.ErrInvalidInput, name)
	}
	return nil
}

// indexHandle pairs an index with the embedder used to encode queries.
type indexHandle struct {
	idx      *vectorindex.Index
	embedder driven.EmbeddingService
}

// Retrieve embeds query and returns the k nearest chunks.
func (h *indexHandle) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	scored, err := h.RetrieveScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

// RetrieveScored embeds query and returns the k nearest chunks with their
// cosine similarity.
func (h *indexHandle) RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	vector, err := h.embedder.Embed(ctx, query)
	if err != nil {
		return nil, domain.NewGenerationError("embed query", err)
	}

	results, err := h.idx.Search(vector, k)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredChunk, len(results))
	for i, r := range results {
		scored[i] = domain.ScoredChunk{Chunk: r.Chunk, Score: r.Score}
	}
	return scored, nil
}

func (h *indexHandle) Len() int        { return h.idx.Len() }
func (h *indexHandle) Dimensions() int { return h.idx.Dimensions() }
func (h *indexHandle) Model() string   { return h.idx.Model() }
