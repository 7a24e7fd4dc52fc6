package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/local"
	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/vectorindex"
)

var programDocs = []domain.SourceDocument{
	{Origin: "https://ours.example/course", Text: "Course: Data Science. Fee: 1.5L. Duration: 11 months."},
	{Origin: "brochure.pdf", Text: "Faculty from leading institutes. Weekend live classes. Capstone project with industry mentors."},
}

func overlapOf(n int) *int { return &n }

func TestIndexService_ChunkOverlap(t *testing.T) {
	doc := []domain.SourceDocument{{Origin: "fees.txt", Text: "abcdefghijklmnopqrst"}}

	tests := []struct {
		name    string
		overlap *int
		want    []string
	}{
		{name: "zero disables overlap", overlap: overlapOf(0), want: []string{"abcdefghij", "klmnopqrst"}},
		{name: "explicit overlap", overlap: overlapOf(5), want: []string{"abcdefghij", "fghijklmno", "klmnopqrst"}},
		// The chunker default of 200 is clamped to a quarter of the chunk size.
		{name: "unset uses default", overlap: nil, want: []string{"abcdefghij", "ijklmnopqr", "qrst"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIndexService(memory.NewBlobStore(), newFakeEmbedder(),
				IndexConfig{ChunkSize: 10, ChunkOverlap: tt.overlap})

			handle, err := svc.Build(context.Background(), doc)
			require.NoError(t, err)
			require.Equal(t, len(tt.want), handle.Len())

			chunks, err := handle.Retrieve(context.Background(), "anything", len(tt.want))
			require.NoError(t, err)
			texts := make([]string, len(chunks))
			for i, c := range chunks {
				texts[i] = c.Text
			}
			assert.ElementsMatch(t, tt.want, texts)
		})
	}
}

func TestIndexService_BuildAndRetrieve(t *testing.T) {
	svc := NewIndexService(memory.NewBlobStore(), newFakeEmbedder(), IndexConfig{ChunkSize: 40, ChunkOverlap: overlapOf(10)})

	handle, err := svc.Build(context.Background(), programDocs)
	require.NoError(t, err)
	assert.Greater(t, handle.Len(), 2)
	assert.Equal(t, 128, handle.Dimensions())
	assert.Equal(t, "fake-embed", handle.Model())

	chunks, err := handle.Retrieve(context.Background(), "fee", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Fee")
}

func TestIndexService_Build_Batches(t *testing.T) {
	embedder := newFakeEmbedder()
	svc := NewIndexService(memory.NewBlobStore(), embedder, IndexConfig{ChunkSize: 10, ChunkOverlap: overlapOf(2), BatchSize: 3})

	handle, err := svc.Build(context.Background(), programDocs[:1])
	require.NoError(t, err)

	total := 0
	for _, n := range embedder.batchSizes {
		assert.LessOrEqual(t, n, 3)
		total += n
	}
	assert.Equal(t, handle.Len(), total)
}

func TestIndexService_Build_SkipsUnusableDocs(t *testing.T) {
	svc := NewIndexService(memory.NewBlobStore(), newFakeEmbedder(), IndexConfig{})

	_, err := svc.Build(context.Background(), []domain.SourceDocument{
		{Origin: "a", Text: "   "},
		{Origin: "b", Text: FetchErrorPrefix + "timeout"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexService_Build_RejectsShortEmbeddingResponse(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.short = true
	svc := NewIndexService(memory.NewBlobStore(), embedder, IndexConfig{})

	_, err := svc.Build(context.Background(), programDocs)

	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestIndexService_Build_EmbedderError(t *testing.T) {
	embedder := newFakeEmbedder()
	embedder.err = errors.New("503 service unavailable")
	svc := NewIndexService(memory.NewBlobStore(), embedder, IndexConfig{})

	_, err := svc.Build(context.Background(), programDocs)

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "embed", genErr.Op)
}

func TestIndexHandle_Retrieve_InvalidK(t *testing.T) {
	svc := NewIndexService(memory.NewBlobStore(), newFakeEmbedder(), IndexConfig{})
	handle, err := svc.Build(context.Background(), programDocs)
	require.NoError(t, err)

	_, err = handle.Retrieve(context.Background(), "fee", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexService_PersistLoad_EquivalentResults(t *testing.T) {
	blobs := memory.NewBlobStore()
	embedder := newFakeEmbedder()
	svc := NewIndexService(blobs, embedder, IndexConfig{ChunkSize: 30, ChunkOverlap: overlapOf(5)})
	ctx := context.Background()

	built, err := svc.Build(ctx, programDocs)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, built, "ours_example_course"))

	assert.Equal(t, []string{
		"vectorstores/ours_example_course/index.json",
		"vectorstores/ours_example_course/index.vec",
	}, blobs.Keys("vectorstores/"))

	loaded, err := svc.Load(ctx, "ours_example_course")
	require.NoError(t, err)
	assert.Equal(t, built.Len(), loaded.Len())

	for _, q := range []string{"fee", "faculty mentors", "duration months", "weekend"} {
		want, err := built.Retrieve(ctx, q, 3)
		require.NoError(t, err)
		got, err := loaded.Retrieve(ctx, q, 3)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}

func TestIndexService_PersistLoad_LocalDisk(t *testing.T) {
	blobs, err := local.NewBlobStore(t.TempDir())
	require.NoError(t, err)
	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	ctx := context.Background()

	built, err := svc.Build(ctx, programDocs)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, built, "kb"))
	// Overwrite with a second generation.
	require.NoError(t, svc.Persist(ctx, built, "kb"))

	loaded, err := svc.Load(ctx, "kb")
	require.NoError(t, err)
	assert.Equal(t, built.Len(), loaded.Len())
}

func TestIndexService_Load_Missing(t *testing.T) {
	blobs := memory.NewBlobStore()
	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	ctx := context.Background()

	_, err := svc.Load(ctx, "never_built")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Metadata without vectors is also missing.
	require.NoError(t, blobs.Put(ctx, "vectorstores/half/index.json", []byte(`{}`)))
	_, err = svc.Load(ctx, "half")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexService_Load_Corrupt(t *testing.T) {
	blobs := memory.NewBlobStore()
	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	ctx := context.Background()

	built, err := svc.Build(ctx, programDocs)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, built, "a"))
	require.NoError(t, svc.Persist(ctx, built, "b"))

	// Pair artifacts from two different generations.
	vec, err := blobs.Get(ctx, "vectorstores/b/index.vec")
	require.NoError(t, err)
	require.NoError(t, blobs.Put(ctx, "vectorstores/a/index.vec", vec))

	_, err = svc.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)

	require.NoError(t, blobs.Put(ctx, "vectorstores/b/index.vec", []byte("garbage")))
	_, err = svc.Load(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
}

func TestIndexService_Load_ModelMismatchIsCorrupt(t *testing.T) {
	blobs := memory.NewBlobStore()
	ctx := context.Background()

	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	built, err := svc.Build(ctx, programDocs)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, built, "kb"))

	other := newFakeEmbedder()
	other.model = "other-model"
	_, err = NewIndexService(blobs, other, IndexConfig{}).Load(ctx, "kb")
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
}

func TestIndexService_Persist_FailureLeavesNothing(t *testing.T) {
	for _, failing := range []string{vectorindex.VectorsFile, vectorindex.MetadataFile} {
		t.Run(failing, func(t *testing.T) {
			blobs := memory.NewBlobStore()
			svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
			ctx := context.Background()

			built, err := svc.Build(ctx, programDocs)
			require.NoError(t, err)
			require.NoError(t, svc.Persist(ctx, built, "kb"))

			blobs.FailPut = func(key string) error {
				if key == "vectorstores/kb/"+failing {
					return errors.New("bucket not writable")
				}
				return nil
			}

			err = svc.Persist(ctx, built, "kb")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrStorageWrite)
			assert.Empty(t, blobs.Keys("vectorstores/kb/"))

			_, err = svc.Load(ctx, "kb")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestIndexService_Persist_StagingFailure(t *testing.T) {
	blobs := memory.NewBlobStore()
	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	ctx := context.Background()

	built, err := svc.Build(ctx, programDocs)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, built, "kb"))

	blobs.FailPut = func(key string) error {
		if strings.Contains(key, ".staging-") && strings.HasSuffix(key, vectorindex.MetadataFile) {
			return errors.New("quota exceeded")
		}
		return nil
	}

	err = svc.Persist(ctx, built, "kb")
	assert.ErrorIs(t, err, domain.ErrStorageWrite)

	// The previous generation is untouched and staging is gone.
	assert.Len(t, blobs.Keys("vectorstores/kb/"), 2)
	_, err = svc.Load(ctx, "kb")
	assert.NoError(t, err)
}

func TestIndexService_Persist_Concurrent(t *testing.T) {
	blobs := memory.NewBlobStore()
	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	ctx := context.Background()

	built, err := svc.Build(ctx, programDocs)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Persist(ctx, built, "kb")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	_, err = svc.Load(ctx, "kb")
	assert.NoError(t, err)
	assert.Len(t, blobs.Keys("vectorstores/kb/"), 2)
}

func TestIndexService_Persist_Validation(t *testing.T) {
	svc := NewIndexService(memory.NewBlobStore(), newFakeEmbedder(), IndexConfig{})
	built, err := svc.Build(context.Background(), programDocs)
	require.NoError(t, err)

	for _, name := range []string{"", "a/b", ".."} {
		assert.ErrorIs(t, svc.Persist(context.Background(), built, name), domain.ErrInvalidInput, name)
	}
	assert.ErrorIs(t, svc.Persist(context.Background(), &staticHandle{}, "kb"), domain.ErrInvalidInput)
}

func TestIndexService_LoadOrBuild(t *testing.T) {
	blobs := memory.NewBlobStore()
	embedder := newFakeEmbedder()
	svc := NewIndexService(blobs, embedder, IndexConfig{})
	ctx := context.Background()

	handle, err := svc.LoadOrBuild(ctx, "kb", programDocs)
	require.NoError(t, err)
	assert.Len(t, blobs.Keys("vectorstores/kb/"), 2)
	builds := len(embedder.batchSizes)

	again, err := svc.LoadOrBuild(ctx, "kb", programDocs)
	require.NoError(t, err)
	assert.Equal(t, handle.Len(), again.Len())
	assert.Equal(t, builds, len(embedder.batchSizes), "second call should load, not rebuild")
}

func TestIndexService_LoadOrBuild_RebuildsCorrupt(t *testing.T) {
	blobs := memory.NewBlobStore()
	svc := NewIndexService(blobs, newFakeEmbedder(), IndexConfig{})
	ctx := context.Background()

	require.NoError(t, blobs.Put(ctx, "vectorstores/kb/index.json", []byte("{")))
	require.NoError(t, blobs.Put(ctx, "vectorstores/kb/index.vec", []byte("BRFV")))

	handle, err := svc.LoadOrBuild(ctx, "kb", programDocs)
	require.NoError(t, err)

	loaded, err := svc.Load(ctx, "kb")
	require.NoError(t, err)
	assert.Equal(t, handle.Len(), loaded.Len())
}

func TestIndexService_LoadOrBuild_NoDocs(t *testing.T) {
	svc := NewIndexService(memory.NewBlobStore(), newFakeEmbedder(), IndexConfig{})

	_, err := svc.LoadOrBuild(context.Background(), "kb", nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrKnowledgeBaseUnavailable)
}

// staticHandle is an IndexHandle that IndexService did not create.
type staticHandle struct{ staticRetriever }

func (h *staticHandle) Len() int        { return len(h.chunks) }
func (h *staticHandle) Dimensions() int { return 0 }
func (h *staticHandle) Model() string   { return fmt.Sprintf("static-%d", len(h.chunks)) }

func TestIndexService_NoEmbedder(t *testing.T) {
	svc := NewIndexService(memory.NewBlobStore(), nil, IndexConfig{})

	_, err := svc.Build(context.Background(), programDocs)
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = svc.Load(context.Background(), "kb")
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
