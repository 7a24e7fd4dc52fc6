package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

func chunk(ordinal int, text string) domain.Chunk {
	return domain.Chunk{
		ID:      "c" + string(rune('a'+ordinal)),
		Origin:  "doc",
		Ordinal: ordinal,
		Text:    text,
	}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx := New(3, "test-model")
	require.NoError(t, idx.Add(chunk(0, "east"), []float32{1, 0, 0}))
	require.NoError(t, idx.Add(chunk(1, "north"), []float32{0, 1, 0}))
	require.NoError(t, idx.Add(chunk(2, "north-east"), []float32{1, 1, 0}))
	require.NoError(t, idx.Add(chunk(3, "up"), []float32{0, 0, 1}))
	return idx
}

func TestIndex_Add_DimensionMismatch(t *testing.T) {
	idx := New(3, "m")

	err := idx.Add(chunk(0, "x"), []float32{1, 2})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_Add_CopiesVector(t *testing.T) {
	idx := New(2, "m")
	v := []float32{1, 0}
	require.NoError(t, idx.Add(chunk(0, "x"), v))

	v[0] = 0
	v[1] = 1

	results, err := idx.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestIndex_Search_NearestFirst(t *testing.T) {
	idx := buildIndex(t)

	results, err := idx.Search([]float32{1, 0.1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "east", results[0].Chunk.Text)
	assert.Equal(t, "north-east", results[1].Chunk.Text)
	assert.Equal(t, "north", results[2].Chunk.Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestIndex_Search_TiesKeepInsertionOrder(t *testing.T) {
	idx := New(2, "m")
	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Add(chunk(i, "same"), []float32{1, 1}))
	}

	results, err := idx.Search([]float32{1, 1}, 5)
	require.NoError(t, err)

	for i, r := range results {
		assert.Equal(t, i, r.Chunk.Ordinal)
	}
}

func TestIndex_Search_KLargerThanIndex(t *testing.T) {
	idx := buildIndex(t)

	results, err := idx.Search([]float32{0, 0, 1}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Equal(t, "up", results[0].Chunk.Text)
}

func TestIndex_Search_InvalidK(t *testing.T) {
	idx := buildIndex(t)

	for _, k := range []int{0, -1} {
		_, err := idx.Search([]float32{1, 0, 0}, k)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestIndex_Search_QueryDimensionMismatch(t *testing.T) {
	idx := buildIndex(t)

	_, err := idx.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_Search_Empty(t *testing.T) {
	idx := New(3, "m")

	results, err := idx.Search([]float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_Accessors(t *testing.T) {
	idx := buildIndex(t)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, "test-model", idx.Model())
	assert.Equal(t, 3, idx.Dimensions())
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "scaled", a: []float32{1, 1}, b: []float32{5, 5}, want: 1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}
