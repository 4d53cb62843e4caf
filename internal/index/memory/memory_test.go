package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/docsense-ai/docsense/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, docID string, vector []float32) index.Record {
	return index.Record{
		ID:         id,
		DocumentID: docID,
		Source:     docID + ".txt",
		Content:    "content of " + id,
		Vector:     vector,
	}
}

func TestQuery_OrdersByScore(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, []index.Record{
		record("a", "doc-1", []float32{1, 0, 0}),
		record("b", "doc-1", []float32{0.7, 0.7, 0}),
		record("c", "doc-2", []float32{0, 1, 0}),
	}))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 10, index.Filter{})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, "c", results[2].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.InDelta(t, 0.0, float64(results[2].Score), 1e-6)
}

func TestQuery_StableOrderOnEqualScores(t *testing.T) {
	ctx := context.Background()
	idx := New()

	// r-0 and r-2 share a vector, so their scores are identical; ranking
	// must keep r-0 ahead of r-2.
	high := []float32{0.9, 0.43589, 0}
	require.NoError(t, idx.Upsert(ctx, []index.Record{
		record("r-0", "doc-1", high),
		record("r-1", "doc-1", []float32{0.5, 0.866025, 0}),
		record("r-2", "doc-2", high),
		record("r-3", "doc-2", []float32{0.3, 0.953939, 0}),
	}))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 10, index.Filter{})

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "r-0", results[0].ID)
	assert.Equal(t, "r-2", results[1].ID)
	assert.Equal(t, "r-1", results[2].ID)
	assert.Equal(t, "r-3", results[3].ID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestQuery_FilterAppliesBeforeRanking(t *testing.T) {
	ctx := context.Background()
	idx := New()

	// doc-2 records score higher than any doc-1 record; with the filter
	// applied before ranking, topK=1 must still return a doc-1 record.
	require.NoError(t, idx.Upsert(ctx, []index.Record{
		record("a", "doc-1", []float32{0.5, 0.5, 0.7}),
		record("b", "doc-2", []float32{1, 0, 0}),
	}))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 1, index.Filter{DocumentID: "doc-1"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestQuery_CapsTopK(t *testing.T) {
	ctx := context.Background()
	idx := New()

	records := make([]index.Record, 0, index.MaxTopK+20)
	for i := 0; i < index.MaxTopK+20; i++ {
		records = append(records, record(fmt.Sprintf("r-%03d", i), "doc-1", []float32{1, float32(i) * 0.001, 0}))
	}
	require.NoError(t, idx.Upsert(ctx, records))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, index.MaxTopK+20, index.Filter{})

	require.NoError(t, err)
	assert.Len(t, results, index.MaxTopK)
}

func TestUpsert_ReplacesExistingID(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, []index.Record{record("a", "doc-1", []float32{1, 0, 0})}))
	require.NoError(t, idx.Upsert(ctx, []index.Record{record("a", "doc-1", []float32{0, 1, 0})}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.VectorCount)

	results, err := idx.Query(ctx, []float32{0, 1, 0}, 1, index.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, []index.Record{
		record("a", "doc-1", []float32{1, 0, 0}),
		record("b", "doc-1", []float32{0, 1, 0}),
	}))
	require.NoError(t, idx.Delete(ctx, []string{"a"}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.VectorCount)
}

func TestDeleteByFilter(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, []index.Record{
		record("a", "doc-1", []float32{1, 0, 0}),
		record("b", "doc-1", []float32{0, 1, 0}),
		record("c", "doc-2", []float32{0, 0, 1}),
	}))
	require.NoError(t, idx.DeleteByFilter(ctx, index.Filter{DocumentID: "doc-1"}))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 10, index.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].ID)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	idx := New()

	require.NoError(t, idx.Upsert(ctx, []index.Record{record("a", "doc-1", []float32{1, 0, 0})}))
	require.NoError(t, idx.DeleteAll(ctx))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.VectorCount)
	assert.Equal(t, 0, stats.Dimensions)
}

func TestCosineSimilarity_Clamps(t *testing.T) {
	// Opposite vectors clamp to 0 rather than going negative.
	assert.Equal(t, float32(0), cosineSimilarity([]float32{1, 0}, []float32{-1, 0}))
	assert.Equal(t, float32(0), cosineSimilarity([]float32{1, 0}, []float32{0, 0}))
	assert.Equal(t, float32(0), cosineSimilarity([]float32{1, 0}, []float32{1}))
}

func TestClampTopK(t *testing.T) {
	assert.Equal(t, 1, index.ClampTopK(0))
	assert.Equal(t, 1, index.ClampTopK(-5))
	assert.Equal(t, 50, index.ClampTopK(50))
	assert.Equal(t, index.MaxTopK, index.ClampTopK(500))
}
