package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

// testEmbedder maps known texts to fixed vectors.
type testEmbedder struct {
	vectors     map[string][]float32
	shouldError bool
}

func (m *testEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.shouldError {
		return nil, errors.New("embedder error")
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func setupTestIndex(t *testing.T, embedder Embedder) *BadgerIndex {
	idx, err := NewBadgerIndex(cfg.IndexConfig{
		Name:      "test-index",
		Dimension: 3,
		Metric:    "cosine",
		BadgerDir: t.TempDir(),
	}, embedder, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestUpsertAndSearch(t *testing.T) {
	embedder := &testEmbedder{vectors: map[string][]float32{
		"golang backend":    {1, 0, 0},
		"react frontend":    {0, 1, 0},
		"devops kubernetes": {0, 0, 1},
		"go services":       {0.9, 0.1, 0},
	}}
	idx := setupTestIndex(t, embedder)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", "golang backend", map[string]string{"filename": "a.pdf"}))
	require.NoError(t, idx.Upsert(ctx, "b", "react frontend", map[string]string{"filename": "b.pdf"}))
	require.NoError(t, idx.Upsert(ctx, "c", "devops kubernetes", map[string]string{"filename": "c.pdf"}))

	hits, err := idx.Search(ctx, "go services", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// closest vector first
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "a.pdf", hits[0].Metadata["filename"])
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
	assert.InDelta(t, 1.0, hits[0].Score, 0.02)
}

func TestSearchTruncatesToTopK(t *testing.T) {
	idx := setupTestIndex(t, &testEmbedder{})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, idx.Upsert(ctx, id, "text "+id, nil))
	}

	hits, err := idx.Search(ctx, "query", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestUpsertIsIdempotent(t *testing.T) {
	embedder := &testEmbedder{vectors: map[string][]float32{
		"v1": {1, 0, 0},
		"v2": {0, 1, 0},
	}}
	idx := setupTestIndex(t, embedder)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", "v1", map[string]string{"filename": "old.pdf"}))
	require.NoError(t, idx.Upsert(ctx, "a", "v2", map[string]string{"filename": "new.pdf"}))

	hits, err := idx.Search(ctx, "v2", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "new.pdf", hits[0].Metadata["filename"])
	assert.InDelta(t, 1.0, hits[0].Score, 0.001)
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	embedder := &testEmbedder{vectors: map[string][]float32{
		"short": {1, 0},
	}}
	idx := setupTestIndex(t, embedder)

	err := idx.Upsert(context.Background(), "a", "short", nil)
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := setupTestIndex(t, &testEmbedder{})

	hits, err := idx.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNormalize(t *testing.T) {
	out := normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 0.001)
	assert.InDelta(t, 0.8, out[1], 0.001)

	// zero vector stays untouched
	zero := normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
