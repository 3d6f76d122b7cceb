package hnsw

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func newTestIndex(t *testing.T, dims int) (*Index, string) {
	t.Helper()
	dir := t.TempDir()
	idx, err := Open(dir, dims)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx, dir
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", 3)
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), FileName), -1)
	assert.Error(t, err)
}

func TestIndex_SearchEmpty(t *testing.T) {
	idx, _ := newTestIndex(t, 3)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_AddSearchOrdering(t *testing.T) {
	idx, _ := newTestIndex(t, 3)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, domain.DocumentTag(1), []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, domain.ActivityTag(2), []float32{0.9, 0.1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.ActivityTag(1), hits[0].Tag)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, domain.ActivityTag(2), hits[1].Tag)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3, "k larger than the index returns everything")
}

func TestIndex_TiesBrokenByInsertionOrder(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, domain.DocumentTag(9), []float32{1, 1}))
	require.NoError(t, idx.Add(ctx, domain.ActivityTag(3), []float32{1, 1}))
	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 1}))

	hits, err := idx.Search(ctx, []float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, domain.DocumentTag(9), hits[0].Tag)
	assert.Equal(t, domain.ActivityTag(3), hits[1].Tag)
	assert.Equal(t, domain.ActivityTag(1), hits[2].Tag)
}

func TestIndex_AddReplacesExisting(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, domain.DocumentTag(1), []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, domain.DocumentTag(1), []float32{0, 1}))
	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	idx, _ := newTestIndex(t, 3)
	ctx := context.Background()

	err := idx.Add(ctx, domain.ActivityTag(1), []float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)

	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 0, 0}))
	_, err = idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestIndex_AdoptsFirstDimension(t *testing.T) {
	idx, _ := newTestIndex(t, 0)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 2, 3, 4}))
	assert.Equal(t, 4, idx.Dimensions())
}

func TestIndex_DeleteAll(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, domain.ActivityTag(2), []float32{0, 1}))

	require.NoError(t, idx.Delete(ctx, domain.ActivityTag(1)))
	require.NoError(t, idx.Delete(ctx, domain.ActivityTag(1)), "deleting a missing tag is not an error")
	require.NoError(t, idx.Delete(ctx, domain.ActivityTag(2)))
	assert.Equal(t, 0, idx.Len())

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Add(ctx, domain.ActivityTag(3), []float32{1, 0}))
	hits, err = idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.ActivityTag(3), hits[0].Tag)
}

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := Open(dir, 2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 1}))
	require.NoError(t, idx.Add(ctx, domain.DocumentTag(1), []float32{1, 1}))
	require.NoError(t, idx.Add(ctx, domain.DocumentTag(2), []float32{-1, 0}))
	require.NoError(t, idx.Close())

	_, err = os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)

	idx, err = Open(dir, 2)
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, 3, idx.Len())
	hits, err := idx.Search(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.ActivityTag(1), hits[0].Tag, "insertion order survives reopen")
	assert.Equal(t, domain.DocumentTag(1), hits[1].Tag)
}

func TestIndex_ReopenWithOtherDimension(t *testing.T) {
	dir := t.TempDir()

	idx, err := Open(dir, 2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), domain.ActivityTag(1), []float32{1, 1}))
	require.NoError(t, idx.Close())

	_, err = Open(dir, 3)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestIndex_GarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("definitely not an index file"), 0600))

	_, err := New(path, 2)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestIndex_FlushOnlyWhenDirty(t *testing.T) {
	idx, dir := newTestIndex(t, 2)
	ctx := context.Background()

	require.NoError(t, idx.Flush(ctx))
	_, err := os.Stat(filepath.Join(dir, FileName))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 0}))
	require.NoError(t, idx.Flush(ctx))
	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err)
}

func TestIndex_ClosedRejectsCalls(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	ctx := context.Background()
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	assert.Error(t, idx.Add(ctx, domain.ActivityTag(1), []float32{1, 0}))
	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.Error(t, err)
}

func randomVector(rng *rand.Rand, dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	return v
}

func TestIndex_OverwriteEveryEntry(t *testing.T) {
	ctx := context.Background()
	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		idx, _ := newTestIndex(t, 8)

		const n = 12
		for i := 1; i <= n; i++ {
			require.NoError(t, idx.Add(ctx, domain.DocumentTag(int64(i)), randomVector(rng, 8)))
		}

		latest := make(map[int64][]float32, n)
		for i := 1; i <= n; i++ {
			v := randomVector(rng, 8)
			latest[int64(i)] = v
			require.NoError(t, idx.Add(ctx, domain.DocumentTag(int64(i)), v), "seed %d", seed)
		}
		assert.Equal(t, n, idx.Len())

		for id, v := range latest {
			hits, err := idx.Search(ctx, v, 1)
			require.NoError(t, err, "seed %d", seed)
			require.Len(t, hits, 1)
			assert.Equal(t, domain.DocumentTag(id), hits[0].Tag, "seed %d", seed)
			assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
		}

		hits, err := idx.Search(ctx, latest[1], n*2)
		require.NoError(t, err)
		assert.Len(t, hits, n, "replaced vectors are not returned")
	}
}

func TestIndex_DeleteHalfThenAddAndSearch(t *testing.T) {
	ctx := context.Background()
	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		idx, dir := newTestIndex(t, 8)

		const n = 20
		for i := 1; i <= n; i++ {
			require.NoError(t, idx.Add(ctx, domain.ActivityTag(int64(i)), randomVector(rng, 8)))
		}
		for i := 2; i <= n; i += 2 {
			require.NoError(t, idx.Delete(ctx, domain.ActivityTag(int64(i))), "seed %d", seed)
		}
		assert.Equal(t, n/2, idx.Len())

		hits, err := idx.Search(ctx, randomVector(rng, 8), n)
		require.NoError(t, err, "seed %d", seed)
		require.Len(t, hits, n/2)
		for _, h := range hits {
			assert.Equal(t, int64(1), h.Tag.ID%2, "deleted tag %s returned", h.Tag)
		}

		added := make(map[int64][]float32)
		for i := n + 1; i <= n+5; i++ {
			v := randomVector(rng, 8)
			added[int64(i)] = v
			require.NoError(t, idx.Add(ctx, domain.ActivityTag(int64(i)), v), "seed %d", seed)
		}
		for id, v := range added {
			hits, err := idx.Search(ctx, v, 1)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, domain.ActivityTag(id), hits[0].Tag, "seed %d", seed)
		}

		require.NoError(t, idx.Close())
		reopened, err := Open(dir, 8)
		require.NoError(t, err)
		assert.Equal(t, n/2+5, reopened.Len())
		for id, v := range added {
			hits, err := reopened.Search(ctx, v, 1)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, domain.ActivityTag(id), hits[0].Tag)
		}
		require.NoError(t, reopened.Close())
	}
}

func TestIndex_RejectsZeroVector(t *testing.T) {
	idx, _ := newTestIndex(t, 3)

	err := idx.Add(context.Background(), domain.ActivityTag(1), []float32{0, 0, 0})
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	assert.Equal(t, 0, idx.Len())
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{2, 0}, []float32{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 0}))
}
