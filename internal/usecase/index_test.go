package usecase

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/internal/adapter/embedding"
	"finrag/internal/adapter/memstore"
	"finrag/internal/adapter/vectorindex"
	"finrag/internal/domain"
)

func TestRebuild_EmptyCorpus(t *testing.T) {
	f := newFixture(t)

	result, err := f.index.Rebuild(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, "nothing to index", result.Message)
	assert.Equal(t, int32(0), f.embedder.batches.Load())
}

func TestRebuild_PersistsAlignedUnitVectors(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a.csv", statementA)
	f.add(t, "b.csv", statementB)

	result, err := f.index.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 2, result.Chunks)

	art, err := f.store.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, result.Version, art.Version)
	require.Equal(t, len(art.Vectors), len(art.ChunkMap))
	assert.Equal(t, []string{"a.csv", "b.csv"}, art.ChunkMap)
	for _, v := range art.Vectors {
		assert.InDelta(t, 1.0, math.Sqrt(vectorindex.Dot(v, v)), 1e-6)
	}
}

func TestCurrent_RebuildsOnMiss(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a.csv", statementA)

	idx, err := f.index.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	// Published snapshots are reused without re-embedding.
	again, err := f.index.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, idx, again)
	assert.Equal(t, int32(1), f.embedder.batches.Load())

	require.NoError(t, f.index.Invalidate())
	_, err = f.store.LoadIndex()
	assert.ErrorIs(t, err, domain.ErrIndexMissing)

	idx, err = f.index.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, int32(2), f.embedder.batches.Load())
}

func TestCurrent_LoadsPersistedIndex(t *testing.T) {
	st := memstore.NewMemoryStore()
	first := newFixtureWith(t, st, embedding.NewHashEmbedder(1024))
	first.add(t, "a.csv", statementA)
	built, err := first.index.Rebuild(context.Background())
	require.NoError(t, err)

	second := newFixtureWith(t, st, embedding.NewHashEmbedder(1024))
	idx, err := second.index.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, built.Version, idx.Version())
	assert.Equal(t, int32(0), second.embedder.batches.Load())
}

func TestCurrent_RebuildsForDifferentEmbedder(t *testing.T) {
	st := memstore.NewMemoryStore()
	first := newFixtureWith(t, st, embedding.NewHashEmbedder(1024))
	first.add(t, "a.csv", statementA)
	_, err := first.index.Rebuild(context.Background())
	require.NoError(t, err)

	second := newFixtureWith(t, st, embedding.NewHashEmbedder(64))
	idx, err := second.index.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 64, idx.Dimension())
	assert.Equal(t, int32(1), second.embedder.batches.Load())
}

type corruptIndexStore struct {
	*memstore.MemoryStore
}

func (corruptIndexStore) LoadIndex() (domain.IndexArtifact, error) {
	return domain.IndexArtifact{}, domain.ErrPersistence
}

func TestCurrent_CorruptIndexIsRebuilt(t *testing.T) {
	st := memstore.NewMemoryStore()
	f := newFixtureWith(t, st, embedding.NewHashEmbedder(128))
	f.add(t, "a.csv", statementA)

	index := NewIndexUseCase(corruptIndexStore{st}, f.index.chunker, f.embedder)
	idx, err := index.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestCurrent_ConcurrentMissesRebuildOnce(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a.csv", statementA)
	f.add(t, "b.csv", statementB)
	f.embedder.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	versions := make([]string, 16)
	errs := make([]error, 16)
	for i := range versions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := f.index.Current(context.Background())
			errs[i] = err
			if err == nil {
				versions[i] = idx.Version()
			}
		}(i)
	}
	wg.Wait()

	for i := range versions {
		require.NoError(t, errs[i])
		assert.Equal(t, versions[0], versions[i])
	}
	assert.Equal(t, int32(1), f.embedder.batches.Load())
}

func TestRebuild_EmbeddingFailure(t *testing.T) {
	st := memstore.NewMemoryStore()
	f := newFixtureWith(t, st, failingEmbedder{embedding.NewHashEmbedder(8)})
	f.add(t, "a.csv", statementA)

	_, err := f.index.Rebuild(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingProvider)

	// Nothing half-built was persisted.
	_, err = st.LoadIndex()
	assert.ErrorIs(t, err, domain.ErrIndexMissing)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a.csv", statementA)

	stats, err := f.index.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Empty(t, stats.IndexVersion)

	built, err := f.index.Rebuild(context.Background())
	require.NoError(t, err)

	stats, err = f.index.Stats()
	require.NoError(t, err)
	assert.Equal(t, built.Version, stats.IndexVersion)
	assert.Equal(t, 1, stats.Chunks)
}
