package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"finrag/internal/adapter/vectorindex"
	"finrag/internal/domain"
	"finrag/internal/logger"
	"finrag/internal/port"
)

// IndexStore is the persistence needed by the index: narrations to build from
// and a place for the built artifact.
type IndexStore interface {
	ListNarrations() ([]domain.Narration, error)
	ListFilenames() ([]string, error)
	port.IndexArtifactStore
}

// IndexUseCase owns the current vector index. Searches read an immutable
// snapshot without locking; rebuilds are serialized by mu and publish a new
// snapshot only after it has been persisted.
type IndexUseCase struct {
	store    IndexStore
	chunker  port.Chunker
	embedder port.Embedder

	current atomic.Pointer[vectorindex.Flat]
	mu      sync.Mutex

	newVersion func() string
	now        func() time.Time
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(store IndexStore, chunker port.Chunker, embedder port.Embedder) *IndexUseCase {
	return &IndexUseCase{
		store:      store,
		chunker:    chunker,
		embedder:   embedder,
		newVersion: uuid.NewString,
		now:        time.Now,
	}
}

// BuildResult describes one rebuild.
type BuildResult struct {
	Version   string
	Documents int
	Chunks    int
	Duration  time.Duration
	Message   string
}

// Empty reports whether the build found nothing to index.
func (r *BuildResult) Empty() bool {
	return r.Chunks == 0
}

// Rebuild runs a full corpus pass and publishes the result.
func (u *IndexUseCase) Rebuild(ctx context.Context) (*BuildResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rebuildLocked(ctx)
}

func (u *IndexUseCase) rebuildLocked(ctx context.Context) (*BuildResult, error) {
	start := u.now()

	narrations, err := u.store.ListNarrations()
	if err != nil {
		return nil, fmt.Errorf("failed to list narrations: %w", err)
	}

	var (
		texts    []string
		chunkMap []string
	)
	for _, n := range narrations {
		for _, c := range u.chunker.Chunk(n.Filename, n.Text) {
			texts = append(texts, u.chunker.Preprocess(c.Text))
			chunkMap = append(chunkMap, c.Filename)
		}
	}

	art := domain.IndexArtifact{
		Version:   u.newVersion(),
		Model:     u.embedder.ModelName(),
		Dimension: u.embedder.Dimension(),
		ChunkMap:  chunkMap,
		BuiltAt:   start,
	}

	if len(texts) > 0 {
		vectors, err := u.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrEmbeddingProvider, len(vectors), len(texts))
		}
		for _, v := range vectors {
			vectorindex.L2Normalize(v)
		}
		art.Vectors = vectors
	}

	flat, err := vectorindex.New(art)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}
	if err := u.store.SaveIndex(art); err != nil {
		return nil, err
	}
	u.current.Store(flat)

	result := &BuildResult{
		Version:   art.Version,
		Documents: len(narrations),
		Chunks:    len(chunkMap),
		Duration:  u.now().Sub(start),
	}
	if result.Empty() {
		result.Message = "nothing to index"
	} else {
		result.Message = fmt.Sprintf("indexed %d chunks from %d documents", result.Chunks, result.Documents)
	}
	logger.Debug("index %s: %s", art.Version, result.Message)
	return result, nil
}

// Current returns a searchable snapshot. A missing or empty index is loaded
// from the store or rebuilt, once, before returning.
func (u *IndexUseCase) Current(ctx context.Context) (*vectorindex.Flat, error) {
	seen := u.current.Load()
	if !seen.Empty() {
		return seen, nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	// Another caller published while we waited.
	if cur := u.current.Load(); cur != seen {
		return cur, nil
	}

	if seen == nil {
		if flat := u.loadPersisted(); !flat.Empty() {
			u.current.Store(flat)
			return flat, nil
		}
	}

	logger.Info("index missing or empty, rebuilding")
	if _, err := u.rebuildLocked(ctx); err != nil {
		return nil, err
	}
	return u.current.Load(), nil
}

// loadPersisted returns the stored index when it is usable with the current
// embedder, or nil.
func (u *IndexUseCase) loadPersisted() *vectorindex.Flat {
	art, err := u.store.LoadIndex()
	switch {
	case errors.Is(err, domain.ErrIndexMissing):
		return nil
	case err != nil:
		logger.Warn("discarding unreadable index: %v", err)
		return nil
	}

	if art.Model != u.embedder.ModelName() || art.Dimension != u.embedder.Dimension() {
		logger.Info("stored index was built with %s/%d, current embedder is %s/%d",
			art.Model, art.Dimension, u.embedder.ModelName(), u.embedder.Dimension())
		return nil
	}

	flat, err := vectorindex.New(art)
	if err != nil {
		logger.Warn("discarding corrupt index: %v", err)
		return nil
	}
	return flat
}

// Invalidate drops the current and persisted index. The next search rebuilds.
func (u *IndexUseCase) Invalidate() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.store.DeleteIndex(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	u.current.Store(nil)
	return nil
}

// Stats reports the corpus size and the index currently published or
// persisted, without triggering a rebuild.
func (u *IndexUseCase) Stats() (domain.Stats, error) {
	names, err := u.store.ListFilenames()
	if err != nil {
		return domain.Stats{}, err
	}
	stats := domain.Stats{Documents: len(names)}

	flat := u.current.Load()
	if flat == nil {
		u.mu.Lock()
		flat = u.loadPersisted()
		u.mu.Unlock()
	}
	if flat != nil {
		stats.IndexVersion = flat.Version()
		stats.IndexedAt = flat.BuiltAt()
		stats.Chunks = flat.Len()
	}
	return stats, nil
}
