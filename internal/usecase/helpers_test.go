package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"finrag/internal/adapter/cache"
	"finrag/internal/adapter/chunker"
	"finrag/internal/adapter/embedding"
	"finrag/internal/adapter/extract"
	"finrag/internal/adapter/memstore"
	"finrag/internal/adapter/narration"
	"finrag/internal/domain"
	"finrag/internal/port"
)

const statementA = "Date,Description,Debit,Credit,Balance\n17/05/18,ATM withdrawal,100,,900\n"
const statementB = "Date,Description,Debit,Credit,Balance\n18/05/18,Salary credit,,500,1400\n"

// countingEmbedder wraps an embedder and counts batch calls.
type countingEmbedder struct {
	port.Embedder
	batches atomic.Int32
	delay   time.Duration
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return e.Embedder.EmbedBatch(ctx, texts)
}

type failingEmbedder struct {
	port.Embedder
}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.Join(domain.ErrEmbeddingProvider, errors.New("connection refused"))
}

func (failingEmbedder) EmbedOne(context.Context, string) ([]float32, error) {
	return nil, errors.Join(domain.ErrEmbeddingProvider, errors.New("connection refused"))
}

type fixture struct {
	store    *memstore.MemoryStore
	embedder *countingEmbedder
	index    *IndexUseCase
	ingest   *IngestUseCase
	retrieve *RetrieveUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memstore.NewMemoryStore(), embedding.NewHashEmbedder(1024))
}

func newFixtureWith(t *testing.T, st *memstore.MemoryStore, emb port.Embedder) *fixture {
	t.Helper()
	ch := chunker.NewCharChunker(chunker.DefaultMaxChars, chunker.DefaultOverlapChars)
	counting := &countingEmbedder{Embedder: emb}
	index := NewIndexUseCase(st, ch, counting)
	return &fixture{
		store:    st,
		embedder: counting,
		index:    index,
		ingest:   NewIngestUseCase(st, extract.NewExtractor(0), narration.NewNarrator(), index),
		retrieve: NewRetrieveUseCase(index, ch, counting, cache.NewQueryCache(16, time.Minute), 1),
	}
}

func (f *fixture) add(t *testing.T, name, content string) {
	t.Helper()
	if _, err := f.ingest.Ingest(domain.RawDocument{Filename: name, Content: []byte(content)}); err != nil {
		t.Fatalf("ingest %s: %v", name, err)
	}
}
