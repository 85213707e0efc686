package usecase

import (
	"context"
	"fmt"
	"strings"

	"finrag/internal/adapter/cache"
	"finrag/internal/adapter/vectorindex"
	"finrag/internal/domain"
	"finrag/internal/logger"
	"finrag/internal/port"
)

const (
	MessageFound    = "Retrieved closest statement successfully"
	MessageNotFound = "Query not found in the documents"
)

// Result is the outcome of document retrieval. Found is false for an empty
// corpus or a blank query.
type Result struct {
	Filename string `json:"filename,omitempty"`
	Found    bool   `json:"found"`
	Message  string `json:"message"`
}

// RetrieveUseCase answers which stored document best matches a query.
type RetrieveUseCase struct {
	index    *IndexUseCase
	chunker  port.Chunker
	embedder port.Embedder
	cache    *cache.QueryCache
	defaultK int
}

// NewRetrieveUseCase creates a new retrieve use case. queryCache may be nil.
func NewRetrieveUseCase(
	index *IndexUseCase,
	chunker port.Chunker,
	embedder port.Embedder,
	queryCache *cache.QueryCache,
	defaultK int,
) *RetrieveUseCase {
	if defaultK <= 0 {
		defaultK = 1
	}
	return &RetrieveUseCase{
		index:    index,
		chunker:  chunker,
		embedder: embedder,
		cache:    queryCache,
		defaultK: defaultK,
	}
}

// Search returns the k best chunk hits for query with their scores.
// A non-positive k selects the configured default.
func (u *RetrieveUseCase) Search(ctx context.Context, query string, k int) ([]domain.Hit, error) {
	if k <= 0 {
		k = u.defaultK
	}
	q := u.chunker.Preprocess(query)
	if q == "" {
		return nil, nil
	}

	idx, err := u.index.Current(ctx)
	if err != nil {
		return nil, err
	}
	if idx.Empty() {
		return nil, nil
	}

	if u.cache != nil {
		if hits, ok := u.cache.Get(idx.Version(), q, k); ok {
			return hits, nil
		}
	}

	vec, err := u.embedder.EmbedOne(ctx, q)
	if err != nil {
		return nil, err
	}
	vec = vectorindex.L2Normalize(vec)
	if vectorindex.Dot(vec, vec) == 0 {
		// Nothing in the query the embedder could represent.
		logger.Debug("query %q embeds to a zero vector", q)
		return nil, nil
	}
	hits, err := idx.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}

	if u.cache != nil {
		u.cache.Put(idx.Version(), q, k, hits)
	}
	return hits, nil
}

// RetrieveClosestDocument returns the filename of the best match. Failures
// come back as an unfound Result carrying the error text, alongside the error.
func (u *RetrieveUseCase) RetrieveClosestDocument(ctx context.Context, query string, k int) (Result, error) {
	hits, err := u.Search(ctx, query, k)
	if err != nil {
		return Result{Message: "Retrieval failed: " + err.Error()}, err
	}
	if len(hits) == 0 || strings.TrimSpace(hits[0].Filename) == "" {
		return Result{Message: MessageNotFound}, nil
	}
	return Result{
		Filename: hits[0].Filename,
		Found:    true,
		Message:  MessageFound,
	}, nil
}
