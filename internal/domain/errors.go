package domain

import "errors"

var (
	// ErrNotFound indicates a document is not in the store.
	ErrNotFound = errors.New("not found")

	// ErrExtraction indicates a document could not be read or held no tables.
	// The input is fixed, so retrying will not help.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbeddingProvider indicates the embedding service failed. Callers may retry.
	ErrEmbeddingProvider = errors.New("embedding provider failed")

	// ErrIndexMissing indicates no usable persisted index exists.
	ErrIndexMissing = errors.New("index missing")

	// ErrPersistence indicates the index artifact could not be written or read.
	ErrPersistence = errors.New("index persistence failed")

	// ErrUnsupportedType indicates a document format with no extractor.
	ErrUnsupportedType = errors.New("unsupported document type")
)
