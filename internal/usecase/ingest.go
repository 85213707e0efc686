package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finrag/internal/adapter/extract"
	"finrag/internal/domain"
	"finrag/internal/logger"
	"finrag/internal/port"
)

// IngestUseCase stores statements and derives their records and narration.
// Every change to the corpus invalidates the index.
type IngestUseCase struct {
	store     port.DocumentStore
	extractor port.Extractor
	narrator  port.Narrator
	index     *IndexUseCase
	now       func() time.Time
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	store port.DocumentStore,
	extractor port.Extractor,
	narrator port.Narrator,
	index *IndexUseCase,
) *IngestUseCase {
	return &IngestUseCase{
		store:     store,
		extractor: extractor,
		narrator:  narrator,
		index:     index,
		now:       time.Now,
	}
}

// FileError is the failure of one document in a batch.
type FileError struct {
	Filename string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// IngestResult summarizes a batch.
type IngestResult struct {
	Ingested []string
	Records  int
	Errors   []FileError
}

// Ingest stores doc and its derived records and narration. The raw document
// is kept even when extraction fails.
func (u *IngestUseCase) Ingest(doc domain.RawDocument) (int, error) {
	if doc.Filename == "" {
		return 0, fmt.Errorf("%w: document has no filename", domain.ErrExtraction)
	}
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = u.now()
	}
	if doc.ContentType == "" {
		doc.ContentType = extract.DetectContentType(doc.Filename, "", doc.Content)
	}

	if err := u.store.Put(doc); err != nil {
		return 0, fmt.Errorf("failed to store %s: %w", doc.Filename, err)
	}

	records, err := u.extractor.Extract(doc)
	if err != nil {
		// Put dropped the old narration, so the index is stale anyway.
		if ierr := u.index.Invalidate(); ierr != nil {
			return 0, ierr
		}
		return 0, err
	}

	narration := u.narrator.Narrate(records)
	if err := u.store.PutDerived(doc.Filename, records, narration); err != nil {
		u.index.Invalidate()
		return 0, fmt.Errorf("failed to store derived data for %s: %w", doc.Filename, err)
	}
	// Invalidate only once the store holds the final state of doc. A search
	// that rebuilds in between would otherwise publish an index missing it.
	if err := u.index.Invalidate(); err != nil {
		return 0, err
	}

	logger.Debug("ingested %s: %d records", doc.Filename, len(records))
	return len(records), nil
}

// IngestFile reads path and ingests it under its base name.
func (u *IngestUseCase) IngestFile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	name := filepath.Base(path)
	return u.Ingest(domain.RawDocument{
		Filename:    name,
		ContentType: extract.DetectContentType(name, "", content),
		Content:     content,
	})
}

// IngestFiles ingests each path, collecting per-file failures instead of
// stopping. progress, if set, is called after each file.
func (u *IngestUseCase) IngestFiles(paths []string, progress func(path string)) *IngestResult {
	result := &IngestResult{}
	for _, path := range paths {
		n, err := u.IngestFile(path)
		if err != nil {
			logger.Warn("failed to ingest %s: %v", path, err)
			result.Errors = append(result.Errors, FileError{Filename: path, Err: err})
		} else {
			result.Ingested = append(result.Ingested, filepath.Base(path))
			result.Records += n
		}
		if progress != nil {
			progress(path)
		}
	}
	return result
}

// Rederive re-runs extraction and narration over every stored document. Used
// after extraction rules change.
func (u *IngestUseCase) Rederive() *IngestResult {
	result := &IngestResult{}
	names, err := u.store.ListFilenames()
	if err != nil {
		result.Errors = append(result.Errors, FileError{Err: err})
		return result
	}
	for _, name := range names {
		doc, err := u.store.Get(name)
		if err == nil {
			var n int
			n, err = u.Ingest(doc)
			result.Records += n
		}
		if err != nil {
			result.Errors = append(result.Errors, FileError{Filename: name, Err: err})
			continue
		}
		result.Ingested = append(result.Ingested, name)
	}
	return result
}

// Delete removes one document and invalidates the index.
func (u *IngestUseCase) Delete(filename string) error {
	if err := u.store.Delete(filename); err != nil {
		return err
	}
	return u.index.Invalidate()
}

// Clear removes every document and the index.
func (u *IngestUseCase) Clear() error {
	if err := u.store.Clear(); err != nil {
		return err
	}
	return u.index.Invalidate()
}
