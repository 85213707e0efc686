// Package extract pulls transaction tables out of statement documents and
// normalizes their rows into records.
package extract

import (
	"fmt"

	"finrag/internal/domain"
)

// MaxFileSize is the default upper bound on a statement's size.
const MaxFileSize = 50 * 1024 * 1024

// Extractor dispatches on document format.
type Extractor struct {
	maxSize int64
}

// NewExtractor creates an extractor that rejects documents larger than maxSize
// bytes. A non-positive maxSize selects MaxFileSize.
func NewExtractor(maxSize int64) *Extractor {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	return &Extractor{maxSize: maxSize}
}

// Tables returns the raw tables of doc.
func (e *Extractor) Tables(doc domain.RawDocument) ([]Table, error) {
	if int64(len(doc.Content)) > e.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds size limit of %d bytes", domain.ErrExtraction, doc.Filename, e.maxSize)
	}

	var (
		tables []Table
		err    error
	)
	switch kind := DetectContentType(doc.Filename, doc.ContentType, doc.Content); kind {
	case TypePDF:
		tables, err = pdfTables(doc.Content)
	case TypeCSV:
		tables, err = csvTables(doc.Content)
	case TypeJSON:
		tables, err = jsonTables(doc.Content)
	default:
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrExtraction, domain.ErrUnsupportedType, doc.Filename)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, doc.Filename, err)
	}
	return tables, nil
}

// Extract returns one record per data row of every table in doc, in page and
// row order. A document without tables is an extraction failure.
func (e *Extractor) Extract(doc domain.RawDocument) ([]domain.TransactionRecord, error) {
	tables, err := e.Tables(doc)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables found in %s", domain.ErrExtraction, doc.Filename)
	}

	var records []domain.TransactionRecord
	for _, t := range tables {
		records = append(records, t.Records()...)
	}
	return records, nil
}
