package port

import "finrag/internal/domain"

// Extractor turns raw statement bytes into normalized transaction records.
type Extractor interface {
	Extract(doc domain.RawDocument) ([]domain.TransactionRecord, error)
}

// Narrator renders records into searchable text.
type Narrator interface {
	Narrate(records []domain.TransactionRecord) string
}
