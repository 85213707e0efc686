package port

import "finrag/internal/domain"

// DocumentStore holds raw statements and the records and narration derived from
// them, keyed by filename.
type DocumentStore interface {
	Put(doc domain.RawDocument) error

	Get(filename string) (domain.RawDocument, error)

	PutDerived(filename string, records []domain.TransactionRecord, narration string) error

	Records(filename string) ([]domain.TransactionRecord, error)

	Narration(filename string) (string, error)

	// ListFilenames returns stored filenames in ascending order.
	ListFilenames() ([]string, error)

	// ListNarrations returns every document that has a narration, ordered by filename.
	ListNarrations() ([]domain.Narration, error)

	Delete(filename string) error

	Clear() error

	Close() error
}

// IndexArtifactStore persists the vector table and chunk map together.
type IndexArtifactStore interface {
	SaveIndex(art domain.IndexArtifact) error

	// LoadIndex returns domain.ErrIndexMissing when nothing has been saved.
	LoadIndex() (domain.IndexArtifact, error)

	DeleteIndex() error
}
