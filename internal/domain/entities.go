package domain

import "time"

// RawDocument is an uploaded statement as stored, never mutated after ingestion.
type RawDocument struct {
	Filename    string
	ContentType string
	Content     []byte
	IngestedAt  time.Time
}

// Field is an optional record slot. Present is false when the source table had no
// non-empty cell for it.
type Field struct {
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// Set returns a present field holding v.
func Set(v string) Field {
	return Field{Value: v, Present: true}
}

// Or returns the field value, or def when the slot is absent.
func (f Field) Or(def string) string {
	if !f.Present {
		return def
	}
	return f.Value
}

// Column is a source column that did not map onto a canonical field.
type Column struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TransactionRecord is one normalized statement row.
type TransactionRecord struct {
	Date        Field `json:"date"`
	Debit       Field `json:"debit"`
	Credit      Field `json:"credit"`
	Balance     Field `json:"balance"`
	Description Field `json:"description"`

	// Amount and Type hold a combined amount column and its CR/DR marker when
	// the statement uses that layout instead of separate debit/credit columns.
	Amount Field    `json:"amount"`
	Type   Field    `json:"type"`
	Extra  []Column `json:"extra,omitempty"`
}

// Narration is the synthesized text of one stored document.
type Narration struct {
	Filename string
	Text     string
}

// Chunk is a bounded-size slice of a narration. Filename is a back-reference to
// the source document.
type Chunk struct {
	Filename string
	Position int
	Text     string
}

// IndexArtifact is the persisted form of a vector index: a flat vector table and
// a parallel filename list, stored and loaded as one unit.
type IndexArtifact struct {
	Version   string
	Model     string
	Dimension int
	Vectors   [][]float32
	ChunkMap  []string
	BuiltAt   time.Time
}

// Hit is a scored match against the vector index.
type Hit struct {
	Position int     `json:"position"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// Stats summarizes the stored corpus and the current index.
type Stats struct {
	Documents    int
	IndexVersion string
	IndexedAt    time.Time
	Chunks       int
}
