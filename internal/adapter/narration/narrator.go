// Package narration renders normalized transaction records as searchable prose.
package narration

import (
	"fmt"
	"strings"

	"finrag/internal/domain"
)

// Defaults substituted for absent fields.
const (
	UnknownDate    = "Unknown Date"
	NoDescription  = "No description available"
	UnknownBalance = "Unknown Balance"
)

// Narrator renders record sequences into a single paragraph. The output is a
// pure function of the input sequence.
type Narrator struct{}

func NewNarrator() *Narrator {
	return &Narrator{}
}

// Narrate renders one sentence per record in order, joined by single spaces,
// followed by a closing sentence with the last record's balance.
func (n *Narrator) Narrate(records []domain.TransactionRecord) string {
	if len(records) == 0 {
		return ""
	}

	sentences := make([]string, 0, len(records)+1)
	for _, rec := range records {
		sentences = append(sentences, Sentence(rec))
	}

	last := records[len(records)-1]
	sentences = append(sentences, fmt.Sprintf("The final balance is %s Rs.", last.Balance.Or(UnknownBalance)))

	return strings.Join(sentences, " ")
}

// Sentence renders a single record.
func Sentence(rec domain.TransactionRecord) string {
	return fmt.Sprintf(
		"On %s, a transaction took place where Debit: %s Rs and Credit: %s Rs. Description: %s. The balance after this transaction was %s Rs.",
		rec.Date.Or(UnknownDate),
		amount(rec.Debit),
		amount(rec.Credit),
		rec.Description.Or(NoDescription),
		rec.Balance.Or(UnknownBalance),
	)
}

// amount replaces stray "-" extraction artifacts with "0".
func amount(f domain.Field) string {
	return strings.ReplaceAll(f.Or("0"), "-", "0")
}
