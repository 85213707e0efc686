// Package schema maps heterogeneous statement layouts onto the canonical
// transaction schema: column headers onto field names and date strings onto a
// single date format.
package schema

import "strings"

// Canonical field names.
const (
	FieldBalance     = "balance"
	FieldDebit       = "debit"
	FieldCredit      = "credit"
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldType        = "type"
	FieldDescription = "description"
)

type synonyms struct {
	field string
	terms []string
}

// Order matters: "Withdrawal Amt" is a debit column, not a generic amount, and
// "Transaction Date" is a date column, not a description.
var columnSynonyms = []synonyms{
	{FieldBalance, []string{"balance"}},
	{FieldDebit, []string{"debit", "withdrawal", "withdrawl", "paid out", "money out"}},
	{FieldCredit, []string{"credit", "deposit", "paid in", "money in"}},
	{FieldDate, []string{"date"}},
	{FieldAmount, []string{"amount", "amt"}},
	{FieldType, []string{"type", "cr/dr", "dr/cr"}},
	{FieldDescription, []string{"description", "narration", "particulars", "details", "remarks", "transaction"}},
}

// ColumnMatch is the outcome of mapping one header.
type ColumnMatch struct {
	Name    string
	Matched bool
}

// MatchColumn maps a raw header onto a canonical field name. Unmatched headers
// come back lowercased and trimmed with Matched set to false.
func MatchColumn(header string) ColumnMatch {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.Join(strings.Fields(h), " ")
	for _, s := range columnSynonyms {
		for _, term := range s.terms {
			if strings.Contains(h, term) {
				return ColumnMatch{Name: s.field, Matched: true}
			}
		}
	}
	return ColumnMatch{Name: strings.ToLower(strings.TrimSpace(header))}
}

// NormalizeColumn returns the canonical field name for header, or the lowercased
// header when nothing matches.
func NormalizeColumn(header string) string {
	return MatchColumn(header).Name
}

// IsDateColumn reports whether a raw header names a date-like column.
func IsDateColumn(header string) bool {
	return strings.Contains(strings.ToLower(header), FieldDate)
}
