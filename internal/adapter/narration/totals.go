package narration

import (
	"strings"

	"github.com/shopspring/decimal"

	"finrag/internal/domain"
)

// Totals sums a statement's debits and credits. Values that are not numbers
// after removing thousands separators and currency markers are counted in
// Skipped rather than failing the sum.
type Totals struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Count   int
	Skipped int
}

// Net returns credits minus debits.
func (t Totals) Net() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// Sum computes the totals of records.
func Sum(records []domain.TransactionRecord) Totals {
	t := Totals{Debit: decimal.Zero, Credit: decimal.Zero, Count: len(records)}
	for _, rec := range records {
		for _, side := range []struct {
			field domain.Field
			total *decimal.Decimal
		}{
			{rec.Debit, &t.Debit},
			{rec.Credit, &t.Credit},
		} {
			d, ok := ParseAmount(side.field.Or("0"))
			if !ok {
				t.Skipped++
				continue
			}
			*side.total = side.total.Add(d)
		}
	}
	return t
}

// ParseAmount parses statement amounts such as "1,234.50", "Rs. 500" or "-".
// A lone "-" is the extractor's marker for an empty amount and reads as zero.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "Cr"), "Dr")
	for _, prefix := range []string{"Rs.", "Rs", "INR", "₹"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
