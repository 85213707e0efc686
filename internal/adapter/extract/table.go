package extract

import (
	"strings"

	"finrag/internal/adapter/schema"
	"finrag/internal/domain"
)

// Table is raw tabular data as found in a document: the first row holds headers.
// Rows may be shorter or longer than Headers.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Records normalizes every data row of t. A row always produces a record, even
// when none of its cells could be mapped.
func (t Table) Records() []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, NormalizeRow(t.Headers, row))
	}
	return records
}

// NormalizeRow builds a record from one row. Empty cells are dropped and cells
// past the last header are ignored. When several columns map to the same field
// the first non-empty one wins.
func NormalizeRow(headers, cells []string) domain.TransactionRecord {
	var rec domain.TransactionRecord
	var rawDate domain.Field

	for i, cell := range cells {
		if i >= len(headers) {
			break
		}
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}

		header := headers[i]
		if schema.IsDateColumn(header) {
			setFirst(&rawDate, value)
			continue
		}

		switch name := schema.NormalizeColumn(header); name {
		case schema.FieldDate:
			setFirst(&rawDate, value)
		case schema.FieldDebit:
			setFirst(&rec.Debit, value)
		case schema.FieldCredit:
			setFirst(&rec.Credit, value)
		case schema.FieldBalance:
			setFirst(&rec.Balance, value)
		case schema.FieldDescription:
			setFirst(&rec.Description, value)
		case schema.FieldAmount:
			setFirst(&rec.Amount, value)
		case schema.FieldType:
			setFirst(&rec.Type, value)
		default:
			rec.Extra = append(rec.Extra, domain.Column{Name: name, Value: value})
		}
	}

	Reconcile(&rec)

	if rawDate.Present {
		rec.Date = domain.Set(schema.NormalizeDate(rawDate.Value))
	}
	return rec
}

// Reconcile moves a combined amount into debit or credit according to its CR/DR
// marker, then defaults both to "0".
func Reconcile(rec *domain.TransactionRecord) {
	if rec.Amount.Present && rec.Type.Present {
		switch strings.ToUpper(strings.TrimSpace(rec.Type.Value)) {
		case "CR", "CREDIT":
			rec.Credit = domain.Set(rec.Amount.Value)
			rec.Debit = domain.Set("0")
		case "DR", "DEBIT":
			rec.Debit = domain.Set(rec.Amount.Value)
			rec.Credit = domain.Set("0")
		}
	}
	if !rec.Debit.Present {
		rec.Debit = domain.Set("0")
	}
	if !rec.Credit.Present {
		rec.Credit = domain.Set("0")
	}
}

func setFirst(f *domain.Field, value string) {
	if !f.Present {
		*f = domain.Set(value)
	}
}
