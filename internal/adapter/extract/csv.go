package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvTables reads a CSV statement as a single table. Leading blank rows are
// skipped; the first non-blank row is the header.
func csvTables(content []byte) ([]Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var t Table
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if t.Headers == nil {
			if blankRow(row) {
				continue
			}
			t.Headers = row
			continue
		}
		t.Rows = append(t.Rows, row)
	}

	if t.Headers == nil {
		return nil, nil
	}
	return []Table{t}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
