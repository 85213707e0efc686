package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(x, y, w float64, s string) glyph {
	return glyph{X: x, Y: y, W: w, FontSize: 10, S: s}
}

func TestLayoutTables(t *testing.T) {
	glyphs := []glyph{
		word(50, 760, 120, "Statement of account"),

		word(50, 700, 30, "Date"),
		word(150, 700, 60, "Description"),
		word(300, 700, 30, "Debit"),
		word(350, 700, 30, "Credit"),
		word(400, 700, 40, "Balance"),

		word(150, 685, 20, "ATM"),
		word(173, 685, 50, "withdrawal"),
		word(50, 685, 40, "17/05/18"),
		word(300, 685.5, 30, "100.00"),
		word(400, 685, 30, "900.00"),

		word(50, 670, 40, "18/05/18"),
		word(150, 670, 30, "Salary"),
		word(350, 670, 30, "500.00"),
		word(400, 670, 40, "1400.00"),

		word(50, 600, 30, "Page 1"),
	}

	tables := layoutTables(glyphs)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, []string{"Date", "Description", "Debit", "Credit", "Balance"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"17/05/18", "ATM withdrawal", "100.00", "", "900.00"}, table.Rows[0])
	assert.Equal(t, []string{"18/05/18", "Salary", "", "500.00", "1400.00"}, table.Rows[1])

	records := table.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "17-May-2018", records[0].Date.Value)
	assert.Equal(t, "100.00", records[0].Debit.Value)
	assert.Equal(t, "0", records[0].Credit.Value)
	assert.Equal(t, "500.00", records[1].Credit.Value)
}

func TestLayoutTables_HeaderOnlyIsNotATable(t *testing.T) {
	glyphs := []glyph{
		word(50, 700, 30, "Date"),
		word(150, 700, 60, "Description"),
	}
	assert.Empty(t, layoutTables(glyphs))
}
