package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/internal/domain"
)

func TestExtract_CSV(t *testing.T) {
	content := "\xEF\xBB\xBF\n" +
		"Date,Description,Amount,Type,Balance\n" +
		"17/05/18,Salary credit,500,CR,1500\n" +
		"18/05/18,ATM withdrawal,100,DR,1400\n" +
		"19/05/18,,,,\n"

	records, err := NewExtractor(0).Extract(domain.RawDocument{
		Filename: "may.csv",
		Content:  []byte(content),
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "17-May-2018", records[0].Date.Value)
	assert.Equal(t, "500", records[0].Credit.Value)
	assert.Equal(t, "0", records[0].Debit.Value)
	assert.Equal(t, "1500", records[0].Balance.Value)

	assert.Equal(t, "100", records[1].Debit.Value)
	assert.Equal(t, "0", records[1].Credit.Value)

	assert.Equal(t, "19-May-2018", records[2].Date.Value)
	assert.False(t, records[2].Balance.Present)
}

func TestExtract_JSON(t *testing.T) {
	content := `[
		{"Txn Date": "17/05/18", "Narration": "Salary credit", "Deposit Amt.": 500, "Closing Balance": "1500"},
		{"Txn Date": "18/05/18", "Narration": "ATM withdrawal", "Withdrawal Amt.": 100.5, "Closing Balance": "1399.5", "Ref": null}
	]`

	records, err := NewExtractor(0).Extract(domain.RawDocument{
		Filename:    "may.json",
		ContentType: "application/json",
		Content:     []byte(content),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "17-May-2018", records[0].Date.Value)
	assert.Equal(t, "500", records[0].Credit.Value)
	assert.Equal(t, "0", records[0].Debit.Value)
	assert.Equal(t, "Salary credit", records[0].Description.Value)

	assert.Equal(t, "100.5", records[1].Debit.Value)
	assert.Empty(t, records[1].Extra)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := NewExtractor(0).Extract(domain.RawDocument{Filename: "notes.txt", Content: []byte("hello")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestExtract_NoTables(t *testing.T) {
	_, err := NewExtractor(0).Extract(domain.RawDocument{Filename: "empty.csv", Content: []byte("\n\n")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestExtract_SizeLimit(t *testing.T) {
	_, err := NewExtractor(4).Extract(domain.RawDocument{Filename: "big.csv", Content: []byte("a,b\n1,2\n")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestExtract_MalformedPDF(t *testing.T) {
	_, err := NewExtractor(0).Extract(domain.RawDocument{Filename: "scan.pdf", Content: []byte("%PDF-1.4 truncated")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, TypePDF, DetectContentType("a.PDF", "", nil))
	assert.Equal(t, TypeCSV, DetectContentType("upload", "text/csv; charset=utf-8", nil))
	assert.Equal(t, TypeJSON, DetectContentType("upload", "", []byte(`  [{"a":1}]`)))
	assert.Equal(t, TypePDF, DetectContentType("upload", "", []byte("%PDF-1.7\n")))
	assert.Equal(t, "", DetectContentType("notes.txt", "", []byte("hello")))
}
