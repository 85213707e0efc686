package narration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finrag/internal/domain"
)

func TestSum(t *testing.T) {
	records := []domain.TransactionRecord{
		{Debit: domain.Set("1,250.50"), Credit: domain.Set("0")},
		{Debit: domain.Set("-"), Credit: domain.Set("Rs. 5,000")},
		{Debit: domain.Set("n/a"), Credit: domain.Set("0.25")},
	}

	totals := Sum(records)
	assert.Equal(t, 3, totals.Count)
	assert.Equal(t, 1, totals.Skipped)
	assert.Equal(t, "1250.5", totals.Debit.String())
	assert.Equal(t, "5000.25", totals.Credit.String())
	assert.Equal(t, "3749.75", totals.Net().String())
}

func TestParseAmount(t *testing.T) {
	d, ok := ParseAmount("2,000.00 Cr")
	assert.True(t, ok)
	assert.Equal(t, "2000", d.String())

	_, ok = ParseAmount("abc")
	assert.False(t, ok)
}
