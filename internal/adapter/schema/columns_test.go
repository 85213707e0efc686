package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Closing Balance", FieldBalance},
		{"Withdrawal", FieldDebit},
		{"Withdrawal Amt.", FieldDebit},
		{"Deposit Amt.", FieldCredit},
		{"CREDIT", FieldCredit},
		{"Txn Date", FieldDate},
		{"Value\nDate", FieldDate},
		{"Transaction Date", FieldDate},
		{"Amount (INR)", FieldAmount},
		{"Cr/Dr", FieldType},
		{"Transaction Type", FieldType},
		{"Narration", FieldDescription},
		{"Particulars", FieldDescription},
		{"Foo", "foo"},
		{"  Chq./Ref.No.  ", "chq./ref.no."},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumn(tt.header))
		})
	}
}

func TestMatchColumn_ReportsPassthrough(t *testing.T) {
	m := MatchColumn("Foo")
	assert.False(t, m.Matched)
	assert.Equal(t, "foo", m.Name)

	m = MatchColumn("Balance")
	assert.True(t, m.Matched)
	assert.Equal(t, FieldBalance, m.Name)
}

func TestIsDateColumn(t *testing.T) {
	assert.True(t, IsDateColumn("Value Date"))
	assert.True(t, IsDateColumn("DATE"))
	assert.False(t, IsDateColumn("Description"))
}
