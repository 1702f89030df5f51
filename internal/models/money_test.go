package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{name: "plain", input: "250", expected: "250.00"},
		{name: "two decimals", input: "49.95", expected: "49.95"},
		{name: "comma decimal separator", input: "12,5", expected: "12.50"},
		{name: "thousands with dot decimals", input: "1,234.50", expected: "1234.50"},
		{name: "currency prefix and spaces", input: "AED 1 000", expected: "1000.00"},
		{name: "apostrophe separator", input: "2'500.10", expected: "2500.10"},
		{name: "garbage", input: "abc", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseAmount(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount.StringFixed(2))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "AED 0.00", FormatCurrency(decimal.Zero))
	assert.Equal(t, "AED 250.00", FormatCurrency(decimal.NewFromInt(250)))
	assert.Equal(t, "AED 1,234.50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "AED 1,000,000.00", FormatCurrency(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-AED 50.25", FormatCurrency(decimal.RequireFromString("-50.25")))
}

func TestSumAmounts(t *testing.T) {
	txs := []Transaction{
		{Type: TypeCredit, Amount: decimal.RequireFromString("50.00")},
		{Type: TypeDebit, Amount: decimal.RequireFromString("20.10")},
		{Type: TypeDebit, Amount: decimal.RequireFromString("9.90")},
	}

	debits := SumAmounts(txs, Transaction.IsDebit)
	credits := SumAmounts(txs, Transaction.IsCredit)
	none := SumAmounts(nil, Transaction.IsDebit)

	assert.True(t, debits.Equal(decimal.NewFromInt(30)), "debits = %s", debits)
	assert.True(t, credits.Equal(decimal.NewFromInt(50)), "credits = %s", credits)
	assert.True(t, none.IsZero())
}
