package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		input    string
		expected TransactionType
		wantErr  bool
	}{
		{input: "credit", expected: TypeCredit},
		{input: "Debit", expected: TypeDebit},
		{input: "  DEBIT ", expected: TypeDebit},
		{input: "refund", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, got.IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestTransaction_Direction(t *testing.T) {
	credit := Transaction{Type: TypeCredit}
	debit := Transaction{Type: TypeDebit}

	assert.True(t, credit.IsCredit())
	assert.False(t, credit.IsDebit())
	assert.True(t, debit.IsDebit())
	assert.False(t, debit.IsCredit())
}

func TestTransaction_HasLocation(t *testing.T) {
	assert.True(t, Transaction{Latitude: "25.2048", Longitude: "55.2708"}.HasLocation())
	assert.False(t, Transaction{Latitude: "25.2048"}.HasLocation())
	assert.False(t, Transaction{Latitude: " ", Longitude: " "}.HasLocation())
	assert.False(t, Transaction{}.HasLocation())
}

func TestTransaction_Time(t *testing.T) {
	tx := Transaction{Timestamp: "2024-03-05 14:07:09"}
	ts, err := tx.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local), ts)
	assert.Equal(t, "2024-03-05", tx.Date())

	dateOnly := Transaction{Timestamp: "2024-03-05"}
	ts, err = dateOnly.Time()
	require.NoError(t, err)
	assert.Equal(t, 5, ts.Day())

	_, err = Transaction{Timestamp: "yesterday"}.Time()
	assert.Error(t, err)
}

func TestColumnsMatchCSVTags(t *testing.T) {
	assert.Len(t, TransactionColumns, 11)
	assert.Equal(t, "id", TransactionColumns[0])
	assert.Equal(t, "longitude", TransactionColumns[len(TransactionColumns)-1])
	assert.Equal(t, []string{"division", "starting_balance"}, DivisionColumns)
}
