package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the display currency of the ledger. The ledger is single-currency.
const Currency = "AED"

// ParseAmount parses a user-entered amount. Thousand separators, spaces and
// the currency code are ignored; a comma is accepted as decimal separator.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	amount = strings.TrimPrefix(amount, Currency)
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "'", "")
	if strings.Count(amount, ",") == 1 && !strings.Contains(amount, ".") {
		amount = strings.ReplaceAll(amount, ",", ".")
	} else {
		amount = strings.ReplaceAll(amount, ",", "")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", amountStr, err)
	}
	return dec, nil
}

// FormatCurrency renders an amount the way the dashboard shows it ("AED 1,234.50").
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s%s %s.%s", sign, Currency, b.String(), frac)
}

// SumAmounts adds the amounts of all transactions accepted by keep.
func SumAmounts(txs []Transaction, keep func(Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if keep(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
