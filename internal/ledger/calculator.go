package ledger

import (
	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/models"

	"github.com/shopspring/decimal"
)

// The calculator functions are pure: they read the snapshots they are given
// and never touch storage.

func findDivision(divs []models.Division, name string) (models.Division, bool) {
	for _, d := range divs {
		if d.Name == name {
			return d, true
		}
	}
	return models.Division{}, false
}

func inDivision(name string, typ models.TransactionType) func(models.Transaction) bool {
	return func(tx models.Transaction) bool {
		return tx.Division == name && tx.Type == typ
	}
}

func summarize(d models.Division, txs []models.Transaction) models.DivisionSummary {
	credits := models.SumAmounts(txs, inDivision(d.Name, models.TypeCredit))
	debits := models.SumAmounts(txs, inDivision(d.Name, models.TypeDebit))
	return models.DivisionSummary{
		Division:         d.Name,
		StartingBalance:  d.StartingBalance,
		CreditsAdded:     credits,
		TotalSpent:       debits,
		RemainingBalance: d.StartingBalance.Add(credits).Sub(debits),
	}
}

// DivisionBalance returns starting balance + credits - debits for the named division.
func DivisionBalance(divs []models.Division, txs []models.Transaction, name string) (decimal.Decimal, error) {
	d, ok := findDivision(divs, name)
	if !ok {
		return decimal.Zero, &ledgererror.DivisionNotFoundError{Division: name}
	}
	return summarize(d, txs).RemainingBalance, nil
}

// AggregateFinancials rolls up the whole ledger. Transactions whose division
// was deleted still count.
func AggregateFinancials(divs []models.Division, txs []models.Transaction) models.Financials {
	starting := decimal.Zero
	for _, d := range divs {
		starting = starting.Add(d.StartingBalance)
	}
	credits := models.SumAmounts(txs, models.Transaction.IsCredit)
	debits := models.SumAmounts(txs, models.Transaction.IsDebit)
	total := starting.Add(credits)

	return models.Financials{
		TotalCredited:    total,
		TotalSpent:       debits,
		RemainingBalance: total.Sub(debits),
		CreditsAdded:     credits,
	}
}

// DivisionSummary returns one row per division, in collection order.
func DivisionSummary(divs []models.Division, txs []models.Transaction) []models.DivisionSummary {
	rows := make([]models.DivisionSummary, 0, len(divs))
	for _, d := range divs {
		rows = append(rows, summarize(d, txs))
	}
	return rows
}

// DivisionStats returns the summary row of a division plus its transaction
// count and average debit. AvgExpense is zero when the division has no debits.
func DivisionStats(divs []models.Division, txs []models.Transaction, name string) (models.DivisionStats, error) {
	d, ok := findDivision(divs, name)
	if !ok {
		return models.DivisionStats{}, &ledgererror.DivisionNotFoundError{Division: name}
	}

	stats := models.DivisionStats{
		DivisionSummary: summarize(d, txs),
		AvgExpense:      decimal.Zero,
	}
	debits := 0
	for _, tx := range txs {
		if tx.Division != name {
			continue
		}
		stats.TransactionCount++
		if tx.IsDebit() {
			debits++
		}
	}
	if debits > 0 {
		stats.AvgExpense = stats.TotalSpent.Div(decimal.NewFromInt(int64(debits)))
	}
	return stats, nil
}
