package models

import "github.com/shopspring/decimal"

// Financials is the ledger-wide rollup shown at the top of the dashboard.
type Financials struct {
	TotalCredited    decimal.Decimal `json:"total_credited" yaml:"total_credited"`
	TotalSpent       decimal.Decimal `json:"total_spent" yaml:"total_spent"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" yaml:"remaining_balance"`
	CreditsAdded     decimal.Decimal `json:"credits_added" yaml:"credits_added"`
}

// DivisionSummary is one row of the per-division summary table.
type DivisionSummary struct {
	Division         string          `csv:"Division" json:"division" yaml:"division"`
	StartingBalance  decimal.Decimal `csv:"Starting Balance" json:"starting_balance" yaml:"starting_balance"`
	CreditsAdded     decimal.Decimal `csv:"Credits Added" json:"credits_added" yaml:"credits_added"`
	TotalSpent       decimal.Decimal `csv:"Total Spent" json:"total_spent" yaml:"total_spent"`
	RemainingBalance decimal.Decimal `csv:"Remaining Balance" json:"remaining_balance" yaml:"remaining_balance"`
}

// DivisionStats extends the summary row with activity counters.
type DivisionStats struct {
	DivisionSummary  `yaml:",inline"`
	TransactionCount int             `json:"transaction_count" yaml:"transaction_count"`
	AvgExpense       decimal.Decimal `json:"avg_expense" yaml:"avg_expense"`
}

// DailyTotal is the sum of one transaction type on one calendar day.
type DailyTotal struct {
	Date   string          `json:"date" yaml:"date"`
	Type   TransactionType `json:"type" yaml:"type"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// NamedTotal is an amount aggregated under a name (submitter or division).
type NamedTotal struct {
	Name   string          `json:"name" yaml:"name"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// NamedCount is a number of submissions under a name.
type NamedCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// DailyCount is a number of submissions on one calendar day.
type DailyCount struct {
	Date  string `json:"date" yaml:"date"`
	Count int    `json:"count" yaml:"count"`
}

// LocationCluster groups the located submissions sent from the same
// coordinates. Names lists up to three distinct submitters, with a trailing
// "..." when there were more.
type LocationCluster struct {
	Latitude    float64         `json:"latitude" yaml:"latitude"`
	Longitude   float64         `json:"longitude" yaml:"longitude"`
	Count       int             `json:"count" yaml:"count"`
	Names       string          `json:"names" yaml:"names"`
	TotalAmount decimal.Decimal `json:"total_amount" yaml:"total_amount"`
}

// LedgerReport bundles the read-side views exported by the report command.
type LedgerReport struct {
	GeneratedAt string            `json:"generated_at" yaml:"generated_at"`
	Currency    string            `json:"currency" yaml:"currency"`
	Financials  Financials        `json:"financials" yaml:"financials"`
	Divisions   []DivisionSummary `json:"divisions" yaml:"divisions"`
}
