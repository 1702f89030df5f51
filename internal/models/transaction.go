// Package models provides the data structures used throughout the application.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout of the persisted datetime column.
const TimestampLayout = "2006-01-02 15:04:05"

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// ParseTransactionType normalizes user input ("Debit", " credit ") to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeCredit:
		return TypeCredit, nil
	case TypeDebit:
		return TypeDebit, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q (want credit or debit)", s)
	}
}

// IsValid reports whether t is credit or debit.
func (t TransactionType) IsValid() bool {
	return t == TypeCredit || t == TypeDebit
}

// Transaction is a single credit or debit recorded against a division.
// Field order matches the column order of transactions.csv.
type Transaction struct {
	ID          string          `csv:"id" json:"id" yaml:"id"`
	Timestamp   string          `csv:"datetime" json:"datetime" yaml:"datetime"` // YYYY-MM-DD HH:MM:SS, set once at insert
	Name        string          `csv:"name" json:"name" yaml:"name"`
	ClassLabel  string          `csv:"class" json:"class" yaml:"class"`
	Division    string          `csv:"division" json:"division" yaml:"division"`
	Type        TransactionType `csv:"type" json:"type" yaml:"type"`
	Amount      decimal.Decimal `csv:"amount" json:"amount" yaml:"amount"`
	Description string          `csv:"description" json:"description" yaml:"description"`
	ReceiptPath string          `csv:"receipt_path" json:"receipt_path" yaml:"receipt_path"`
	Latitude    string          `csv:"latitude" json:"latitude" yaml:"latitude"`
	Longitude   string          `csv:"longitude" json:"longitude" yaml:"longitude"`
}

// TransactionColumns is the canonical header of transactions.csv.
var TransactionColumns = []string{
	"id", "datetime", "name", "class", "division", "type",
	"amount", "description", "receipt_path", "latitude", "longitude",
}

// IsDebit returns true if the transaction is a debit
func (t Transaction) IsDebit() bool {
	return t.Type == TypeDebit
}

// IsCredit returns true if the transaction is a credit
func (t Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// HasLocation reports whether both coordinates were captured.
func (t Transaction) HasLocation() bool {
	return strings.TrimSpace(t.Latitude) != "" && strings.TrimSpace(t.Longitude) != ""
}

// Coordinates parses both coordinates. ok is false when either is missing
// or not a number.
func (t Transaction) Coordinates() (lat, long float64, ok bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(t.Latitude), 64)
	if err != nil {
		return 0, 0, false
	}
	long, err = strconv.ParseFloat(strings.TrimSpace(t.Longitude), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, long, true
}

// Time parses the persisted timestamp. Records written by hand may carry a
// date only, so that layout is accepted too.
func (t Transaction) Time() (time.Time, error) {
	if ts, err := time.ParseInLocation(TimestampLayout, t.Timestamp, time.Local); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(DateLayout, t.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid transaction timestamp %q: %w", t.Timestamp, err)
	}
	return ts, nil
}

// Date returns the calendar-day part of the timestamp (YYYY-MM-DD).
func (t Transaction) Date() string {
	if len(t.Timestamp) >= len(DateLayout) {
		return t.Timestamp[:len(DateLayout)]
	}
	return t.Timestamp
}

// Division is a named budget bucket with a starting balance.
type Division struct {
	Name            string          `csv:"division" json:"division" yaml:"division"`
	StartingBalance decimal.Decimal `csv:"starting_balance" json:"starting_balance" yaml:"starting_balance"`
}

// DivisionColumns is the canonical header of divisions.csv.
var DivisionColumns = []string{"division", "starting_balance"}
