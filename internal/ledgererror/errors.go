// Package ledgererror defines the failures a ledger operation can report.
// Every error leaves the ledger unchanged; callers tell them apart with
// errors.Is against the sentinels or errors.As against the typed errors.
package ledgererror

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrDivisionNotFound is returned when a referenced division does not exist.
	ErrDivisionNotFound = errors.New("division not found")
	// ErrInsufficientFunds is returned when a validated debit exceeds the division balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrRecordNotFound is returned when an update or delete targets a missing record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateDivision is returned when a division name is already taken.
	ErrDuplicateDivision = errors.New("division already exists")
)

// ValidationError represents rejected input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientFundsError carries the figures behind a refused debit.
type InsufficientFundsError struct {
	Division  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: division '%s' has %s available, debit of %s refused",
		ErrInsufficientFunds, e.Division, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// DivisionNotFoundError names the missing division.
type DivisionNotFoundError struct {
	Division string
}

func (e *DivisionNotFoundError) Error() string {
	return fmt.Sprintf("%s: '%s'", ErrDivisionNotFound, e.Division)
}

func (e *DivisionNotFoundError) Unwrap() error {
	return ErrDivisionNotFound
}

// StorageError represents a failed read or write of a ledger file
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
