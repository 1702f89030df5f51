// Package ledger implements the division ledger: the balance calculator,
// the mutating operations that refuse validated debits a division cannot cover, and
// read-side queries over transaction snapshots.
//
// A Ledger holds no state between calls. Every operation loads the current
// collections from its Store, so the files stay the single source of truth.
// Mutations hold the write lock for the whole load-check-save sequence, which
// makes a validated debit atomic with respect to other writers in the process.
package ledger

import (
	"fmt"
	"strings"
	"sync"

	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"
	"fjacquet/divledger/internal/store"

	"github.com/shopspring/decimal"
)

// DefaultIDAttempts bounds how many identifiers are drawn before an insert gives up.
const DefaultIDAttempts = 10

// Store is the persistence the ledger needs. *store.LedgerStore satisfies it.
// Mutations read through the strict loaders so a file that fails to parse is
// never rewritten from an empty view of it.
type Store interface {
	LoadTransactions() []models.Transaction
	LoadDivisions() []models.Division
	LoadTransactionsStrict() ([]models.Transaction, error)
	LoadDivisionsStrict() ([]models.Division, error)
	SaveTransactions([]models.Transaction) error
	SaveDivisions([]models.Division) error
}

// TransactionInput describes a new transaction.
type TransactionInput struct {
	Name        string
	ClassLabel  string
	Division    string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	ReceiptPath string
	// ValidateBalance refuses a debit larger than the division's balance.
	// End-user submissions always set it; admin entries may bypass it.
	ValidateBalance bool
	Latitude        string
	Longitude       string
}

// TransactionUpdate overwrites the editable fields of a transaction. Nil
// pointers leave the receipt path and coordinates unchanged.
type TransactionUpdate struct {
	Name        string
	ClassLabel  string
	Division    string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	ReceiptPath *string
	Latitude    *string
	Longitude   *string
}

// Ledger is the only component that writes ledger records.
type Ledger struct {
	mu         sync.RWMutex
	store      Store
	ids        store.IDGenerator
	clock      store.Clock
	idAttempts int
	logger     logging.Logger
}

// NewLedger creates a ledger over st. Nil collaborators fall back to random
// UUID-derived identifiers and the system clock.
func NewLedger(st Store, ids store.IDGenerator, clock store.Clock, logger logging.Logger) *Ledger {
	if ids == nil {
		ids = store.UUIDGenerator{}
	}
	if clock == nil {
		clock = store.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Ledger{
		store:      st,
		ids:        ids,
		clock:      clock,
		idAttempts: DefaultIDAttempts,
		logger:     logger,
	}
}

// SetIDAttempts overrides DefaultIDAttempts. Values below 1 are ignored.
func (l *Ledger) SetIDAttempts(n int) {
	if n > 0 {
		l.idAttempts = n
	}
}

func validateEntry(name, division string, typ models.TransactionType, amount decimal.Decimal) error {
	if !typ.IsValid() {
		return ledgererror.NewValidationError("type", fmt.Sprintf("%q is not credit or debit", typ))
	}
	if !amount.IsPositive() {
		return ledgererror.NewValidationError("amount", "must be greater than zero")
	}
	if strings.TrimSpace(name) == "" {
		return ledgererror.NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(division) == "" {
		return ledgererror.NewValidationError("division", "must not be empty")
	}
	return nil
}

// AddTransaction records a credit or debit and returns its new identifier.
func (l *Ledger) AddTransaction(in TransactionInput) (string, error) {
	if err := validateEntry(in.Name, in.Division, in.Type, in.Amount); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	divs, err := l.store.LoadDivisionsStrict()
	if err != nil {
		return "", err
	}
	txs, err := l.store.LoadTransactionsStrict()
	if err != nil {
		return "", err
	}

	if _, ok := findDivision(divs, in.Division); !ok {
		l.logger.Warn("Transaction refused: unknown division",
			logging.F(logging.FieldDivision, in.Division))
		return "", &ledgererror.DivisionNotFoundError{Division: in.Division}
	}

	if in.ValidateBalance && in.Type == models.TypeDebit {
		balance, err := DivisionBalance(divs, txs, in.Division)
		if err != nil {
			return "", err
		}
		if in.Amount.GreaterThan(balance) {
			l.logger.Warn("Debit refused: insufficient funds",
				logging.F(logging.FieldDivision, in.Division),
				logging.F(logging.FieldAmount, in.Amount.StringFixed(2)),
				logging.F(logging.FieldBalance, balance.StringFixed(2)))
			return "", &ledgererror.InsufficientFundsError{
				Division:  in.Division,
				Requested: in.Amount,
				Available: balance,
			}
		}
	}

	id, err := l.newID(txs)
	if err != nil {
		return "", err
	}

	tx := models.Transaction{
		ID:          id,
		Timestamp:   l.clock.Now().Format(models.TimestampLayout),
		Name:        in.Name,
		ClassLabel:  in.ClassLabel,
		Division:    in.Division,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		ReceiptPath: in.ReceiptPath,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if err := l.store.SaveTransactions(append(txs, tx)); err != nil {
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}

	l.logger.Info("Transaction recorded",
		logging.F(logging.FieldTransactionID, id),
		logging.F(logging.FieldDivision, tx.Division),
		logging.F(logging.FieldType, string(tx.Type)),
		logging.F(logging.FieldAmount, tx.Amount.StringFixed(2)))
	return id, nil
}

// newID draws identifiers until one is not already used by txs.
func (l *Ledger) newID(txs []models.Transaction) (string, error) {
	used := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		used[tx.ID] = struct{}{}
	}
	for attempt := 1; attempt <= l.idAttempts; attempt++ {
		id := l.ids.NewID()
		if _, taken := used[id]; !taken && id != "" {
			return id, nil
		}
		l.logger.Debug("Transaction id collision, drawing again",
			logging.F(logging.FieldTransactionID, id),
			logging.F("attempt", attempt))
	}
	return "", fmt.Errorf("could not allocate a unique transaction id after %d attempts", l.idAttempts)
}

// UpdateTransaction overwrites the transaction with the given id. The id and
// timestamp never change and the balance is not re-validated.
func (l *Ledger) UpdateTransaction(id string, upd TransactionUpdate) error {
	if err := validateEntry(upd.Name, upd.Division, upd.Type, upd.Amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.LoadTransactionsStrict()
	if err != nil {
		return err
	}
	idx := indexOfTransaction(txs, id)
	if idx < 0 {
		return fmt.Errorf("transaction %s: %w", id, ledgererror.ErrRecordNotFound)
	}

	tx := &txs[idx]
	tx.Name = upd.Name
	tx.ClassLabel = upd.ClassLabel
	tx.Division = upd.Division
	tx.Type = upd.Type
	tx.Amount = upd.Amount
	tx.Description = upd.Description
	if upd.ReceiptPath != nil {
		tx.ReceiptPath = *upd.ReceiptPath
	}
	if upd.Latitude != nil {
		tx.Latitude = *upd.Latitude
	}
	if upd.Longitude != nil {
		tx.Longitude = *upd.Longitude
	}

	if err := l.store.SaveTransactions(txs); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", id, err)
	}
	l.logger.Info("Transaction updated", logging.F(logging.FieldTransactionID, id))
	return nil
}

// DeleteTransaction removes the transaction with the given id and reports
// whether one was removed.
func (l *Ledger) DeleteTransaction(id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs, err := l.store.LoadTransactionsStrict()
	if err != nil {
		return false, err
	}
	idx := indexOfTransaction(txs, id)
	if idx < 0 {
		return false, nil
	}
	if err := l.store.SaveTransactions(append(txs[:idx], txs[idx+1:]...)); err != nil {
		return false, fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	l.logger.Info("Transaction deleted", logging.F(logging.FieldTransactionID, id))
	return true, nil
}

func indexOfTransaction(txs []models.Transaction, id string) int {
	for i, tx := range txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func validateStartingBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return ledgererror.NewValidationError("starting_balance", "must not be negative")
	}
	return nil
}

// AddDivision creates a division. It returns false with ErrDuplicateDivision
// when the name is taken.
func (l *Ledger) AddDivision(name string, startingBalance decimal.Decimal) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, ledgererror.NewValidationError("division", "must not be empty")
	}
	if err := validateStartingBalance(startingBalance); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	divs, err := l.store.LoadDivisionsStrict()
	if err != nil {
		return false, err
	}
	if _, ok := findDivision(divs, name); ok {
		l.logger.Warn("Division refused: name already exists", logging.F(logging.FieldDivision, name))
		return false, fmt.Errorf("%w: '%s'", ledgererror.ErrDuplicateDivision, name)
	}

	divs = append(divs, models.Division{Name: name, StartingBalance: startingBalance})
	if err := l.store.SaveDivisions(divs); err != nil {
		return false, fmt.Errorf("failed to save division %s: %w", name, err)
	}
	l.logger.Info("Division created",
		logging.F(logging.FieldDivision, name),
		logging.F(logging.FieldBalance, startingBalance.StringFixed(2)))
	return true, nil
}

// UpdateDivision replaces a division's starting balance. Existing
// transactions are untouched, so the computed balance may go negative.
func (l *Ledger) UpdateDivision(name string, startingBalance decimal.Decimal) (bool, error) {
	if err := validateStartingBalance(startingBalance); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	divs, err := l.store.LoadDivisionsStrict()
	if err != nil {
		return false, err
	}
	for i := range divs {
		if divs[i].Name != name {
			continue
		}
		divs[i].StartingBalance = startingBalance
		if err := l.store.SaveDivisions(divs); err != nil {
			return false, fmt.Errorf("failed to save division %s: %w", name, err)
		}
		l.logger.Info("Division updated",
			logging.F(logging.FieldDivision, name),
			logging.F(logging.FieldBalance, startingBalance.StringFixed(2)))
		return true, nil
	}
	return false, &ledgererror.DivisionNotFoundError{Division: name}
}

// DeleteDivision removes a division. Its transactions stay in the ledger
// with their division name unchanged.
func (l *Ledger) DeleteDivision(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	divs, err := l.store.LoadDivisionsStrict()
	if err != nil {
		return false, err
	}
	for i := range divs {
		if divs[i].Name != name {
			continue
		}
		if err := l.store.SaveDivisions(append(divs[:i], divs[i+1:]...)); err != nil {
			return false, fmt.Errorf("failed to delete division %s: %w", name, err)
		}
		orphaned := len(DivisionTransactions(l.store.LoadTransactions(), name))
		l.logger.Info("Division deleted",
			logging.F(logging.FieldDivision, name),
			logging.F(logging.FieldCount, orphaned))
		return true, nil
	}
	return false, nil
}

func (l *Ledger) snapshot() ([]models.Division, []models.Transaction) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.LoadDivisions(), l.store.LoadTransactions()
}

// Transactions returns all transactions in persisted order.
func (l *Ledger) Transactions() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.LoadTransactions()
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id string) (models.Transaction, error) {
	txs := l.Transactions()
	idx := indexOfTransaction(txs, id)
	if idx < 0 {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", id, ledgererror.ErrRecordNotFound)
	}
	return txs[idx], nil
}

// Divisions returns all divisions in persisted order.
func (l *Ledger) Divisions() []models.Division {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.LoadDivisions()
}

// DivisionNames returns the division names in persisted order.
func (l *Ledger) DivisionNames() []string {
	divs := l.Divisions()
	names := make([]string, 0, len(divs))
	for _, d := range divs {
		names = append(names, d.Name)
	}
	return names
}

// DivisionExists reports whether a division with exactly this name exists.
func (l *Ledger) DivisionExists(name string) bool {
	_, ok := findDivision(l.Divisions(), name)
	return ok
}

// Balance returns the current balance of a division.
func (l *Ledger) Balance(name string) (decimal.Decimal, error) {
	divs, txs := l.snapshot()
	return DivisionBalance(divs, txs, name)
}

// Financials returns the ledger-wide rollup.
func (l *Ledger) Financials() models.Financials {
	divs, txs := l.snapshot()
	return AggregateFinancials(divs, txs)
}

// Summary returns one row per division.
func (l *Ledger) Summary() []models.DivisionSummary {
	divs, txs := l.snapshot()
	return DivisionSummary(divs, txs)
}

// Stats returns the summary and activity counters of a division.
func (l *Ledger) Stats(name string) (models.DivisionStats, error) {
	divs, txs := l.snapshot()
	return DivisionStats(divs, txs, name)
}

// Report bundles the financials and division summary stamped with the clock.
func (l *Ledger) Report() models.LedgerReport {
	divs, txs := l.snapshot()
	return models.LedgerReport{
		GeneratedAt: l.clock.Now().Format(models.TimestampLayout),
		Currency:    models.Currency,
		Financials:  AggregateFinancials(divs, txs),
		Divisions:   DivisionSummary(divs, txs),
	}
}
