package store

import (
	"sync"

	"fjacquet/divledger/internal/models"
)

// MockLedgerStore is an in-memory implementation of the ledger store for testing.
type MockLedgerStore struct {
	mu           sync.Mutex
	Transactions []models.Transaction
	Divisions    []models.Division

	// Error flags for testing error conditions
	InitError             error
	LoadError             error
	SaveTransactionsError error
	SaveDivisionsError    error

	SaveTransactionsCalls int
	SaveDivisionsCalls    int
}

// Init returns InitError.
func (m *MockLedgerStore) Init() error {
	return m.InitError
}

// LoadTransactions returns a copy of the mock transactions.
func (m *MockLedgerStore) LoadTransactions() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction{}, m.Transactions...)
}

// LoadDivisions returns a copy of the mock divisions.
func (m *MockLedgerStore) LoadDivisions() []models.Division {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Division{}, m.Divisions...)
}

// LoadTransactionsStrict returns LoadError or a copy of the mock transactions.
func (m *MockLedgerStore) LoadTransactionsStrict() ([]models.Transaction, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return m.LoadTransactions(), nil
}

// LoadDivisionsStrict returns LoadError or a copy of the mock divisions.
func (m *MockLedgerStore) LoadDivisionsStrict() ([]models.Division, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return m.LoadDivisions(), nil
}

// SaveTransactions replaces the mock transactions unless SaveTransactionsError is set.
func (m *MockLedgerStore) SaveTransactions(txs []models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveTransactionsCalls++
	if m.SaveTransactionsError != nil {
		return m.SaveTransactionsError
	}
	m.Transactions = append([]models.Transaction{}, txs...)
	return nil
}

// SaveDivisions replaces the mock divisions unless SaveDivisionsError is set.
func (m *MockLedgerStore) SaveDivisions(divs []models.Division) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveDivisionsCalls++
	if m.SaveDivisionsError != nil {
		return m.SaveDivisionsError
	}
	m.Divisions = append([]models.Division{}, divs...)
	return nil
}
