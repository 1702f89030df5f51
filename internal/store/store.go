// Package store persists the ledger's two record collections as CSV files.
//
// Every save rewrites the whole collection through a temporary file that is
// renamed over the target, so a crash leaves either the old or the new file,
// never a truncated one. Loads are lenient: a missing or unreadable file is
// reported as an empty collection. Writers use the strict variants instead,
// which refuse to hand back a partial view of a file that exists but does
// not parse, so a rewrite can never replace history it failed to read.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"

	"github.com/gocarina/gocsv"
)

// LedgerStore manages loading and saving of transactions.csv and divisions.csv
type LedgerStore struct {
	TransactionsFile string
	DivisionsFile    string
	Delimiter        rune

	logger logging.Logger
}

// NewLedgerStore creates a store over the two collection files. A zero
// delimiter means ','.
func NewLedgerStore(transactionsFile, divisionsFile string, delimiter rune, logger logging.Logger) *LedgerStore {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &LedgerStore{
		TransactionsFile: transactionsFile,
		DivisionsFile:    divisionsFile,
		Delimiter:        delimiter,
		logger:           logger.WithField(logging.FieldOperation, "store"),
	}
}

// Init makes sure both collection files exist with their canonical header
// and brings older files up to the current schema. Safe to call repeatedly.
func (s *LedgerStore) Init() error {
	for _, f := range []struct {
		path   string
		header []string
	}{
		{s.TransactionsFile, models.TransactionColumns},
		{s.DivisionsFile, models.DivisionColumns},
	} {
		if err := os.MkdirAll(filepath.Dir(f.path), models.PermissionDirectory); err != nil {
			return &ledgererror.StorageError{Op: "mkdir", Path: filepath.Dir(f.path), Err: err}
		}
		if _, err := os.Stat(f.path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return &ledgererror.StorageError{Op: "stat", Path: f.path, Err: err}
		}

		if err := s.writeAtomic(f.path, func(w *csv.Writer) error { return w.Write(f.header) }); err != nil {
			return err
		}
		s.logger.Info("Created ledger file", logging.F(logging.FieldFile, f.path))
	}

	return s.migrate()
}

// LoadTransactions returns the persisted transactions in file order.
func (s *LedgerStore) LoadTransactions() []models.Transaction {
	rows, err := readRows[models.Transaction](s, s.TransactionsFile)
	if err != nil {
		s.logLoadFailure(s.TransactionsFile, err)
		return []models.Transaction{}
	}
	s.logger.Debug("Loaded transactions",
		logging.F(logging.FieldFile, s.TransactionsFile),
		logging.F(logging.FieldCount, len(rows)))
	return rows
}

// LoadDivisions returns the persisted divisions in file order.
func (s *LedgerStore) LoadDivisions() []models.Division {
	rows, err := readRows[models.Division](s, s.DivisionsFile)
	if err != nil {
		s.logLoadFailure(s.DivisionsFile, err)
		return []models.Division{}
	}
	s.logger.Debug("Loaded divisions",
		logging.F(logging.FieldFile, s.DivisionsFile),
		logging.F(logging.FieldCount, len(rows)))
	return rows
}

// LoadTransactionsStrict is LoadTransactions for writers. A missing or empty
// file is still an empty collection, but a file that fails to parse is a
// *ledgererror.StorageError.
func (s *LedgerStore) LoadTransactionsStrict() ([]models.Transaction, error) {
	return readRowsStrict[models.Transaction](s, s.TransactionsFile)
}

// LoadDivisionsStrict is LoadDivisions for writers.
func (s *LedgerStore) LoadDivisionsStrict() ([]models.Division, error) {
	return readRowsStrict[models.Division](s, s.DivisionsFile)
}

func readRowsStrict[T any](s *LedgerStore, path string) ([]T, error) {
	rows, err := readRows[T](s, path)
	switch {
	case err == nil:
		return rows, nil
	case errors.Is(err, os.ErrNotExist), errors.Is(err, gocsv.ErrEmptyCSVFile):
		return []T{}, nil
	default:
		s.logger.WithError(err).Error("Ledger file unreadable, refusing to rewrite it",
			logging.F(logging.FieldFile, path))
		return nil, &ledgererror.StorageError{Op: "load", Path: path, Err: err}
	}
}

// SaveTransactions replaces the whole transactions collection.
func (s *LedgerStore) SaveTransactions(txs []models.Transaction) error {
	if err := writeRows(s, s.TransactionsFile, models.TransactionColumns, txs); err != nil {
		return err
	}
	s.logger.Debug("Saved transactions",
		logging.F(logging.FieldFile, s.TransactionsFile),
		logging.F(logging.FieldCount, len(txs)))
	return nil
}

// SaveDivisions replaces the whole divisions collection.
func (s *LedgerStore) SaveDivisions(divs []models.Division) error {
	if err := writeRows(s, s.DivisionsFile, models.DivisionColumns, divs); err != nil {
		return err
	}
	s.logger.Debug("Saved divisions",
		logging.F(logging.FieldFile, s.DivisionsFile),
		logging.F(logging.FieldCount, len(divs)))
	return nil
}

func (s *LedgerStore) logLoadFailure(path string, err error) {
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Debug("Ledger file missing, using empty collection", logging.F(logging.FieldFile, path))
	case errors.Is(err, gocsv.ErrEmptyCSVFile):
		s.logger.Debug("Ledger file empty, using empty collection", logging.F(logging.FieldFile, path))
	default:
		s.logger.WithError(err).Warn("Ledger file unreadable, using empty collection",
			logging.F(logging.FieldFile, path))
	}
}

func (s *LedgerStore) newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = s.Delimiter
	reader.FieldsPerRecord = -1
	return reader
}

// readRows decodes a CSV file into a slice of T using the csv struct tags.
func readRows[T any](s *LedgerStore, path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []T
	if err := gocsv.UnmarshalCSV(s.newReader(file), &rows); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// writeRows marshals rows under header. An empty collection still gets its header.
func writeRows[T any](s *LedgerStore, path string, header []string, rows []T) error {
	return s.writeAtomic(path, func(w *csv.Writer) error {
		if len(rows) == 0 {
			return w.Write(header)
		}
		return gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w))
	})
}

// writeAtomic writes through a temp file in the target directory and renames it into place.
func (s *LedgerStore) writeAtomic(path string, write func(*csv.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return &ledgererror.StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &ledgererror.StorageError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	w.Comma = s.Delimiter
	if err = write(w); err != nil {
		return &ledgererror.StorageError{Op: "encode", Path: path, Err: err}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return &ledgererror.StorageError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &ledgererror.StorageError{Op: "sync", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &ledgererror.StorageError{Op: "close", Path: path, Err: err}
	}
	if err = os.Chmod(tmpName, models.PermissionDataFile); err != nil {
		return &ledgererror.StorageError{Op: "chmod", Path: path, Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &ledgererror.StorageError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
