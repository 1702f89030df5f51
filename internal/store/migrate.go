package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"
)

// SchemaVersion is the schema written by this version of the store.
const SchemaVersion = 2

// SchemaVersionFile holds the last applied schema version, next to transactions.csv.
const SchemaVersionFile = "schema_version"

type migration struct {
	version int
	name    string
	fn      func(*LedgerStore) error
}

// Upgrades in the order they must be applied. Version 1 is the original
// nine-column transactions file.
var migrations = []migration{
	{2, "add_transaction_coordinates", addTransactionCoordinates},
}

// SchemaVersionPath is where the applied schema version is recorded.
func (s *LedgerStore) SchemaVersionPath() string {
	return filepath.Join(filepath.Dir(s.TransactionsFile), SchemaVersionFile)
}

// CurrentSchemaVersion reads the recorded schema version; 1 when none was recorded.
func (s *LedgerStore) CurrentSchemaVersion() (int, error) {
	data, err := os.ReadFile(s.SchemaVersionPath())
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, &ledgererror.StorageError{Op: "read", Path: s.SchemaVersionPath(), Err: err}
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version file %s: %w", s.SchemaVersionPath(), err)
	}
	return v, nil
}

func (s *LedgerStore) migrate() error {
	current, err := s.CurrentSchemaVersion()
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("ledger schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		s.logger.Info("Applying schema upgrade",
			logging.F("migration", m.name),
			logging.F(logging.FieldVersion, m.version))
		if err := m.fn(s); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		if err := s.recordSchemaVersion(m.version); err != nil {
			return err
		}
		current = m.version
	}
	return nil
}

func (s *LedgerStore) recordSchemaVersion(v int) error {
	path := s.SchemaVersionPath()
	if err := os.WriteFile(path, []byte(strconv.Itoa(v)+"\n"), models.PermissionDataFile); err != nil {
		return &ledgererror.StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// addTransactionCoordinates appends empty latitude/longitude columns to a
// transactions file written before location capture existed.
func addTransactionCoordinates(s *LedgerStore) error {
	file, err := os.Open(s.TransactionsFile)
	if err != nil {
		return &ledgererror.StorageError{Op: "open", Path: s.TransactionsFile, Err: err}
	}
	records, err := s.newReader(file).ReadAll()
	file.Close()
	if err != nil {
		// Unreadable files load as empty; the next save rewrites them whole.
		s.logger.WithError(err).Warn("Skipping coordinate backfill of unreadable file",
			logging.F(logging.FieldFile, s.TransactionsFile))
		return nil
	}
	if len(records) == 0 {
		return s.writeAtomic(s.TransactionsFile, func(w *csv.Writer) error {
			return w.Write(models.TransactionColumns)
		})
	}

	header := records[0]
	var missing []string
	for _, col := range []string{"latitude", "longitude"} {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	width := len(header) + len(missing)
	records[0] = append(header, missing...)
	for i := 1; i < len(records); i++ {
		for len(records[i]) < width {
			records[i] = append(records[i], "")
		}
	}

	s.logger.Info("Backfilled transaction coordinates",
		logging.F(logging.FieldFile, s.TransactionsFile),
		logging.F(logging.FieldCount, len(records)-1))
	return s.writeAtomic(s.TransactionsFile, func(w *csv.Writer) error {
		return w.WriteAll(records)
	})
}
