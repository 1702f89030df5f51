// Package receipt stores uploaded receipt files and hands back the path the
// ledger records. The ledger never reads receipt contents.
package receipt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"
	"fjacquet/divledger/internal/store"
)

// FilePrefixLayout is the timestamp prefix of stored receipt names.
const FilePrefixLayout = "20060102_150405"

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("receipt exceeds size limit")

// Store saves receipts under Dir.
type Store struct {
	Dir      string
	MaxBytes int64 // zero means unlimited

	clock  store.Clock
	logger logging.Logger
}

// NewStore creates a receipt store rooted at dir.
func NewStore(dir string, maxBytes int64, clock store.Clock, logger logging.Logger) *Store {
	if clock == nil {
		clock = store.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Store{
		Dir:      dir,
		MaxBytes: maxBytes,
		clock:    clock,
		logger:   logger.WithField(logging.FieldOperation, "receipt"),
	}
}

// EnsureDirectoryExists creates the receipts directory if it doesn't exist
func (s *Store) EnsureDirectoryExists() error {
	if err := os.MkdirAll(s.Dir, models.PermissionDirectory); err != nil {
		return &ledgererror.StorageError{Op: "mkdir", Path: s.Dir, Err: err}
	}
	return nil
}

// Save copies r to <Dir>/<YYYYMMDD_HHMMSS>_<base name> and returns that path.
// When the name is already taken within the same second a numeric suffix is added.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	if err := s.EnsureDirectoryExists(); err != nil {
		return "", err
	}

	base := SanitizeName(name)
	prefix := s.clock.Now().Format(FilePrefixLayout)
	file, path, err := s.create(prefix, base)
	if err != nil {
		return "", err
	}

	src := r
	if s.MaxBytes > 0 {
		src = io.LimitReader(r, s.MaxBytes+1)
	}
	written, err := io.Copy(file, src)
	if err == nil && s.MaxBytes > 0 && written > s.MaxBytes {
		err = fmt.Errorf("%w (%d bytes)", ErrTooLarge, s.MaxBytes)
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = &ledgererror.StorageError{Op: "close", Path: path, Err: cerr}
	}
	if err != nil {
		_ = os.Remove(path)
		if !errors.Is(err, ErrTooLarge) {
			var se *ledgererror.StorageError
			if !errors.As(err, &se) {
				err = &ledgererror.StorageError{Op: "write", Path: path, Err: err}
			}
		}
		return "", err
	}

	s.logger.Info("Receipt stored",
		logging.F(logging.FieldFile, path),
		logging.F("bytes", written))
	return path, nil
}

func (s *Store) create(prefix, base string) (*os.File, string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < 100; i++ {
		name := prefix + "_" + base
		if i > 0 {
			name = fmt.Sprintf("%s_%s-%d%s", prefix, stem, i, ext)
		}
		path := filepath.Join(s.Dir, name)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, models.PermissionReceipt)
		if err == nil {
			return file, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", &ledgererror.StorageError{Op: "create", Path: path, Err: err}
		}
	}
	return nil, "", &ledgererror.StorageError{Op: "create", Path: filepath.Join(s.Dir, prefix+"_"+base), Err: os.ErrExist}
}

// SanitizeName reduces an uploaded file name to a safe base name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := strings.TrimSpace(filepath.Base(name))
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "receipt"
	}
	return base
}

// Remove deletes a stored receipt. Paths outside Dir are refused.
func (s *Store) Remove(path string) error {
	rel, err := filepath.Rel(s.Dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return fmt.Errorf("refusing to remove %s: not a stored receipt", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &ledgererror.StorageError{Op: "remove", Path: path, Err: err}
	}
	s.logger.Debug("Receipt removed", logging.F(logging.FieldFile, path))
	return nil
}
