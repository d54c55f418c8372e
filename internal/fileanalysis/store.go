package fileanalysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const (
	// filePermission is the permission mode for analysis record files.
	filePermission = 0o600

	// dirPermission is the permission mode for analysis result directory.
	dirPermission = 0o750

	recordExt = ".json"
)

// Store manages analysis record files in one directory. Record file names
// are the SHA-256 of the analyzed file's absolute path.
type Store struct {
	fs          afero.Fs
	analysisDir string
	now         func() time.Time
}

// NewStore creates a new Store on fs. If analysisDir does not exist, it
// will be created with mode 0o750.
func NewStore(fs afero.Fs, analysisDir string) (*Store, error) {
	info, err := fs.Stat(analysisDir)
	switch {
	case os.IsNotExist(err):
		if err := fs.MkdirAll(analysisDir, dirPermission); err != nil {
			return nil, fmt.Errorf("failed to create analysis result directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to access analysis result directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrAnalysisDirNotDirectory, analysisDir)
	}

	return &Store{fs: fs, analysisDir: analysisDir, now: time.Now}, nil
}

// Load loads the analysis record for the given file path.
// Returns ErrRecordNotFound if the analysis record file does not exist.
func (s *Store) Load(filePath string) (*Record, error) {
	recordPath, err := s.RecordPath(filePath)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, recordPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read analysis record file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &RecordCorruptedError{Path: recordPath, Cause: err}
	}

	if record.SchemaVersion != CurrentSchemaVersion {
		return nil, &SchemaVersionMismatchError{
			Path:     recordPath,
			Expected: CurrentSchemaVersion,
			Actual:   record.SchemaVersion,
		}
	}

	return &record, nil
}

// Save overwrites the record for filePath. The record is written to a
// temporary file and renamed into place, so readers never see a partial
// record.
func (s *Store) Save(filePath string, record *Record) error {
	recordPath, err := s.RecordPath(filePath)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	record.SchemaVersion = CurrentSchemaVersion
	record.FilePath = absPath
	record.UpdatedAt = s.now().UTC()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.analysisDir, ".record-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary record file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("failed to remove temporary record file", slog.String("path", tmpName), slog.Any("error", rmErr))
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write analysis record file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close analysis record file: %w", err)
	}
	if err := s.fs.Chmod(tmpName, filePermission); err != nil {
		cleanup()
		return fmt.Errorf("failed to set analysis record permissions: %w", err)
	}
	if err := s.fs.Rename(tmpName, recordPath); err != nil {
		cleanup()
		return fmt.Errorf("failed to move analysis record into place: %w", err)
	}
	return nil
}

// Update performs a read-modify-write operation on the analysis record.
// The updateFn receives the existing record (or a new empty one if not found)
// and should modify it in place.
//
// Error Handling:
//   - ErrRecordNotFound: creates a new record
//   - RecordCorruptedError: creates a new record (overwriting corrupted data)
//   - SchemaVersionMismatchError: returns error without overwriting
func (s *Store) Update(filePath string, updateFn func(*Record) error) error {
	record, err := s.Load(filePath)
	if err != nil {
		var corrupted *RecordCorruptedError
		switch {
		case errors.As(err, new(*SchemaVersionMismatchError)):
			return fmt.Errorf("cannot update record: %w", err)
		case errors.Is(err, ErrRecordNotFound):
			record = &Record{}
		case errors.As(err, &corrupted):
			slog.Warn("replacing corrupted analysis record", slog.String("path", corrupted.Path), slog.Any("error", corrupted.Cause))
			record = &Record{}
		default:
			return fmt.Errorf("failed to load existing record: %w", err)
		}
	}

	if err := updateFn(record); err != nil {
		return err
	}

	return s.Save(filePath, record)
}

// RecordPath returns the analysis record file path for the given file.
func (s *Store) RecordPath(filePath string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	sum := sha256.Sum256([]byte(absPath))
	return filepath.Join(s.analysisDir, hex.EncodeToString(sum[:])+recordExt), nil
}
