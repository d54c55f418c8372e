package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/isseis/go-elf-checksec/internal/safefileio"
)

// ErrInvalidFileType is returned when safefileio hands back something other
// than an *os.File.
var ErrInvalidFileType = errors.New("unexpected file type returned from safefileio")

const (
	logDirPerm  os.FileMode = 0o750
	logFilePerm os.FileMode = 0o600
)

// OpenLogFile opens path for appending, creating it and its directory when
// needed. A symlink anywhere in the path is refused.
func OpenLogFile(fs safefileio.FileSystem, path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := fs.SafeOpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	osFile, ok := file.(*os.File)
	if !ok {
		_ = file.Close()
		return nil, ErrInvalidFileType
	}
	return osFile, nil
}
