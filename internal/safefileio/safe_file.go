package safefileio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/samber/lo"
)

// FileSystem opens files with symlink protection.
type FileSystem interface {
	SafeOpenFile(name string, flag int, perm os.FileMode) (File, error)
}

// File is the subset of *os.File the rest of the module relies on. It is a
// ReadSeeker for sequential decoding and a ReaderAt for random access.
type File interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
}

// FileSystemConfig tunes NewFileSystem.
type FileSystemConfig struct {
	// DisableOpenat2 forces the portable two-phase open even where openat2
	// is available.
	DisableOpenat2 bool
}

type osFS struct {
	openat2Available bool
}

// NewFileSystem returns the OS-backed FileSystem.
func NewFileSystem(cfg FileSystemConfig) FileSystem {
	return &osFS{openat2Available: !cfg.DisableOpenat2 && isOpenat2Available()}
}

// SafeOpenFile opens name after resolving it to an absolute path. The open
// fails with ErrIsSymlink if the final component or any parent directory is
// a symbolic link.
func (fs *osFS) SafeOpenFile(name string, flag int, perm os.FileMode) (File, error) {
	absPath, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilePath, err)
	}
	f, err := fs.safeOpenFileInternal(absPath, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// isNoFollowError reports whether err is the platform's refusal to open a
// symlink with O_NOFOLLOW.
func isNoFollowError(err error) bool {
	var e *os.PathError
	if !errors.As(err, &e) {
		return false
	}
	return lo.SomeBy(noFollowErrnos, func(errno syscall.Errno) bool { return errors.Is(e.Err, errno) })
}

// safeOpenFileFallback opens with O_NOFOLLOW, then walks the parent
// directories with Lstat. A symlink swapped in between the two phases is
// still caught by the second.
func safeOpenFileFallback(absPath string, flag int, perm os.FileMode) (*os.File, error) {
	// #nosec G304 - absPath is cleaned by filepath.Abs and opened with O_NOFOLLOW
	file, err := os.OpenFile(absPath, flag|syscall.O_NOFOLLOW, perm)
	if err != nil {
		switch {
		case isNoFollowError(err):
			return nil, ErrIsSymlink
		case errors.Is(err, os.ErrExist):
			return nil, ErrFileExists
		default:
			return nil, err
		}
	}

	if err := verifyPathComponents(absPath); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("error closing file after path verification failure", slog.Any("error", closeErr))
		}
		return nil, err
	}
	return file, nil
}

// verifyPathComponents checks if any parent directory of absPath is a symlink.
func verifyPathComponents(absPath string) error {
	current := filepath.Dir(absPath)
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return nil
		}

		fi, err := os.Lstat(current)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("failed to stat %s: %w", current, err)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s", ErrIsSymlink, current)
		}

		current = parent
	}
}

// MaxFileSize is the maximum allowed file size for SafeReadFile (128 MB)
const MaxFileSize = 128 * 1024 * 1024

// SafeReadFile reads a regular file of at most MaxFileSize bytes through the
// default FileSystem.
func SafeReadFile(filePath string) ([]byte, error) {
	return SafeReadFileWithFS(filePath, NewFileSystem(FileSystemConfig{}))
}

// SafeReadFileWithFS is SafeReadFile over an explicit FileSystem.
func SafeReadFileWithFS(filePath string, fs FileSystem) ([]byte, error) {
	file, err := fs.SafeOpenFile(filePath, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("error closing file", slog.String("path", filePath), slog.Any("error", closeErr))
		}
	}()

	return readFileContent(file, filePath)
}

// readFileContent reads and validates the content of an already opened file
func readFileContent(file File, filePath string) ([]byte, error) {
	fileInfo, err := ValidateRegularFile(file, filePath)
	if err != nil {
		return nil, err
	}

	if fileInfo.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	content, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if int64(len(content)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return content, nil
}

// ValidateRegularFile stats the open file and rejects anything that is not
// a regular file. Stat goes through the descriptor, not the path.
func ValidateRegularFile(file File, filePath string) (os.FileInfo, error) {
	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file: %s", ErrInvalidFilePath, filePath)
	}

	return fileInfo, nil
}
