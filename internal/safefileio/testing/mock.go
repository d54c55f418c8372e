// Package testing provides test doubles for the safefileio package.
package testing

import (
	"errors"
	"os"
	"sync"

	"github.com/isseis/go-elf-checksec/internal/safefileio"
)

// ErrNoOpenFunc is returned by MockFileSystem when the test set no
// SafeOpenFileFunc.
var ErrNoOpenFunc = errors.New("mock file system has no SafeOpenFileFunc")

// MockFileSystem implements safefileio.FileSystem and records every open.
// It is safe for concurrent use, so it can back a scanner.
type MockFileSystem struct {
	SafeOpenFileFunc func(name string, flag int, perm os.FileMode) (safefileio.File, error)

	mu        sync.Mutex
	OpenCalls []string
}

// NewMockFileSystem returns a mock whose opens fail with ErrNoOpenFunc.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{}
}

// PassThrough returns a mock that opens real files with os.OpenFile,
// bypassing the symlink checks.
func PassThrough() *MockFileSystem {
	return &MockFileSystem{
		SafeOpenFileFunc: func(name string, flag int, perm os.FileMode) (safefileio.File, error) {
			f, err := os.OpenFile(name, flag, perm) //nolint:gosec // test double
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

// SafeOpenFile implements safefileio.FileSystem.
func (m *MockFileSystem) SafeOpenFile(name string, flag int, perm os.FileMode) (safefileio.File, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, name)
	m.mu.Unlock()

	if m.SafeOpenFileFunc == nil {
		return nil, ErrNoOpenFunc
	}
	return m.SafeOpenFileFunc(name, flag, perm)
}

// Calls returns a copy of the names opened so far.
func (m *MockFileSystem) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.OpenCalls...)
}
