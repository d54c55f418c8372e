//go:build !linux

package safefileio

import "os"

// openat2 is Linux only.
func isOpenat2Available() bool { return false }

func (fs *osFS) safeOpenFileInternal(absPath string, flag int, perm os.FileMode) (*os.File, error) {
	return safeOpenFileFallback(absPath, flag, perm)
}
