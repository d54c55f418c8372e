// Package safefileio opens and reads files without following symbolic links
// anywhere along the path.
package safefileio

import "errors"

// Errors returned by SafeOpenFile and SafeReadFile. Callers match them with
// errors.Is; most are wrapped with the offending path.
var (
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrIsSymlink       = errors.New("refusing to follow symbolic link")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrFileExists      = errors.New("file already exists")
)
