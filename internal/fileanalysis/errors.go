// Package fileanalysis stores one JSON analysis record per checked file.
package fileanalysis

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound means no record has been saved for the file yet.
	ErrRecordNotFound = errors.New("no analysis record for file")

	// ErrAnalysisDirNotDirectory means the record directory path exists
	// but is something else.
	ErrAnalysisDirNotDirectory = errors.New("record directory is not a directory")
)

// SchemaVersionMismatchError is returned for a record written by another
// version of the tool. Such records are left untouched.
type SchemaVersionMismatchError struct {
	Path     string
	Expected int
	Actual   int
}

func (e *SchemaVersionMismatchError) Error() string {
	return fmt.Sprintf("record %s has schema version %d, this build reads version %d", e.Path, e.Actual, e.Expected)
}

// RecordCorruptedError is returned when a record file is not valid JSON.
type RecordCorruptedError struct {
	Path  string
	Cause error
}

func (e *RecordCorruptedError) Error() string {
	return fmt.Sprintf("record %s is corrupted: %v", e.Path, e.Cause)
}

func (e *RecordCorruptedError) Unwrap() error {
	return e.Cause
}
