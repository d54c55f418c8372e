package elfanalyzer

import (
	"errors"
	"fmt"

	"github.com/isseis/go-elf-checksec/internal/elfparse"
)

// Static errors for linter compliance (err113).
var (
	// ErrNotRegularFile indicates the file is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrFileTooLarge indicates the file exceeds the maximum size for analysis.
	ErrFileTooLarge = errors.New("file too large")
)

// UnsupportedObjectTypeError indicates an object type for which PIE cannot be
// decided (relocatable objects, core dumps, OS- or processor-specific types).
type UnsupportedObjectTypeError struct {
	Type elfparse.Type
}

func (e *UnsupportedObjectTypeError) Error() string {
	return fmt.Sprintf("cannot determine PIE for object type %s", e.Type)
}
