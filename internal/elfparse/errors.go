package elfparse

import (
	"errors"
	"fmt"
)

// Static errors
var (
	// ErrNotELF indicates the first four bytes are not the ELF magic number.
	// Nothing past the magic is read when this error is returned.
	ErrNotELF = errors.New("file is not an ELF binary")

	// ErrSectionIndexOutOfRange indicates a section index beyond the section header table.
	ErrSectionIndexOutOfRange = errors.New("section index out of range")
)

// TruncatedError indicates the byte source ended before a fixed-size field or
// region could be read completely.
type TruncatedError struct {
	// Structure is the structure being decoded (e.g. "ELF header", "program header 3").
	Structure string
	// Field is the field or region that could not be read.
	Field string
	// Offset is the file offset the read was attempted at, when known.
	Offset int64
	// Err is the underlying I/O error.
	Err error
}

func (e *TruncatedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("truncated %s: cannot read %s at offset %d: %v", e.Structure, e.Field, e.Offset, e.Err)
	}
	return fmt.Sprintf("truncated %s: cannot read %s at offset %d", e.Structure, e.Field, e.Offset)
}

func (e *TruncatedError) Unwrap() error {
	return e.Err
}

// InvalidEnumerantError indicates a tag value outside the known value set of its enum.
type InvalidEnumerantError struct {
	Field string
	Value uint64
}

func (e *InvalidEnumerantError) Error() string {
	return fmt.Sprintf("invalid %s: %#x", e.Field, e.Value)
}

// MissingStructureError indicates that a required program or section header
// entry is absent.
type MissingStructureError struct {
	Structure string
}

func (e *MissingStructureError) Error() string {
	return fmt.Sprintf("missing required structure: %s", e.Structure)
}

// UnsupportedEncodingError indicates a legal but undecodable data encoding.
// Only little-endian files are decoded.
type UnsupportedEncodingError struct {
	Data Data
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported data encoding: %s", e.Data)
}
