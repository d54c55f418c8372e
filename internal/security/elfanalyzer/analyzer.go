package elfanalyzer

import (
	"fmt"

	"github.com/isseis/go-elf-checksec/internal/elfparse"
)

// AnalysisResult represents the outcome of analyzing one file.
type AnalysisResult int

const (
	// Analyzed indicates the file was decoded and all four checks ran.
	// Options holds the inferred mitigations.
	Analyzed AnalysisResult = iota

	// NotELFBinary indicates that the file is not an ELF binary.
	// This includes scripts, text files, directories and device files.
	NotELFBinary

	// AnalysisError indicates that the file looked like ELF but could not
	// be decoded or checked. Error holds the typed decode error.
	AnalysisError
)

// String returns a string representation of AnalysisResult.
func (r AnalysisResult) String() string {
	switch r {
	case Analyzed:
		return "analyzed"
	case NotELFBinary:
		return "not_elf_binary"
	case AnalysisError:
		return "analysis_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// AnalysisOutput contains the complete result of analyzing one file.
type AnalysisOutput struct {
	// Result is the overall analysis result type
	Result AnalysisResult

	// File is the decoded ELF. Set when Result == Analyzed, and also for
	// AnalysisError when decoding succeeded but a check failed.
	File *elfparse.File

	// Options holds the inferred mitigations when Result == Analyzed.
	Options SecurityOptions

	// Size is the file size in bytes, when it could be determined.
	Size int64

	// ContentHash is "sha256:<hex>" of the file contents when hashing is
	// enabled and the file was analyzed.
	ContentHash string

	// Error contains the error details when Result == AnalysisError.
	// May also be set for NotELFBinary to say why (e.g. not a regular file).
	Error error
}

// ELFAnalyzer defines the interface for ELF mitigation analysis.
type ELFAnalyzer interface {
	// AnalyzeFile opens the file at path, decodes it and infers its
	// security options.
	//
	// Returns:
	//   - Analyzed: Options is populated
	//   - NotELFBinary: File is not an ELF binary
	//   - AnalysisError: An error occurred (check Error field)
	AnalyzeFile(path string) AnalysisOutput
}
