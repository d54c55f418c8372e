package fileanalysis

import (
	"time"

	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

const (
	// CurrentSchemaVersion is the current analysis record schema version.
	// Increment this when making breaking changes to the analysis record format.
	CurrentSchemaVersion = 1
)

// Record is the stored result of the latest check of one file.
type Record struct {
	// SchemaVersion identifies the analysis record format version.
	SchemaVersion int `json:"schema_version"`

	// RunID is the ULID of the check run that last wrote the record.
	RunID string `json:"run_id"`

	// FilePath is the absolute path to the analyzed file.
	FilePath string `json:"file_path"`

	// ContentHash is "sha256:<64-char-hex>" of the file content. Empty when
	// the file could not be analyzed.
	ContentHash string `json:"content_hash,omitempty"`

	// UpdatedAt is when the analysis record was last updated.
	UpdatedAt time.Time `json:"updated_at"`

	// Result is the elfanalyzer.AnalysisResult name.
	Result string `json:"result"`

	// Error is the analysis failure, when Result is analysis_error.
	Error string `json:"error,omitempty"`

	// Header summarizes the decoded ELF header (optional).
	Header *HeaderSummary `json:"header,omitempty"`

	// Security holds the inferred mitigations (optional).
	Security *elfanalyzer.SecurityOptions `json:"security,omitempty"`

	// Violations lists unmet policy requirements as "mitigation: expected X, got Y".
	Violations []string `json:"violations,omitempty"`
}

// HeaderSummary is the part of the ELF header worth keeping between runs.
type HeaderSummary struct {
	Class    string `json:"class"`
	Type     string `json:"type"`
	Machine  string `json:"machine"`
	Entry    uint64 `json:"entry"`
	Segments int    `json:"segments"`
	Sections int    `json:"sections"`
}
