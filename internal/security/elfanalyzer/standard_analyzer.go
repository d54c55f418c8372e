package elfanalyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/isseis/go-elf-checksec/internal/elfparse"
	"github.com/isseis/go-elf-checksec/internal/safefileio"
)

// DefaultMaxFileSize is the maximum file size for ELF analysis (1 GB).
const DefaultMaxFileSize = 1 << 30

// contentHashPrefix names the algorithm in AnalysisOutput.ContentHash.
const contentHashPrefix = "sha256:"

// Config tunes StandardELFAnalyzer.
type Config struct {
	// MaxFileSize rejects larger files. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// HashContent fills AnalysisOutput.ContentHash for analyzed files.
	HashContent bool
}

// StandardELFAnalyzer implements ELFAnalyzer on top of elfparse.
type StandardELFAnalyzer struct {
	fs  safefileio.FileSystem
	cfg Config
}

// NewStandardELFAnalyzer creates a new StandardELFAnalyzer with the given file system.
// If fs is nil, the default safefileio.FileSystem is used.
func NewStandardELFAnalyzer(fs safefileio.FileSystem, cfg Config) *StandardELFAnalyzer {
	if fs == nil {
		fs = safefileio.NewFileSystem(safefileio.FileSystemConfig{})
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &StandardELFAnalyzer{fs: fs, cfg: cfg}
}

// AnalyzeFile implements ELFAnalyzer interface.
func (a *StandardELFAnalyzer) AnalyzeFile(path string) AnalysisOutput {
	// Step 1: Open file safely and validate it is a regular file of
	// acceptable size
	file, size, err := a.open(path)
	if err != nil {
		if errors.Is(err, ErrNotRegularFile) {
			return AnalysisOutput{Result: NotELFBinary, Error: err}
		}
		return AnalysisOutput{Result: AnalysisError, Size: size, Error: err}
	}
	defer a.closeFile(path, file)

	// Step 2: Decode. A magic mismatch, including files shorter than the
	// magic itself, means the file is simply not ELF.
	elfFile, err := elfparse.Decode(file)
	if err != nil {
		if errors.Is(err, elfparse.ErrNotELF) {
			return AnalysisOutput{Result: NotELFBinary, Size: size}
		}
		return AnalysisOutput{
			Result: AnalysisError,
			Size:   size,
			Error:  fmt.Errorf("failed to decode ELF: %w", err),
		}
	}

	// Step 3: Infer mitigations
	opts, err := InferSecurityOptions(elfFile, file)
	if err != nil {
		return AnalysisOutput{
			Result: AnalysisError,
			File:   elfFile,
			Size:   size,
			Error:  err,
		}
	}

	output := AnalysisOutput{
		Result:  Analyzed,
		File:    elfFile,
		Options: opts,
		Size:    size,
	}

	// Step 4: Hash the same open file
	if a.cfg.HashContent {
		hash, err := hashContent(file)
		if err != nil {
			return AnalysisOutput{
				Result: AnalysisError,
				File:   elfFile,
				Size:   size,
				Error:  err,
			}
		}
		output.ContentHash = hash
	}

	return output
}

// Inspection is the decoded structure of one ELF file, with section names
// resolved.
type Inspection struct {
	File *elfparse.File
	// SectionNames is parallel to File.Sections. Names are empty when the
	// file has no section name string table.
	SectionNames []string
	Size         int64
}

// Inspect opens path like AnalyzeFile and decodes it without inferring
// mitigations. A missing section name string table is not an error.
func (a *StandardELFAnalyzer) Inspect(path string) (*Inspection, error) {
	file, size, err := a.open(path)
	if err != nil {
		return nil, err
	}
	defer a.closeFile(path, file)

	elfFile, err := elfparse.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ELF: %w", err)
	}

	strtab, err := elfFile.SectionNameTable(file)
	if err != nil {
		var missing *elfparse.MissingStructureError
		if !errors.As(err, &missing) {
			return nil, err
		}
		slog.Debug("no section name string table", slog.String("path", path))
	}

	names := make([]string, len(elfFile.Sections))
	for i, s := range elfFile.Sections {
		names[i] = elfFile.SectionName(strtab, s)
	}
	return &Inspection{File: elfFile, SectionNames: names, Size: size}, nil
}

// open returns the safely opened file and its size. Non-regular files fail
// with ErrNotRegularFile, oversized files with ErrFileTooLarge.
func (a *StandardELFAnalyzer) open(path string) (safefileio.File, int64, error) {
	file, err := a.fs.SafeOpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		a.closeFile(path, file)
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		a.closeFile(path, file)
		return nil, 0, fmt.Errorf("%w: %s", ErrNotRegularFile, fileInfo.Mode())
	}

	size := fileInfo.Size()
	if size > a.cfg.MaxFileSize {
		a.closeFile(path, file)
		return nil, size, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, a.cfg.MaxFileSize)
	}
	return file, size, nil
}

func (a *StandardELFAnalyzer) closeFile(path string, file safefileio.File) {
	if closeErr := file.Close(); closeErr != nil {
		slog.Warn("error closing file during ELF analysis", slog.String("path", path), slog.Any("error", closeErr))
	}
}

func hashContent(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek for hashing: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return contentHashPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
