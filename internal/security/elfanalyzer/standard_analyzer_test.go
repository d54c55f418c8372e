package elfanalyzer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isseis/go-elf-checksec/internal/elfparse"
	elftest "github.com/isseis/go-elf-checksec/internal/elfparse/testing"
	"github.com/isseis/go-elf-checksec/internal/safefileio"
	safefileiotesting "github.com/isseis/go-elf-checksec/internal/safefileio/testing"
)

// tempDir returns a temporary directory with symlinks resolved, since the
// analyzer refuses symlinked parents.
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestStandardELFAnalyzer_AnalyzeFile(t *testing.T) {
	dir := tempDir(t)

	pie := elftest.HardenedExecutable()
	pie.Type = elftest.TypeDyn

	noStack := elftest.HardenedExecutable()
	noStack.Progs = noStack.Progs[:1]

	bigEndian := elftest.NewImage64()
	bigEndian.Data = elftest.DataMSB

	tests := []struct {
		name           string
		path           func(t *testing.T) string
		expectedResult AnalysisResult
		checkOutput    func(t *testing.T, out AnalysisOutput)
	}{
		{
			name: "hardened executable",
			path: func(t *testing.T) string {
				return elftest.HardenedExecutable().Build().WriteFile(t, dir, "hardened")
			},
			expectedResult: Analyzed,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				assert.Equal(t, SecurityOptions{Canary: true, NX: true, RELRO: RelroFull}, out.Options)
				require.NotNil(t, out.File)
				assert.Equal(t, elfparse.Class64, out.File.Header.Class())
				assert.Positive(t, out.Size)
				assert.Empty(t, out.ContentHash)
			},
		},
		{
			name: "position independent executable",
			path: func(t *testing.T) string {
				return pie.Build().WriteFile(t, dir, "pie")
			},
			expectedResult: Analyzed,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				assert.True(t, out.Options.PIE)
			},
		},
		{
			name: "shell script",
			path: func(t *testing.T) string {
				path := filepath.Join(dir, "script.sh")
				require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o600))
				return path
			},
			expectedResult: NotELFBinary,
		},
		{
			name: "empty file",
			path: func(t *testing.T) string {
				path := filepath.Join(dir, "empty")
				require.NoError(t, os.WriteFile(path, nil, 0o600))
				return path
			},
			expectedResult: NotELFBinary,
		},
		{
			name: "directory",
			path: func(t *testing.T) string {
				path := filepath.Join(dir, "subdir")
				require.NoError(t, os.Mkdir(path, 0o755))
				return path
			},
			expectedResult: NotELFBinary,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				assert.ErrorIs(t, out.Error, ErrNotRegularFile)
			},
		},
		{
			name: "truncated ELF",
			path: func(t *testing.T) string {
				data := elftest.HardenedExecutable().Build().Bytes[:40]
				path := filepath.Join(dir, "truncated")
				require.NoError(t, os.WriteFile(path, data, 0o600))
				return path
			},
			expectedResult: AnalysisError,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				var truncErr *elfparse.TruncatedError
				assert.ErrorAs(t, out.Error, &truncErr)
				assert.Nil(t, out.File)
			},
		},
		{
			name: "big-endian ELF",
			path: func(t *testing.T) string {
				return bigEndian.Build().WriteFile(t, dir, "bigendian")
			},
			expectedResult: AnalysisError,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				var encErr *elfparse.UnsupportedEncodingError
				assert.ErrorAs(t, out.Error, &encErr)
			},
		},
		{
			name: "missing stack segment",
			path: func(t *testing.T) string {
				return noStack.Build().WriteFile(t, dir, "nostack")
			},
			expectedResult: AnalysisError,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				var missing *elfparse.MissingStructureError
				assert.ErrorAs(t, out.Error, &missing)
				assert.NotNil(t, out.File)
			},
		},
		{
			name: "symlink",
			path: func(t *testing.T) string {
				target := elftest.HardenedExecutable().Build().WriteFile(t, dir, "target")
				link := filepath.Join(dir, "link")
				require.NoError(t, os.Symlink(target, link))
				return link
			},
			expectedResult: AnalysisError,
			checkOutput: func(t *testing.T, out AnalysisOutput) {
				assert.ErrorIs(t, out.Error, safefileio.ErrIsSymlink)
			},
		},
	}

	analyzer := NewStandardELFAnalyzer(nil, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := analyzer.AnalyzeFile(tt.path(t))
			assert.Equal(t, tt.expectedResult, out.Result, "error: %v", out.Error)
			if tt.checkOutput != nil {
				tt.checkOutput(t, out)
			}
		})
	}
}

func TestStandardELFAnalyzer_FileTooLarge(t *testing.T) {
	path := elftest.HardenedExecutable().Build().WriteFile(t, tempDir(t), "hardened")

	analyzer := NewStandardELFAnalyzer(nil, Config{MaxFileSize: 64})
	out := analyzer.AnalyzeFile(path)

	assert.Equal(t, AnalysisError, out.Result)
	assert.ErrorIs(t, out.Error, ErrFileTooLarge)
}

func TestStandardELFAnalyzer_ContentHash(t *testing.T) {
	dir := tempDir(t)
	first := elftest.HardenedExecutable().Build().WriteFile(t, dir, "a")
	second := elftest.HardenedExecutable().Build().WriteFile(t, dir, "b")

	analyzer := NewStandardELFAnalyzer(nil, Config{HashContent: true})
	outA := analyzer.AnalyzeFile(first)
	outB := analyzer.AnalyzeFile(second)

	require.Equal(t, Analyzed, outA.Result)
	assert.True(t, strings.HasPrefix(outA.ContentHash, "sha256:"))
	assert.Len(t, outA.ContentHash, len("sha256:")+64)
	assert.Equal(t, outA.ContentHash, outB.ContentHash)
}

func TestStandardELFAnalyzer_OpenError(t *testing.T) {
	errDenied := errors.New("permission denied")
	mockFS := safefileiotesting.NewMockFileSystem()
	mockFS.SafeOpenFileFunc = func(string, int, os.FileMode) (safefileio.File, error) {
		return nil, errDenied
	}

	out := NewStandardELFAnalyzer(mockFS, Config{}).AnalyzeFile("/bin/true")

	assert.Equal(t, AnalysisError, out.Result)
	assert.ErrorIs(t, out.Error, errDenied)
	assert.Equal(t, []string{"/bin/true"}, mockFS.OpenCalls)
}

func TestAnalysisResult_String(t *testing.T) {
	assert.Equal(t, "analyzed", Analyzed.String())
	assert.Equal(t, "not_elf_binary", NotELFBinary.String())
	assert.Equal(t, "analysis_error", AnalysisError.String())
	assert.Equal(t, "unknown(9)", AnalysisResult(9).String())
}

func TestStandardELFAnalyzer_Inspect(t *testing.T) {
	dir := tempDir(t)
	analyzer := NewStandardELFAnalyzer(nil, Config{})

	t.Run("resolves section names", func(t *testing.T) {
		path := elftest.HardenedExecutable().Build().WriteFile(t, dir, "hardened")

		insp, err := analyzer.Inspect(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"", ".text", ".got", ".symtab", ".strtab", ".shstrtab"}, insp.SectionNames)
		assert.Len(t, insp.File.Progs, 3)
		assert.Positive(t, insp.Size)
	})

	t.Run("no section table", func(t *testing.T) {
		img := elftest.HardenedExecutable()
		img.NoSectionTable = true
		path := img.Build().WriteFile(t, dir, "stripped")

		insp, err := analyzer.Inspect(path)
		require.NoError(t, err)
		assert.Empty(t, insp.File.Sections)
		assert.Empty(t, insp.SectionNames)
	})

	t.Run("not ELF", func(t *testing.T) {
		path := filepath.Join(dir, "script.sh")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o600))

		_, err := analyzer.Inspect(path)
		assert.ErrorIs(t, err, elfparse.ErrNotELF)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := analyzer.Inspect(dir)
		assert.ErrorIs(t, err, ErrNotRegularFile)
	})
}

func TestStandardELFAnalyzer_UsesInjectedFileSystem(t *testing.T) {
	dir := tempDir(t)
	target := elftest.HardenedExecutable().Build().WriteFile(t, dir, "hardened")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	safe := NewStandardELFAnalyzer(nil, Config{}).AnalyzeFile(link)
	assert.Equal(t, AnalysisError, safe.Result)
	assert.ErrorIs(t, safe.Error, safefileio.ErrIsSymlink)

	mockFS := safefileiotesting.PassThrough()
	out := NewStandardELFAnalyzer(mockFS, Config{}).AnalyzeFile(link)
	assert.Equal(t, Analyzed, out.Result)
	assert.Equal(t, []string{link}, mockFS.Calls())
}
