package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elftest "github.com/isseis/go-elf-checksec/internal/elfparse/testing"
	"github.com/isseis/go-elf-checksec/internal/fileanalysis"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func runArgs(args ...string) (int, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := run(args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCheckRequiresAtLeastOneFile(t *testing.T) {
	code, _, stderr := runArgs("check")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "requires at least 1 arg")
}

func TestRunCheckHardenedExecutable(t *testing.T) {
	path := elftest.HardenedExecutable().Build().WriteFile(t, tempDir(t), "hardened")

	code, stdout, stderr := runArgs("check", "--color", "never", path)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "[1/1] "+path+": OK\n")
	assert.Regexp(t, `hardened\s+enabled\s+enabled\s+full\s+disabled\s+OK`, stdout)
	assert.Contains(t, stdout, "Summary: 1 analysed, 0 failed, 0 policy violations")
}

func TestRunCheckPolicyViolation(t *testing.T) {
	path := elftest.HardenedExecutable().Build().WriteFile(t, tempDir(t), "hardened")

	code, stdout, stderr := runArgs("check", "--color", "never", "--require-pie", path)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[1/1] "+path+": FAILED\n")
	assert.NotContains(t, stderr, "Error:")
	assert.Contains(t, stdout, path+": pie: expected enabled, got disabled")
	assert.Contains(t, stdout, "Summary: 1 analysed, 0 failed, 1 policy violations")
}

func TestRunCheckBatchContinuesAfterFailure(t *testing.T) {
	dir := tempDir(t)
	good := elftest.HardenedExecutable().Build().WriteFile(t, dir, "good")

	built := elftest.HardenedExecutable().Build()
	truncated := filepath.Join(dir, "truncated")
	require.NoError(t, os.WriteFile(truncated, built.Bytes[:80], 0o600))

	script := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o600))

	code, stdout, stderr := runArgs("check", "-q", "--color", "never", truncated, script, good)

	assert.Equal(t, 1, code)
	assert.NotContains(t, stderr, "[1/3]")
	assert.Contains(t, stderr, "failed to analyze file")
	assert.Regexp(t, `truncated\s+-\s+-\s+-\s+-\s+ERROR`, stdout)
	assert.Regexp(t, `script\.sh\s+-\s+-\s+-\s+-\s+not ELF`, stdout)
	assert.Contains(t, stdout, "Summary: 1 analysed, 1 failed, 0 policy violations")
}

func TestRunCheckJSONRecursive(t *testing.T) {
	dir := tempDir(t)
	elftest.HardenedExecutable().Build().WriteFile(t, dir, "a")
	pie := elftest.HardenedExecutable()
	pie.Type = elftest.TypeDyn
	pie.Build().WriteFile(t, dir, "b")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("text"), 0o600))

	code, stdout, stderr := runArgs("check", "-r", "-o", "json", dir)
	require.Equal(t, 0, code, stderr)

	var rep struct {
		RunID string `json:"run_id"`
		Files []struct {
			Path     string `json:"path"`
			Security struct {
				PIE bool `json:"pie"`
			} `json:"security"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Len(t, rep.RunID, 26)
	require.Len(t, rep.Files, 2, "README is skipped")
	assert.Equal(t, filepath.Join(dir, "a"), rep.Files[0].Path)
	assert.False(t, rep.Files[0].Security.PIE)
	assert.True(t, rep.Files[1].Security.PIE)
}

func TestRunCheckRecordsAndMetrics(t *testing.T) {
	dir := tempDir(t)
	path := elftest.HardenedExecutable().Build().WriteFile(t, dir, "hardened")
	recordDir := filepath.Join(dir, "records")
	textfile := filepath.Join(dir, "checksec.prom")

	code, _, stderr := runArgs("check", "-q", "--record-dir", recordDir, "--metrics-textfile", textfile, path)
	require.Equal(t, 0, code, stderr)

	entries, err := os.ReadDir(recordDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(recordDir, entries[0].Name()))
	require.NoError(t, err)
	var rec fileanalysis.Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, path, rec.FilePath)
	assert.Equal(t, "analyzed", rec.Result)
	assert.True(t, strings.HasPrefix(rec.ContentHash, "sha256:"))
	require.NotNil(t, rec.Security)
	assert.True(t, rec.Security.Canary)

	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `checksec_files_total{result="analyzed"} 1`)
}

func TestRunCheckConfigFileAndFlagOverride(t *testing.T) {
	dir := tempDir(t)
	path := elftest.HardenedExecutable().Build().WriteFile(t, dir, "hardened")
	cfgPath := filepath.Join(dir, "checksec.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[output]
format = "yaml"

[policy]
require_pie = true
`), 0o600))

	code, stdout, _ := runArgs("check", "-q", "--config", cfgPath, path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "policy_violations: 1")

	code, stdout, _ = runArgs("check", "-q", "--config", cfgPath, "--require-pie=false", "--format", "json", path)
	assert.Equal(t, 0, code)
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestRunCheckInvalidConfiguration(t *testing.T) {
	code, _, stderr := runArgs("check", "--min-relro", "strong", "--concurrency", "0", "/bin/true")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid configuration")
	assert.Contains(t, stderr, "policy.min_relro")
	assert.Contains(t, stderr, "scan.concurrency")
}

func TestRunInfo(t *testing.T) {
	path := elftest.HardenedExecutable().Build().WriteFile(t, tempDir(t), "hardened")

	t.Run("text", func(t *testing.T) {
		code, stdout, stderr := runArgs("info", "--color", "never", path)
		require.Equal(t, 0, code, stderr)
		assert.Regexp(t, `Machine\s+x86-64`, stdout)
		assert.Regexp(t, `GNU_STACK`, stdout)
		assert.Regexp(t, `\.got\s+PROGBITS`, stdout)
	})

	t.Run("yaml", func(t *testing.T) {
		code, stdout, stderr := runArgs("info", "-o", "yaml", path)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "machine: x86-64")
		assert.Contains(t, stdout, "name: .strtab")
	})

	t.Run("not ELF", func(t *testing.T) {
		script := filepath.Join(filepath.Dir(path), "script.sh")
		require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o600))

		code, _, stderr := runArgs("info", script)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Error: failed to decode ELF")
	})

	t.Run("requires exactly one file", func(t *testing.T) {
		code, _, stderr := runArgs("info")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "accepts 1 arg")
	})
}
