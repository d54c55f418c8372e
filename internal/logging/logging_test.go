package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isseis/go-elf-checksec/internal/safefileio"
)

var errHandler = errors.New("handler error")

// failingHandler accepts everything and fails every Handle call.
type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errHandler }

func TestMultiHandler(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	multi := NewMultiHandler(info, debug)
	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))

	logger := slog.New(multi).With(slog.String("component", "scanner")).WithGroup("file")
	logger.Debug("decoding", slog.String("path", "/bin/true"))
	logger.Info("analyzed", slog.String("path", "/bin/ls"))

	assert.NotContains(t, infoBuf.String(), "decoding")
	assert.Contains(t, infoBuf.String(), "component=scanner")
	assert.Contains(t, infoBuf.String(), "file.path=/bin/ls")

	lines := strings.Split(strings.TrimSpace(debugBuf.String()), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "decoding", rec["msg"])
	assert.Equal(t, map[string]any{"path": "/bin/true"}, rec["file"])
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&buf, nil), failingHandler{})

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0))
	require.ErrorIs(t, err, errHandler)
	assert.Contains(t, buf.String(), "msg=msg")
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestSetup_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closeFn, err := Setup(Options{Level: slog.LevelWarn, Format: "json", Console: &console, RunID: "01ABC"})
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeFn()) }()

	logger.Info("hidden")
	logger.Warn("shown", slog.Any("error", errHandler))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "01ABC", rec["run_id"])
	assert.Equal(t, "handler error", rec["error"])
}

func TestSetup_WithFile(t *testing.T) {
	path := filepath.Join(tempDir(t), "logs", "checksec.log")

	var console bytes.Buffer
	logger, closeFn, err := Setup(Options{Level: slog.LevelInfo, Console: &console, File: path})
	require.NoError(t, err)

	logger.Debug("file only")
	logger.Info("both")
	require.NoError(t, closeFn())

	assert.NotContains(t, console.String(), "file only")
	assert.Contains(t, console.String(), "msg=both")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"file only"`)
	assert.Contains(t, string(content), `"msg":"both"`)

	// Reopening appends.
	logger, closeFn, err = Setup(Options{Console: &console, File: path})
	require.NoError(t, err)
	logger.Info("again")
	require.NoError(t, closeFn())

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(content), "\n"))
}

func TestSetup_Errors(t *testing.T) {
	_, _, err := Setup(Options{Format: "logfmt"})
	assert.Error(t, err)

	dir := tempDir(t)
	target := filepath.Join(dir, "real.log")
	require.NoError(t, os.WriteFile(target, nil, 0o600))
	link := filepath.Join(dir, "link.log")
	require.NoError(t, os.Symlink(target, link))

	_, _, err = Setup(Options{File: link, Console: &bytes.Buffer{}})
	assert.ErrorIs(t, err, safefileio.ErrIsSymlink)
}
