package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/isseis/go-elf-checksec/internal/safefileio"
)

// Options configures Setup.
type Options struct {
	// Level applies to the console handler. The log file always records
	// debug and above.
	Level slog.Level
	// Format is "text" or "json" for the console handler.
	Format string
	// File, when set, receives every record as JSON.
	File string
	// Console defaults to os.Stderr.
	Console io.Writer
	// RunID is attached to every record when set.
	RunID string
	// FS opens the log file. nil means the default safefileio file system.
	FS safefileio.FileSystem
}

// Setup builds the logger described by opts. The returned close function
// closes the log file, if any, and is always safe to call.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var consoleHandler slog.Handler
	switch opts.Format {
	case "", "text":
		consoleHandler = slog.NewTextHandler(console, handlerOpts)
	case "json":
		consoleHandler = slog.NewJSONHandler(console, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	noop := func() error { return nil }
	handler := consoleHandler
	closeFn := noop

	if opts.File != "" {
		fs := opts.FS
		if fs == nil {
			fs = safefileio.NewFileSystem(safefileio.FileSystemConfig{})
		}
		file, err := OpenLogFile(fs, opts.File)
		if err != nil {
			return nil, nil, err
		}
		fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = NewMultiHandler(consoleHandler, fileHandler)
		closeFn = file.Close
	}

	logger := slog.New(handler)
	if opts.RunID != "" {
		logger = logger.With(slog.String("run_id", opts.RunID))
	}
	return logger, closeFn, nil
}
