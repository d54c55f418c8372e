// Package scanner analyzes a batch of files with bounded concurrency. A
// failure on one file is recorded in its result and never stops the batch.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// ErrNoInputs indicates Scan was called without any path.
var ErrNoInputs = errors.New("no input files")

// Options tunes a Scanner.
type Options struct {
	// Concurrency is the maximum number of files analyzed at once.
	Concurrency int
	// Recursive expands directories into the regular files below them.
	// Files found this way that are not ELF are skipped silently.
	Recursive bool
	// Logger receives per-file failures. nil means slog.Default().
	Logger *slog.Logger
}

// Result is the outcome for one input file.
type Result struct {
	Path     string
	Output   elfanalyzer.AnalysisOutput
	Duration time.Duration
}

// Failed reports whether the file could not be analyzed.
func (r Result) Failed() bool {
	return r.Output.Result == elfanalyzer.AnalysisError
}

// Summary counts results by outcome.
type Summary struct {
	Total    int
	Analyzed int
	NotELF   int
	Failed   int
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	counts := lo.CountValuesBy(results, func(r Result) elfanalyzer.AnalysisResult { return r.Output.Result })
	return Summary{
		Total:    len(results),
		Analyzed: counts[elfanalyzer.Analyzed],
		NotELF:   counts[elfanalyzer.NotELFBinary],
		Failed:   counts[elfanalyzer.AnalysisError],
	}
}

// Scanner runs an ELFAnalyzer over many paths.
type Scanner struct {
	analyzer elfanalyzer.ELFAnalyzer
	opts     Options
	logger   *slog.Logger
}

// New creates a Scanner.
func New(analyzer elfanalyzer.ELFAnalyzer, opts Options) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{analyzer: analyzer, opts: opts, logger: logger}
}

type target struct {
	path   string
	walked bool
}

// Scan analyzes every path and returns one result per analyzed file, in
// input order (directory contents in lexical order). Each file is opened
// with its own handle. The returned error is non-nil only when the inputs
// cannot be expanded or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, paths []string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	targets, err := s.expand(paths)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, tgt := range targets {
		i, tgt := i, tgt
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out := s.analyzer.AnalyzeFile(tgt.path)
			results[i] = Result{Path: tgt.path, Output: out, Duration: time.Since(start)}

			if out.Result == elfanalyzer.AnalysisError {
				s.logger.Warn("failed to analyze file",
					slog.String("path", tgt.path),
					slog.Any("error", out.Error))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	kept := lo.Filter(results, func(r Result, i int) bool {
		return !targets[i].walked || r.Output.Result != elfanalyzer.NotELFBinary
	})
	return kept, nil
}

func (s *Scanner) expand(paths []string) ([]target, error) {
	var targets []target
	for _, p := range paths {
		if !s.opts.Recursive {
			targets = append(targets, target{path: p})
			continue
		}

		fi, err := os.Lstat(p)
		if err != nil || !fi.IsDir() {
			// Let the analyzer report missing files and symlinks.
			targets = append(targets, target{path: p})
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				targets = append(targets, target{path: path, walked: true})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	return targets, nil
}
