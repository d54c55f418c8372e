package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/isseis/go-elf-checksec/internal/config"
	"github.com/isseis/go-elf-checksec/internal/fileanalysis"
	"github.com/isseis/go-elf-checksec/internal/metrics"
	"github.com/isseis/go-elf-checksec/internal/report"
	"github.com/isseis/go-elf-checksec/internal/scanner"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

var errRecordFailed = errors.New("failed to save analysis records")

type checkParams struct {
	concurrency     int
	recursive       bool
	maxFileSize     string
	requireCanary   bool
	requireNX       bool
	requirePIE      bool
	minRelro        string
	recordDir       string
	metricsTextfile string
	quiet           bool
}

func checkCommand(global *globalParams) *cobra.Command {
	var params checkParams
	cmd := &cobra.Command{
		Use:   "check [flags] <file|dir> [<file|dir>...]",
		Short: "Report canary, NX, RELRO and PIE for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg, err := loadConfig(global, flags, func(cfg *config.Config) {
				if flags.Changed("concurrency") {
					cfg.Scan.Concurrency = params.concurrency
				}
				if flags.Changed("recursive") {
					cfg.Scan.Recursive = params.recursive
				}
				if flags.Changed("max-file-size") {
					cfg.Scan.MaxFileSize = params.maxFileSize
				}
				if flags.Changed("require-canary") {
					cfg.Policy.RequireCanary = params.requireCanary
				}
				if flags.Changed("require-nx") {
					cfg.Policy.RequireNX = params.requireNX
				}
				if flags.Changed("require-pie") {
					cfg.Policy.RequirePIE = params.requirePIE
				}
				if flags.Changed("min-relro") {
					cfg.Policy.MinRelro = params.minRelro
				}
				if flags.Changed("record-dir") {
					cfg.Record.Dir = params.recordDir
				}
				if flags.Changed("metrics-textfile") {
					cfg.Metrics.Textfile = params.metricsTextfile
				}
			})
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg, args, params.quiet)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&params.concurrency, "concurrency", "j", config.DefaultConcurrency, "number of files analyzed in parallel")
	flags.BoolVarP(&params.recursive, "recursive", "r", false, "descend into directories; non-ELF files found there are skipped")
	flags.StringVar(&params.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "refuse files larger than this (e.g. \"512 MiB\")")
	flags.BoolVar(&params.requireCanary, "require-canary", false, "fail files without a stack canary")
	flags.BoolVar(&params.requireNX, "require-nx", true, "fail files with an executable stack")
	flags.BoolVar(&params.requirePIE, "require-pie", false, "fail files that are not position independent")
	flags.StringVar(&params.minRelro, "min-relro", config.DefaultMinRelro, "minimum RELRO level: none, partial or full")
	flags.StringVar(&params.recordDir, "record-dir", "", "save a JSON analysis record per file in this directory")
	flags.StringVar(&params.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	flags.BoolVarP(&params.quiet, "quiet", "q", false, "do not print per-file progress")
	return cmd
}

func runCheck(cmd *cobra.Command, cfg *config.Config, paths []string, quiet bool) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	runID := ulid.Make().String()

	logger, closeFn, err := newLogger(cfg, runID, stderr)
	if err != nil {
		return err
	}
	defer closeLogger(closeFn, logger)
	slog.SetDefault(logger)

	renderer, err := newRenderer(cfg, stdout)
	if err != nil {
		return err
	}
	pol, err := cfg.HardeningPolicy()
	if err != nil {
		return err
	}
	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	analyzer := elfanalyzer.NewStandardELFAnalyzer(nil, elfanalyzer.Config{
		MaxFileSize: maxSize,
		HashContent: cfg.Record.Dir != "",
	})
	sc := scanner.New(analyzer, scanner.Options{
		Concurrency: cfg.Scan.Concurrency,
		Recursive:   cfg.Scan.Recursive,
		Logger:      logger,
	})

	start := time.Now()
	results, err := sc.Scan(cmd.Context(), paths)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	rep := report.NewCheckReport(runID, results, pol)
	logger.Debug("scan finished",
		slog.Int("files", rep.Summary.Total),
		slog.Int("failed", rep.Summary.Failed),
		slog.Duration("elapsed", elapsed))

	if !quiet {
		printProgress(stderr, rep.Files)
	}
	if err := renderer.WriteCheck(stdout, rep); err != nil {
		return err
	}

	var errs []error
	if cfg.Record.Dir != "" {
		if err := saveRecords(cfg.Record.Dir, runID, results, rep.Files, logger); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Metrics.Textfile != "" {
		m := metrics.New()
		m.Observe(results, elapsed)
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if !rep.Summary.OK() {
		return errCheckFailed
	}
	return nil
}

// printProgress writes one "[i/n] path: STATUS" line per file.
func printProgress(w io.Writer, files []report.FileReport) {
	total := len(files)
	for i, f := range files {
		status := "OK"
		switch {
		case f.Result == elfanalyzer.NotELFBinary.String():
			status = "SKIPPED (not ELF)"
		case !f.Compliant():
			status = "FAILED"
		}
		_, _ = fmt.Fprintf(w, "[%d/%d] %s: %s\n", i+1, total, f.Path, status)
	}
}

// saveRecords updates the analysis record of every file that looked like
// ELF. A failing file is logged and does not stop the others.
func saveRecords(dir, runID string, results []scanner.Result, files []report.FileReport, logger *slog.Logger) error {
	store, err := fileanalysis.NewStore(afero.NewOsFs(), dir)
	if err != nil {
		return err
	}

	failed := 0
	for i, r := range results {
		if r.Output.Result == elfanalyzer.NotELFBinary {
			continue
		}
		violations := files[i].Violations
		err := store.Update(r.Path, func(rec *fileanalysis.Record) error {
			fileanalysis.ApplyAnalysis(rec, runID, r.Output, violations)
			return nil
		})
		if err != nil {
			failed++
			logger.Warn("failed to save analysis record", slog.String("path", r.Path), slog.Any("error", err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errRecordFailed, failed, len(results))
	}
	return nil
}
