package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/isseis/go-elf-checksec/internal/config"
	"github.com/isseis/go-elf-checksec/internal/logging"
	"github.com/isseis/go-elf-checksec/internal/report"
	"github.com/isseis/go-elf-checksec/internal/terminal"
)

// loadConfig reads the configuration file and lets explicitly set flags
// override it.
func loadConfig(params *globalParams, flags *pflag.FlagSet, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(params.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("format") {
		cfg.Output.Format = params.format
	}
	if flags.Changed("color") {
		cfg.Output.Color = params.color
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = params.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = params.logFile
	}
	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger. Console logs go to stderr so stdout
// carries only the report.
func newLogger(cfg *config.Config, runID string, stderr io.Writer) (*slog.Logger, func() error, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	return logging.Setup(logging.Options{
		Level:   level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Console: stderr,
		RunID:   runID,
	})
}

// newRenderer picks the output format and decides on color for stdout.
func newRenderer(cfg *config.Config, stdout io.Writer) (*report.Renderer, error) {
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	mode, err := cfg.ColorMode()
	if err != nil {
		return nil, err
	}
	return report.NewRenderer(format, terminal.ShouldColorize(mode, stdout)), nil
}

func closeLogger(closeFn func() error, logger *slog.Logger) {
	if err := closeFn(); err != nil {
		logger.Warn("failed to close log file", slog.Any("error", err))
	}
}
