package config

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/isseis/go-elf-checksec/internal/policy"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
	"github.com/isseis/go-elf-checksec/internal/terminal"
)

var (
	outputFormats = []string{"text", "json", "yaml"}
	logFormats    = []string{"text", "json"}
)

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if !lo.Contains(outputFormats, c.Output.Format) {
		result = multierror.Append(result, fmt.Errorf("output.format: %q is not one of %v", c.Output.Format, outputFormats))
	}
	if _, err := terminal.ParseColorMode(c.Output.Color); err != nil {
		result = multierror.Append(result, fmt.Errorf("output.color: %w", err))
	}
	if c.Scan.Concurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("scan.concurrency: must be at least 1, got %d", c.Scan.Concurrency))
	}
	if _, err := c.MaxFileSizeBytes(); err != nil {
		result = multierror.Append(result, fmt.Errorf("scan.max_file_size: %w", err))
	}
	if _, err := elfanalyzer.ParseRelroLevel(c.Policy.MinRelro); err != nil {
		result = multierror.Append(result, fmt.Errorf("policy.min_relro: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}
	if !lo.Contains(logFormats, c.Log.Format) {
		result = multierror.Append(result, fmt.Errorf("log.format: %q is not one of %v", c.Log.Format, logFormats))
	}

	return result.ErrorOrNil()
}

// MaxFileSizeBytes parses scan.max_file_size.
func (c *Config) MaxFileSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.Scan.MaxFileSize)
	if err != nil {
		return 0, err
	}
	if n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q out of range", c.Scan.MaxFileSize)
	}
	return int64(n), nil
}

// ColorMode parses output.color.
func (c *Config) ColorMode() (terminal.ColorMode, error) {
	return terminal.ParseColorMode(c.Output.Color)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// HardeningPolicy converts the [policy] section.
func (c *Config) HardeningPolicy() (policy.Policy, error) {
	minRelro, err := elfanalyzer.ParseRelroLevel(c.Policy.MinRelro)
	if err != nil {
		return policy.Policy{}, err
	}
	return policy.Policy{
		RequireCanary: c.Policy.RequireCanary,
		RequireNX:     c.Policy.RequireNX,
		RequirePIE:    c.Policy.RequirePIE,
		MinRelro:      minRelro,
	}, nil
}
