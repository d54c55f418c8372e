package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/isseis/go-elf-checksec/internal/safefileio"
)

// ErrInvalidConfigPath is returned when the config file path is invalid
var ErrInvalidConfigPath = errors.New("invalid config file path")

// Load reads and validates the file at path. An empty path returns the
// defaults. The file is opened through safefileio, so a symlinked config
// file is refused.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := safefileio.SafeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfigPath, path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML content over the defaults and validates the result.
// Unknown keys are an error so that typos do not silently fall back to
// defaults.
func Parse(content []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("failed to parse config: %s", strictErr.String())
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
