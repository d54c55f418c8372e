package config

// Default values for configuration fields
const (
	DefaultOutputFormat = "text"
	DefaultColor        = "auto"
	DefaultConcurrency  = 4
	DefaultMaxFileSize  = "1 GiB"
	DefaultMinRelro     = "none"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Policy.RequireNX = true
	return cfg
}

// ApplyDefaults fills empty fields. Booleans are left alone, since false is
// a meaningful value in a file.
func ApplyDefaults(cfg *Config) {
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = DefaultColor
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = DefaultConcurrency
	}
	if cfg.Scan.MaxFileSize == "" {
		cfg.Scan.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Policy.MinRelro == "" {
		cfg.Policy.MinRelro = DefaultMinRelro
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
