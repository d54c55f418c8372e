// Package config loads the checksec TOML configuration file.
package config

// Config is the whole configuration file.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	Scan    ScanConfig    `toml:"scan"`
	Policy  PolicyConfig  `toml:"policy"`
	Log     LogConfig     `toml:"log"`
	Record  RecordConfig  `toml:"record"`
	Metrics MetricsConfig `toml:"metrics"`
}

// OutputConfig selects the report format.
type OutputConfig struct {
	// Format is text, json or yaml.
	Format string `toml:"format"`
	// Color is auto, always or never.
	Color string `toml:"color"`
}

// ScanConfig controls how files are found and opened.
type ScanConfig struct {
	Concurrency int `toml:"concurrency"`
	// MaxFileSize is a human-readable size such as "512 MiB".
	MaxFileSize string `toml:"max_file_size"`
	Recursive   bool   `toml:"recursive"`
}

// PolicyConfig lists the mitigations every checked binary must carry.
type PolicyConfig struct {
	RequireCanary bool `toml:"require_canary"`
	RequireNX     bool `toml:"require_nx"`
	RequirePIE    bool `toml:"require_pie"`
	// MinRelro is none, partial or full.
	MinRelro string `toml:"min_relro"`
}

// LogConfig controls diagnostic logging on stderr and to an optional file.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// RecordConfig enables the analysis record store.
type RecordConfig struct {
	// Dir holds one JSON record per analyzed file. Empty disables records.
	Dir string `toml:"dir"`
}

// MetricsConfig enables the Prometheus textfile.
type MetricsConfig struct {
	// Textfile is written after every check run. Empty disables metrics.
	Textfile string `toml:"textfile"`
}
