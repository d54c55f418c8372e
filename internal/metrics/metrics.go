// Package metrics exports the outcome of a scan as Prometheus metrics,
// suitable for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/isseis/go-elf-checksec/internal/policy"
	"github.com/isseis/go-elf-checksec/internal/scanner"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

const namespace = "checksec"

// Metrics holds the collectors for one scan.
type Metrics struct {
	registry *prometheus.Registry

	Files        *prometheus.CounterVec
	Mitigations  *prometheus.CounterVec
	Relro        *prometheus.CounterVec
	ScanDuration prometheus.Gauge
}

// New creates Metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Number of files checked, by analysis result.",
		}, []string{"result"}),
		Mitigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mitigation_files_total",
			Help:      "Number of analyzed files with each boolean mitigation enabled or disabled.",
		}, []string{"mitigation", "enabled"}),
		Relro: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relro_files_total",
			Help:      "Number of analyzed files by RELRO level.",
		}, []string{"level"}),
		ScanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock duration of the last scan.",
		}),
	}

	m.registry.MustRegister(m.Files, m.Mitigations, m.Relro, m.ScanDuration)

	// Pre-create every label combination so absent outcomes export zero.
	for _, r := range []elfanalyzer.AnalysisResult{elfanalyzer.Analyzed, elfanalyzer.NotELFBinary, elfanalyzer.AnalysisError} {
		m.Files.WithLabelValues(r.String())
	}
	for _, name := range []string{policy.MitigationCanary, policy.MitigationNX, policy.MitigationPIE} {
		m.Mitigations.WithLabelValues(name, "true")
		m.Mitigations.WithLabelValues(name, "false")
	}
	for _, l := range []elfanalyzer.RelroLevel{elfanalyzer.RelroNone, elfanalyzer.RelroPartial, elfanalyzer.RelroFull} {
		m.Relro.WithLabelValues(l.String())
	}
	return m
}

// Registry returns the registry holding the scan collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe adds the scan results and sets the scan duration.
func (m *Metrics) Observe(results []scanner.Result, elapsed time.Duration) {
	for _, r := range results {
		m.Files.WithLabelValues(r.Output.Result.String()).Inc()
		if r.Output.Result != elfanalyzer.Analyzed {
			continue
		}
		opts := r.Output.Options
		m.Mitigations.WithLabelValues(policy.MitigationCanary, strconv.FormatBool(opts.Canary)).Inc()
		m.Mitigations.WithLabelValues(policy.MitigationNX, strconv.FormatBool(opts.NX)).Inc()
		m.Mitigations.WithLabelValues(policy.MitigationPIE, strconv.FormatBool(opts.PIE)).Inc()
		m.Relro.WithLabelValues(opts.RELRO.String()).Inc()
	}
	m.ScanDuration.Set(elapsed.Seconds())
}

// WriteTextfile writes the registry to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
