package report

import (
	"github.com/samber/lo"

	"github.com/isseis/go-elf-checksec/internal/policy"
	"github.com/isseis/go-elf-checksec/internal/scanner"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

// CheckReport is the outcome of one check run.
type CheckReport struct {
	RunID   string       `json:"run_id" yaml:"run_id"`
	Files   []FileReport `json:"files" yaml:"files"`
	Summary Summary      `json:"summary" yaml:"summary"`
}

// FileReport is the outcome for one file.
type FileReport struct {
	Path        string                       `json:"path" yaml:"path"`
	Result      string                       `json:"result" yaml:"result"`
	Size        int64                        `json:"size,omitempty" yaml:"size,omitempty"`
	ContentHash string                       `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	Security    *elfanalyzer.SecurityOptions `json:"security,omitempty" yaml:"security,omitempty"`
	Violations  []policy.Violation           `json:"violations,omitempty" yaml:"violations,omitempty"`
	Error       string                       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Compliant reports whether the file was analyzed and met the policy.
func (f FileReport) Compliant() bool {
	return f.Security != nil && len(f.Violations) == 0
}

// Summary counts files by outcome. PolicyViolations counts files with at
// least one violation.
type Summary struct {
	Total            int `json:"total" yaml:"total"`
	Analyzed         int `json:"analyzed" yaml:"analyzed"`
	NotELF           int `json:"not_elf" yaml:"not_elf"`
	Failed           int `json:"failed" yaml:"failed"`
	PolicyViolations int `json:"policy_violations" yaml:"policy_violations"`
}

// OK reports whether no file failed analysis or violated the policy.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.PolicyViolations == 0
}

// NewCheckReport evaluates p against every analyzed result.
func NewCheckReport(runID string, results []scanner.Result, p policy.Policy) *CheckReport {
	files := lo.Map(results, func(r scanner.Result, _ int) FileReport {
		return NewFileReport(r, p)
	})

	counts := scanner.Summarize(results)
	return &CheckReport{
		RunID: runID,
		Files: files,
		Summary: Summary{
			Total:            counts.Total,
			Analyzed:         counts.Analyzed,
			NotELF:           counts.NotELF,
			Failed:           counts.Failed,
			PolicyViolations: lo.CountBy(files, func(f FileReport) bool { return len(f.Violations) > 0 }),
		},
	}
}

// NewFileReport converts one scan result.
func NewFileReport(r scanner.Result, p policy.Policy) FileReport {
	out := r.Output
	fr := FileReport{
		Path:        r.Path,
		Result:      out.Result.String(),
		Size:        out.Size,
		ContentHash: out.ContentHash,
	}
	if out.Error != nil {
		fr.Error = out.Error.Error()
	}
	if out.Result == elfanalyzer.Analyzed {
		opts := out.Options
		fr.Security = &opts
		fr.Violations = p.Evaluate(opts)
	}
	return fr
}
