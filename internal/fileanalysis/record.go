package fileanalysis

import (
	"github.com/samber/lo"

	"github.com/isseis/go-elf-checksec/internal/policy"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

// ApplyAnalysis overwrites the analysis fields of r with the outcome of one
// run. Fields a failed analysis cannot provide are cleared.
func ApplyAnalysis(r *Record, runID string, out elfanalyzer.AnalysisOutput, violations []policy.Violation) {
	r.RunID = runID
	r.Result = out.Result.String()
	r.ContentHash = out.ContentHash
	r.Error = ""
	r.Header = nil
	r.Security = nil
	r.Violations = nil

	if out.Error != nil {
		r.Error = out.Error.Error()
	}
	if out.File != nil {
		h := out.File.Header
		r.Header = &HeaderSummary{
			Class:    h.Class().String(),
			Type:     h.Type.String(),
			Machine:  h.Machine.String(),
			Entry:    h.Entry,
			Segments: len(out.File.Progs),
			Sections: len(out.File.Sections),
		}
	}
	if out.Result == elfanalyzer.Analyzed {
		opts := out.Options
		r.Security = &opts
		r.Violations = lo.Map(violations, func(v policy.Violation, _ int) string { return v.String() })
	}
}
