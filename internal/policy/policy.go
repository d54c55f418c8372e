// Package policy checks inferred mitigations against required minimums.
package policy

import (
	"fmt"

	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

// Policy lists the mitigations a binary must carry. The zero value requires
// nothing.
type Policy struct {
	RequireCanary bool
	RequireNX     bool
	RequirePIE    bool
	MinRelro      elfanalyzer.RelroLevel
}

// Mitigation names used in violations and metrics labels.
const (
	MitigationCanary = "canary"
	MitigationNX     = "nx"
	MitigationRelro  = "relro"
	MitigationPIE    = "pie"
)

// Violation is one unmet requirement.
type Violation struct {
	Mitigation string `json:"mitigation" yaml:"mitigation"`
	Expected   string `json:"expected" yaml:"expected"`
	Actual     string `json:"actual" yaml:"actual"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", v.Mitigation, v.Expected, v.Actual)
}

// IsZero reports whether the policy requires nothing.
func (p Policy) IsZero() bool {
	return p == Policy{}
}

// Evaluate returns the violations of opts, in the order canary, NX, RELRO,
// PIE. An empty result means opts satisfies the policy.
func (p Policy) Evaluate(opts elfanalyzer.SecurityOptions) []Violation {
	var violations []Violation

	requireBool := func(name string, required, actual bool) {
		if required && !actual {
			violations = append(violations, Violation{Mitigation: name, Expected: "enabled", Actual: "disabled"})
		}
	}

	requireBool(MitigationCanary, p.RequireCanary, opts.Canary)
	requireBool(MitigationNX, p.RequireNX, opts.NX)
	if opts.RELRO < p.MinRelro {
		violations = append(violations, Violation{
			Mitigation: MitigationRelro,
			Expected:   "at least " + p.MinRelro.String(),
			Actual:     opts.RELRO.String(),
		})
	}
	requireBool(MitigationPIE, p.RequirePIE, opts.PIE)

	return violations
}
