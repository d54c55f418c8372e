package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

func TestPolicy_Evaluate(t *testing.T) {
	hardened := elfanalyzer.SecurityOptions{Canary: true, NX: true, RELRO: elfanalyzer.RelroFull, PIE: true}
	weak := elfanalyzer.SecurityOptions{RELRO: elfanalyzer.RelroPartial}

	strict := Policy{RequireCanary: true, RequireNX: true, RequirePIE: true, MinRelro: elfanalyzer.RelroFull}

	tests := []struct {
		name   string
		policy Policy
		opts   elfanalyzer.SecurityOptions
		want   []Violation
	}{
		{
			name:   "zero policy accepts anything",
			policy: Policy{},
			opts:   elfanalyzer.SecurityOptions{},
			want:   nil,
		},
		{
			name:   "strict policy accepts hardened binary",
			policy: strict,
			opts:   hardened,
			want:   nil,
		},
		{
			name:   "strict policy reports every gap in order",
			policy: strict,
			opts:   weak,
			want: []Violation{
				{Mitigation: MitigationCanary, Expected: "enabled", Actual: "disabled"},
				{Mitigation: MitigationNX, Expected: "enabled", Actual: "disabled"},
				{Mitigation: MitigationRelro, Expected: "at least full", Actual: "partial"},
				{Mitigation: MitigationPIE, Expected: "enabled", Actual: "disabled"},
			},
		},
		{
			name:   "partial RELRO meets partial minimum",
			policy: Policy{MinRelro: elfanalyzer.RelroPartial},
			opts:   weak,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Evaluate(tt.opts))
		})
	}
}

func TestPolicy_IsZero(t *testing.T) {
	assert.True(t, Policy{}.IsZero())
	assert.False(t, Policy{RequireNX: true}.IsZero())
}

func TestViolation_String(t *testing.T) {
	v := Violation{Mitigation: MitigationRelro, Expected: "at least full", Actual: "none"}
	assert.Equal(t, "relro: expected at least full, got none", v.String())
}
