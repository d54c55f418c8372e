package elfanalyzer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/isseis/go-elf-checksec/internal/elfparse"
)

// RelroLevel is how much of the relocation data is made read-only.
type RelroLevel int

const (
	// RelroNone means there is no PT_GNU_RELRO segment.
	RelroNone RelroLevel = iota
	// RelroPartial means a PT_GNU_RELRO segment exists but .got.plt is still a separate section.
	RelroPartial
	// RelroFull means a PT_GNU_RELRO segment exists and there is no .got.plt.
	RelroFull
)

var relroNames = map[RelroLevel]string{
	RelroNone:    "none",
	RelroPartial: "partial",
	RelroFull:    "full",
}

// String returns a string representation of RelroLevel.
func (l RelroLevel) String() string {
	if name, ok := relroNames[l]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(l))
}

// MarshalText renders the level as its name.
func (l RelroLevel) MarshalText() ([]byte, error) {
	if _, ok := relroNames[l]; !ok {
		return nil, fmt.Errorf("invalid RELRO level: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (l *RelroLevel) UnmarshalText(text []byte) error {
	level, err := ParseRelroLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// ParseRelroLevel parses "none", "partial" or "full".
func ParseRelroLevel(s string) (RelroLevel, error) {
	level, ok := lo.FindKey(relroNames, s)
	if !ok {
		return RelroNone, fmt.Errorf("invalid RELRO level %q: want none, partial or full", s)
	}
	return level, nil
}

// SecurityOptions is the set of mitigations inferred for one binary.
type SecurityOptions struct {
	Canary bool       `json:"canary" yaml:"canary"`
	NX     bool       `json:"nx" yaml:"nx"`
	RELRO  RelroLevel `json:"relro" yaml:"relro"`
	PIE    bool       `json:"pie" yaml:"pie"`
}

const (
	symbolStringTableName = ".strtab"
	stackCheckFailSymbol  = "__stack_chk_fail"
	gotPltSectionName     = ".got.plt"
)

// InferSecurityOptions computes the four mitigation facts for f. r must be
// the byte source f was decoded from; every read seeks to its own offset
// first, so the current position of r does not matter.
func InferSecurityOptions(f *elfparse.File, r io.ReadSeeker) (SecurityOptions, error) {
	shstrtab, err := f.SectionNameTable(r)
	if err != nil {
		return SecurityOptions{}, err
	}

	canary, err := checkCanary(f, r, shstrtab)
	if err != nil {
		return SecurityOptions{}, fmt.Errorf("canary check failed: %w", err)
	}

	nx, err := checkNX(f)
	if err != nil {
		return SecurityOptions{}, fmt.Errorf("NX check failed: %w", err)
	}

	pie, err := checkPIE(f)
	if err != nil {
		return SecurityOptions{}, fmt.Errorf("PIE check failed: %w", err)
	}

	return SecurityOptions{
		Canary: canary,
		NX:     nx,
		RELRO:  checkRelro(f, shstrtab),
		PIE:    pie,
	}, nil
}

// checkCanary reads the section named .strtab and searches its raw bytes for
// __stack_chk_fail. The section is found by sh_name offset, trying every
// offset in the section-name table at which ".strtab" is stored.
func checkCanary(f *elfparse.File, r io.ReadSeeker, shstrtab elfparse.StringTable) (bool, error) {
	offsets := shstrtab.Offsets(symbolStringTableName)
	strtab, ok := lo.Find(f.Sections, func(s elfparse.Section) bool {
		return lo.Contains(offsets, s.Name)
	})
	if !ok {
		return false, &elfparse.MissingStructureError{Structure: symbolStringTableName + " section"}
	}

	data, err := f.ReadSectionData(r, strtab)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", symbolStringTableName, err)
	}
	return bytes.Contains(data, []byte(stackCheckFailSymbol)), nil
}

// checkNX reports whether the stack segment is non-executable.
func checkNX(f *elfparse.File) (bool, error) {
	stack, ok := f.FirstProg(elfparse.ProgTypeGNUStack)
	if !ok {
		return false, &elfparse.MissingStructureError{Structure: "PT_GNU_STACK program header"}
	}
	return !stack.Executable(), nil
}

// checkRelro is a heuristic. Any ".got.plt" in the section-name table means
// partial; whether that section stays writable at runtime is not checked.
func checkRelro(f *elfparse.File, shstrtab elfparse.StringTable) RelroLevel {
	if _, ok := f.FirstProg(elfparse.ProgTypeGNURelro); !ok {
		return RelroNone
	}
	if shstrtab.Contains(gotPltSectionName) {
		return RelroPartial
	}
	return RelroFull
}

func checkPIE(f *elfparse.File) (bool, error) {
	switch f.Header.Type {
	case elfparse.TypeDyn:
		return true, nil
	case elfparse.TypeExec:
		return false, nil
	default:
		return false, &UnsupportedObjectTypeError{Type: f.Header.Type}
	}
}
