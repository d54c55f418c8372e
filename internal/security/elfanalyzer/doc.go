// Package elfanalyzer infers which exploit mitigations an ELF binary was
// built with: stack canaries, a non-executable stack, RELRO and PIE.
//
// # Usage
//
//	analyzer := elfanalyzer.NewStandardELFAnalyzer(nil, elfanalyzer.Config{})
//	output := analyzer.AnalyzeFile("/usr/bin/ls")
//	if output.Result == elfanalyzer.Analyzed {
//	    fmt.Printf("NX: %v, RELRO: %s\n", output.Options.NX, output.Options.RELRO)
//	}
//
// InferSecurityOptions runs the same checks against an already decoded file
// and the byte source it came from.
//
// # Heuristics
//
// The checks read string tables, not symbol tables:
//
// - Canary: the .strtab section mentions __stack_chk_fail
// - NX: the first PT_GNU_STACK segment is not executable
// - RELRO: a PT_GNU_RELRO segment exists; full unless the section-name table mentions .got.plt
// - PIE: the object type is ET_DYN
//
// A shared library is reported as PIE, and a stripped binary without .strtab
// cannot be checked for a canary at all. The RELRO split does not verify
// that .got.plt is actually covered by the RELRO segment.
//
// # Security Considerations
//
// Files are opened through safefileio, so a symlink anywhere in the path is
// refused. Only regular files up to the configured size limit are decoded.
package elfanalyzer
