package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

// Renderer writes reports in one format.
type Renderer struct {
	format Format

	good *color.Color
	warn *color.Color
	bad  *color.Color
}

// NewRenderer creates a Renderer. colorize only affects the text format.
func NewRenderer(format Format, colorize bool) *Renderer {
	r := &Renderer{
		format: format,
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		bad:    color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{r.good, r.warn, r.bad} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// WriteCheck renders a check report.
func (r *Renderer) WriteCheck(w io.Writer, rep *CheckReport) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatYAML:
		return writeYAML(w, rep)
	default:
		return r.writeCheckText(w, rep)
	}
}

// WriteInfo renders an info report.
func (r *Renderer) WriteInfo(w io.Writer, rep *InfoReport) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatYAML:
		return writeYAML(w, rep)
	default:
		return r.writeInfoText(w, rep)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return enc.Close()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

func (r *Renderer) writeCheckText(w io.Writer, rep *CheckReport) error {
	table := newTable(w, "File", "Canary", "NX", "RELRO", "PIE", "Policy")
	for _, f := range rep.Files {
		table.Append(r.checkRow(f))
	}
	table.Render()

	ew := &errWriter{w: w}
	for _, f := range rep.Files {
		for _, v := range f.Violations {
			ew.printf("%s: %s\n", f.Path, v)
		}
		if f.Result == elfanalyzer.AnalysisError.String() {
			ew.printf("%s: %s\n", f.Path, f.Error)
		}
	}

	s := rep.Summary
	ew.printf("\nSummary: %d analysed, %d failed, %d policy violations\n", s.Analyzed, s.Failed, s.PolicyViolations)
	return ew.err
}

func (r *Renderer) checkRow(f FileReport) []string {
	if f.Security == nil {
		verdict := r.warn.Sprint("not ELF")
		if f.Result == elfanalyzer.AnalysisError.String() {
			verdict = r.bad.Sprint("ERROR")
		}
		return []string{f.Path, "-", "-", "-", "-", verdict}
	}

	opts := f.Security
	verdict := r.good.Sprint("OK")
	if len(f.Violations) > 0 {
		verdict = r.bad.Sprint("FAIL")
	}
	return []string{
		f.Path,
		r.enabled(opts.Canary),
		r.enabled(opts.NX),
		r.relro(opts.RELRO),
		r.enabled(opts.PIE),
		verdict,
	}
}

func (r *Renderer) enabled(on bool) string {
	if on {
		return r.good.Sprint("enabled")
	}
	return r.bad.Sprint("disabled")
}

func (r *Renderer) relro(l elfanalyzer.RelroLevel) string {
	switch l {
	case elfanalyzer.RelroFull:
		return r.good.Sprint(l.String())
	case elfanalyzer.RelroPartial:
		return r.warn.Sprint(l.String())
	default:
		return r.bad.Sprint(l.String())
	}
}

func (r *Renderer) writeInfoText(w io.Writer, rep *InfoReport) error {
	ew := &errWriter{w: w}
	h := rep.Header

	ew.printf("File: %s (%s)\n\n", rep.Path, humanize.IBytes(uint64(rep.Size)))
	header := newTable(w, "Field", "Value")
	header.AppendBulk([][]string{
		{"Class", h.Class},
		{"Data", h.Data},
		{"OS/ABI", h.OSABI},
		{"ABI Version", strconv.Itoa(int(h.ABIVersion))},
		{"Type", h.Type},
		{"Machine", h.Machine},
		{"Version", h.Version},
		{"Entry point", hex(h.Entry)},
		{"Program headers", fmt.Sprintf("%d entries of %d bytes at offset %d", h.PhNum, h.PhEntSize, h.PhOff)},
		{"Section headers", fmt.Sprintf("%d entries of %d bytes at offset %d", h.ShNum, h.ShEntSize, h.ShOff)},
		{"Section names index", strconv.Itoa(int(h.ShStrNdx))},
		{"Flags", fmt.Sprintf("%#x", h.Flags)},
		{"Header size", strconv.Itoa(int(h.EhSize))},
	})
	if ew.err == nil {
		header.Render()
	}

	ew.printf("\nProgram headers:\n")
	if len(rep.Segments) == 0 {
		ew.printf("  (none)\n")
	} else if ew.err == nil {
		progs := newTable(w, "Type", "Offset", "VirtAddr", "PhysAddr", "FileSiz", "MemSiz", "Flags", "Align")
		for _, p := range rep.Segments {
			progs.Append([]string{p.Type, hex(p.Offset), hex(p.Vaddr), hex(p.Paddr), hex(p.Filesz), hex(p.Memsz), p.Flags, hex(p.Align)})
		}
		progs.Render()
	}

	ew.printf("\nSection headers:\n")
	if len(rep.Sections) == 0 {
		ew.printf("  (none)\n")
	} else if ew.err == nil {
		sections := newTable(w, "Nr", "Name", "Type", "Address", "Offset", "Size", "EntSize", "Flags", "Link", "Info", "Align")
		for _, s := range rep.Sections {
			sections.Append([]string{
				strconv.Itoa(s.Index), s.Name, s.Type, hex(s.Addr), hex(s.Offset), hex(s.Size), hex(s.EntSize),
				s.Flags, strconv.FormatUint(uint64(s.Link), 10), strconv.FormatUint(uint64(s.Info), 10), strconv.FormatUint(s.AddrAlign, 10),
			})
		}
		sections.Render()
	}
	return ew.err
}

func hex(v uint64) string {
	return fmt.Sprintf("%#x", v)
}

// errWriter keeps the first write error so a sequence of prints needs one
// check at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
