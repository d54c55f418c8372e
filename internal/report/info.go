package report

import (
	"github.com/samber/lo"

	"github.com/isseis/go-elf-checksec/internal/elfparse"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

// InfoReport is the decoded structure of one file.
type InfoReport struct {
	Path     string        `json:"path" yaml:"path"`
	Size     int64         `json:"size" yaml:"size"`
	Header   HeaderInfo    `json:"header" yaml:"header"`
	Segments []SegmentInfo `json:"segments" yaml:"segments"`
	Sections []SectionInfo `json:"sections" yaml:"sections"`
}

// HeaderInfo is the identification block and ELF header.
type HeaderInfo struct {
	Class      string `json:"class" yaml:"class"`
	Data       string `json:"data" yaml:"data"`
	OSABI      string `json:"osabi" yaml:"osabi"`
	ABIVersion uint8  `json:"abi_version" yaml:"abi_version"`
	Type       string `json:"type" yaml:"type"`
	Machine    string `json:"machine" yaml:"machine"`
	Version    string `json:"version" yaml:"version"`
	Entry      uint64 `json:"entry" yaml:"entry"`
	PhOff      uint64 `json:"phoff" yaml:"phoff"`
	ShOff      uint64 `json:"shoff" yaml:"shoff"`
	Flags      uint32 `json:"flags" yaml:"flags"`
	EhSize     uint16 `json:"ehsize" yaml:"ehsize"`
	PhEntSize  uint16 `json:"phentsize" yaml:"phentsize"`
	PhNum      uint16 `json:"phnum" yaml:"phnum"`
	ShEntSize  uint16 `json:"shentsize" yaml:"shentsize"`
	ShNum      uint16 `json:"shnum" yaml:"shnum"`
	ShStrNdx   uint16 `json:"shstrndx" yaml:"shstrndx"`
}

// SegmentInfo is one program header.
type SegmentInfo struct {
	Type   string `json:"type" yaml:"type"`
	Flags  string `json:"flags" yaml:"flags"`
	Offset uint64 `json:"offset" yaml:"offset"`
	Vaddr  uint64 `json:"vaddr" yaml:"vaddr"`
	Paddr  uint64 `json:"paddr" yaml:"paddr"`
	Filesz uint64 `json:"filesz" yaml:"filesz"`
	Memsz  uint64 `json:"memsz" yaml:"memsz"`
	Align  uint64 `json:"align" yaml:"align"`
}

// SectionInfo is one section header with its resolved name.
type SectionInfo struct {
	Index     int    `json:"index" yaml:"index"`
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Flags     string `json:"flags" yaml:"flags"`
	Addr      uint64 `json:"addr" yaml:"addr"`
	Offset    uint64 `json:"offset" yaml:"offset"`
	Size      uint64 `json:"size" yaml:"size"`
	Link      uint32 `json:"link" yaml:"link"`
	Info      uint32 `json:"info" yaml:"info"`
	AddrAlign uint64 `json:"addralign" yaml:"addralign"`
	EntSize   uint64 `json:"entsize" yaml:"entsize"`
}

// NewInfoReport flattens an inspection for rendering.
func NewInfoReport(path string, insp *elfanalyzer.Inspection) *InfoReport {
	f := insp.File
	h := f.Header
	return &InfoReport{
		Path: path,
		Size: insp.Size,
		Header: HeaderInfo{
			Class:      h.Ident.Class.String(),
			Data:       h.Ident.Data.String(),
			OSABI:      h.Ident.OSABI.String(),
			ABIVersion: h.Ident.ABIVersion,
			Type:       h.Type.String(),
			Machine:    h.Machine.String(),
			Version:    h.Version.String(),
			Entry:      h.Entry,
			PhOff:      h.PhOff,
			ShOff:      h.ShOff,
			Flags:      h.Flags,
			EhSize:     h.EhSize,
			PhEntSize:  h.PhEntSize,
			PhNum:      h.PhNum,
			ShEntSize:  h.ShEntSize,
			ShNum:      h.ShNum,
			ShStrNdx:   h.ShStrNdx,
		},
		Segments: lo.Map(f.Progs, func(p elfparse.Prog, _ int) SegmentInfo {
			return SegmentInfo{
				Type:   p.Type.String(),
				Flags:  p.Flags.String(),
				Offset: p.Offset,
				Vaddr:  p.Vaddr,
				Paddr:  p.Paddr,
				Filesz: p.Filesz,
				Memsz:  p.Memsz,
				Align:  p.Align,
			}
		}),
		Sections: lo.Map(f.Sections, func(s elfparse.Section, i int) SectionInfo {
			var name string
			if i < len(insp.SectionNames) {
				name = insp.SectionNames[i]
			}
			return SectionInfo{
				Index:     i,
				Name:      name,
				Type:      s.Type.String(),
				Flags:     s.Flags.String(),
				Addr:      s.Addr,
				Offset:    s.Offset,
				Size:      s.Size,
				Link:      s.Link,
				Info:      s.Info,
				AddrAlign: s.AddrAlign,
				EntSize:   s.EntSize,
			}
		}),
	}
}
