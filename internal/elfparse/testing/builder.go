// Package elfparsetesting builds synthetic little-endian ELF32/ELF64 images
// for tests. Images are assembled field by field in the on-disk layout, so a
// decoder under test sees the same bytes a linker would have produced.
package elfparsetesting

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Raw tag values used by the builder defaults and by tests.
const (
	ClassELF32 = 1
	ClassELF64 = 2
	DataLSB    = 1
	DataMSB    = 2

	TypeRel  = 1
	TypeExec = 2
	TypeDyn  = 3
	TypeCore = 4

	Machine386    = 3
	MachineX86_64 = 62

	PTLoad      = 1
	PTDynamic   = 2
	PTInterp    = 3
	PTGNUStack  = 0x6474e551
	PTGNURelro  = 0x6474e552
	PTGNUProp   = 0x6474e553
	PFX         = 1
	PFW         = 2
	PFR         = 4
	SHTProgBits = 1
	SHTSymTab   = 2
	SHTStrTab   = 3
	SHTNoBits   = 8
)

// Prog is a program header to encode.
type Prog struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Section is a section to encode. Its name goes into the generated
// section-name string table; Data is laid out in the file and determines
// sh_offset and sh_size.
type Section struct {
	Name      string
	Type      uint32
	Flags     uint64
	Addr      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
	Data      []byte
}

// Image describes a whole ELF file.
type Image struct {
	Class        byte
	Data         byte
	IdentVersion byte
	OSABI        byte
	ABIVersion   byte
	Type         uint16
	Machine      uint16
	Version      uint32
	Entry        uint64
	Flags        uint32
	Progs        []Prog
	// Sections are placed between the null section and the generated
	// .shstrtab, which is always last.
	Sections []Section
	// NoSectionTable omits the section header table entirely (e_shnum = 0).
	NoSectionTable bool
}

// RawSection is a section header exactly as encoded.
type RawSection struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// Built is an encoded image together with the layout values the builder chose.
type Built struct {
	Bytes     []byte
	EhSize    uint16
	PhEntSize uint16
	ShEntSize uint16
	PhOff     uint64
	ShOff     uint64
	ShStrNdx  uint16
	Sections  []RawSection
	ShStrTab  []byte
}

// NewImage64 returns an x86-64 executable image with no segments or sections.
func NewImage64() *Image {
	return &Image{
		Class:        ClassELF64,
		Data:         DataLSB,
		IdentVersion: 1,
		Type:         TypeExec,
		Machine:      MachineX86_64,
		Version:      1,
		Entry:        0x401000,
	}
}

// NewImage32 returns an i386 executable image with no segments or sections.
func NewImage32() *Image {
	return &Image{
		Class:        ClassELF32,
		Data:         DataLSB,
		IdentVersion: 1,
		Type:         TypeExec,
		Machine:      Machine386,
		Version:      1,
		Entry:        0x8049000,
	}
}

func (img *Image) is64() bool { return img.Class != ClassELF32 }

func (img *Image) word(b []byte, v uint64) []byte {
	if img.is64() {
		return binary.LittleEndian.AppendUint64(b, v)
	}
	return binary.LittleEndian.AppendUint32(b, uint32(v))
}

// Build encodes the image: header, program headers, section contents, the
// section-name string table, then the section header table.
func (img *Image) Build() *Built {
	out := &Built{EhSize: 52, PhEntSize: 32, ShEntSize: 40}
	if img.is64() {
		out.EhSize, out.PhEntSize, out.ShEntSize = 64, 56, 64
	}

	body := []byte{}
	pos := uint64(out.EhSize)

	if len(img.Progs) > 0 {
		out.PhOff = pos
		for _, p := range img.Progs {
			body = img.appendProg(body, p)
		}
		pos += uint64(len(img.Progs)) * uint64(out.PhEntSize)
	}

	if !img.NoSectionTable {
		strtab := []byte{0}
		out.Sections = append(out.Sections, RawSection{})

		addName := func(name string) uint32 {
			off := uint32(len(strtab))
			strtab = append(strtab, name...)
			strtab = append(strtab, 0)
			return off
		}

		for _, s := range img.Sections {
			raw := RawSection{
				Name:      addName(s.Name),
				Type:      s.Type,
				Flags:     s.Flags,
				Addr:      s.Addr,
				Link:      s.Link,
				Info:      s.Info,
				AddrAlign: s.AddrAlign,
				EntSize:   s.EntSize,
				Size:      uint64(len(s.Data)),
			}
			if len(s.Data) > 0 {
				raw.Offset = pos
				body = append(body, s.Data...)
				pos += uint64(len(s.Data))
			}
			out.Sections = append(out.Sections, raw)
		}

		shstrName := addName(".shstrtab")
		out.ShStrTab = strtab
		out.ShStrNdx = uint16(len(out.Sections))
		out.Sections = append(out.Sections, RawSection{
			Name:      shstrName,
			Type:      SHTStrTab,
			Offset:    pos,
			Size:      uint64(len(strtab)),
			AddrAlign: 1,
		})
		body = append(body, strtab...)
		pos += uint64(len(strtab))

		for pos%8 != 0 {
			body = append(body, 0)
			pos++
		}
		out.ShOff = pos
		for _, s := range out.Sections {
			body = img.appendSection(body, s)
		}
	}

	out.Bytes = append(img.appendHeader(nil, out), body...)
	return out
}

func (img *Image) appendHeader(b []byte, out *Built) []byte {
	ident := [16]byte{0x7f, 'E', 'L', 'F', img.Class, img.Data, img.IdentVersion, img.OSABI, img.ABIVersion}
	b = append(b, ident[:]...)
	b = binary.LittleEndian.AppendUint16(b, img.Type)
	b = binary.LittleEndian.AppendUint16(b, img.Machine)
	b = binary.LittleEndian.AppendUint32(b, img.Version)
	b = img.word(b, img.Entry)
	b = img.word(b, out.PhOff)
	b = img.word(b, out.ShOff)
	b = binary.LittleEndian.AppendUint32(b, img.Flags)
	b = binary.LittleEndian.AppendUint16(b, out.EhSize)
	b = binary.LittleEndian.AppendUint16(b, out.PhEntSize)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(img.Progs)))
	b = binary.LittleEndian.AppendUint16(b, out.ShEntSize)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(out.Sections)))
	b = binary.LittleEndian.AppendUint16(b, out.ShStrNdx)
	return b
}

func (img *Image) appendProg(b []byte, p Prog) []byte {
	b = binary.LittleEndian.AppendUint32(b, p.Type)
	if img.is64() {
		b = binary.LittleEndian.AppendUint32(b, p.Flags)
	}
	for _, v := range []uint64{p.Offset, p.Vaddr, p.Paddr, p.Filesz, p.Memsz} {
		b = img.word(b, v)
	}
	if !img.is64() {
		b = binary.LittleEndian.AppendUint32(b, p.Flags)
	}
	return img.word(b, p.Align)
}

func (img *Image) appendSection(b []byte, s RawSection) []byte {
	b = binary.LittleEndian.AppendUint32(b, s.Name)
	b = binary.LittleEndian.AppendUint32(b, s.Type)
	for _, v := range []uint64{s.Flags, s.Addr, s.Offset, s.Size} {
		b = img.word(b, v)
	}
	b = binary.LittleEndian.AppendUint32(b, s.Link)
	b = binary.LittleEndian.AppendUint32(b, s.Info)
	b = img.word(b, s.AddrAlign)
	return img.word(b, s.EntSize)
}

// WriteFile writes the encoded image into dir and returns its path.
func (b *Built) WriteFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	err := os.WriteFile(path, b.Bytes, 0o644) //nolint:gosec // test helper: 0644 is intentional for test files
	require.NoError(t, err)
	return path
}

// HardenedExecutable returns a 64-bit executable with a non-executable
// stack, a GNU_RELRO segment, no .got.plt and a .strtab naming
// __stack_chk_fail.
func HardenedExecutable() *Image {
	img := NewImage64()
	img.Progs = []Prog{
		{Type: PTLoad, Flags: PFR | PFX, Vaddr: 0x400000, Filesz: 0x1000, Memsz: 0x1000, Align: 0x1000},
		{Type: PTGNUStack, Flags: PFR | PFW, Align: 0x10},
		{Type: PTGNURelro, Flags: PFR, Vaddr: 0x403000, Filesz: 0x100, Memsz: 0x100, Align: 1},
	}
	img.Sections = []Section{
		{Name: ".text", Type: SHTProgBits, Flags: 0x6, Addr: 0x401000, AddrAlign: 16, Data: []byte{0xc3}},
		{Name: ".got", Type: SHTProgBits, Flags: 0x3, Addr: 0x403000, AddrAlign: 8, Data: make([]byte, 8)},
		{Name: ".symtab", Type: SHTSymTab, Link: 4, AddrAlign: 8, EntSize: 24, Data: make([]byte, 24)},
		{Name: ".strtab", Type: SHTStrTab, AddrAlign: 1, Data: []byte("\x00main\x00__stack_chk_fail\x00")},
	}
	return img
}
