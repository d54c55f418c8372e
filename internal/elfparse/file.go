package elfparse

import (
	"bufio"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// File is a decoded ELF: the header, the program header table and the
// section header table, each in file order. It holds no reference to the
// byte source it was decoded from.
type File struct {
	Header   Header
	Progs    []Prog
	Sections []Section
}

// Decode reads the identification block, the header, the program header
// table and the section header table from r. The class byte selects the
// ELF32 or ELF64 layout. Any read or validation failure aborts the decode;
// no partial File is returned.
func Decode(r io.ReadSeeker) (*File, error) {
	size, err := sourceSize(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to ELF header: %w", err)
	}

	br := newByteReader(bufio.NewReaderSize(r, IdentSize+64), 0, "identification block")
	id, err := decodeIdent(br)
	if err != nil {
		return nil, err
	}
	if id.Data != Data2LSB {
		return nil, &UnsupportedEncodingError{Data: id.Data}
	}

	w, err := widthFor(id.Class)
	if err != nil {
		return nil, err
	}

	br.structure = "ELF header"
	hdr, err := decodeHeader(br, w, id)
	if err != nil {
		return nil, err
	}

	progs, err := decodeProgTable(r, size, w, hdr)
	if err != nil {
		return nil, err
	}

	sections, err := decodeSectionTable(r, size, w, hdr)
	if err != nil {
		return nil, err
	}

	return &File{Header: hdr, Progs: progs, Sections: sections}, nil
}

func decodeProgTable(r io.ReadSeeker, size int64, w addrWidth, hdr Header) ([]Prog, error) {
	progs := make([]Prog, 0, hdr.PhNum)
	if hdr.PhNum == 0 {
		return progs, nil
	}

	br, err := tableReader(r, size, hdr.PhOff, "program header table", "e_phoff")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(hdr.PhNum); i++ {
		br.structure = progStructure(i)
		p, err := decodeProg(br, w)
		if err != nil {
			return nil, err
		}
		progs = append(progs, p)
	}
	return progs, nil
}

func decodeSectionTable(r io.ReadSeeker, size int64, w addrWidth, hdr Header) ([]Section, error) {
	sections := make([]Section, 0, hdr.ShNum)
	if hdr.ShNum == 0 {
		return sections, nil
	}

	br, err := tableReader(r, size, hdr.ShOff, "section header table", "e_shoff")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(hdr.ShNum); i++ {
		br.structure = sectionStructure(i)
		s, err := decodeSection(br, w)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// tableReader seeks to a table offset taken from the header. The offset
// must lie inside the source.
func tableReader(r io.ReadSeeker, size int64, off uint64, structure, field string) (*byteReader, error) {
	if off >= uint64(size) {
		return nil, &TruncatedError{Structure: structure, Field: field, Offset: int64(min(off, uint64(size))), Err: io.ErrUnexpectedEOF}
	}
	if _, err := r.Seek(int64(off), io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to %s: %w", structure, err)
	}
	return newByteReader(bufio.NewReader(r), int64(off), structure), nil
}

// sourceSize returns the total size of r by seeking to its end.
func sourceSize(r io.Seeker) (int64, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to determine source size: %w", err)
	}
	return size, nil
}

// FirstProg returns the first program header of type t, in file order.
func (f *File) FirstProg(t ProgType) (Prog, bool) {
	return lo.Find(f.Progs, func(p Prog) bool { return p.Type == t })
}

// Section returns the section header at index i.
func (f *File) Section(i int) (Section, error) {
	if i < 0 || i >= len(f.Sections) {
		return Section{}, fmt.Errorf("%w: %d (have %d)", ErrSectionIndexOutOfRange, i, len(f.Sections))
	}
	return f.Sections[i], nil
}

// ReadSectionData seeks to the section's file offset and reads its full
// contents. Sections without file data read as empty. A section reaching
// past the end of r fails with a TruncatedError before anything is allocated.
func (f *File) ReadSectionData(r io.ReadSeeker, s Section) ([]byte, error) {
	if !s.HasFileData() || s.Size == 0 {
		return []byte{}, nil
	}

	size, err := sourceSize(r)
	if err != nil {
		return nil, err
	}
	if s.Offset > uint64(size) || s.Size > uint64(size)-s.Offset {
		return nil, &TruncatedError{
			Structure: "section data",
			Field:     fmt.Sprintf("%d bytes", s.Size),
			Offset:    int64(min(s.Offset, uint64(size))),
			Err:       io.ErrUnexpectedEOF,
		}
	}

	if _, err := r.Seek(int64(s.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to section data: %w", err)
	}
	return newByteReader(r, int64(s.Offset), "section data").bytes(int(s.Size), "contents")
}

// SectionNameTable reads the section-name string table, located through
// e_shstrndx in the section header table.
func (f *File) SectionNameTable(r io.ReadSeeker) (StringTable, error) {
	idx := int(f.Header.ShStrNdx)
	if idx == 0 || idx >= len(f.Sections) {
		return nil, &MissingStructureError{Structure: fmt.Sprintf("section name string table (e_shstrndx=%d, e_shnum=%d)", idx, len(f.Sections))}
	}
	data, err := f.ReadSectionData(r, f.Sections[idx])
	if err != nil {
		return nil, fmt.Errorf("failed to read section name string table: %w", err)
	}
	return StringTable(data), nil
}

// SectionName resolves the section's sh_name in the section-name string
// table. Unresolvable names render as an empty string.
func (f *File) SectionName(strtab StringTable, s Section) string {
	name, _ := strtab.Lookup(s.Name)
	return name
}
