package elfparse

import "fmt"

// Section is one section header table entry.
type Section struct {
	// Name is the byte offset of the section name in the section-name string table.
	Name      uint32
	Type      SectionType
	Flags     SectionFlag
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// Writable reports whether SHF_WRITE is set.
func (s Section) Writable() bool { return s.Flags&SectionFlagWrite != 0 }

// Alloc reports whether SHF_ALLOC is set.
func (s Section) Alloc() bool { return s.Flags&SectionFlagAlloc != 0 }

// ExecInstr reports whether SHF_EXECINSTR is set.
func (s Section) ExecInstr() bool { return s.Flags&SectionFlagExecInstr != 0 }

// HasFileData reports whether the section occupies bytes in the file.
func (s Section) HasFileData() bool {
	return s.Type != SectionTypeNull && s.Type != SectionTypeNoBits
}

// decodeSection reads one section header entry. The field order is the
// same for both classes; only the word width differs.
func decodeSection(br *byteReader, w addrWidth) (Section, error) {
	var s Section
	var err error

	if s.Name, err = br.u32("sh_name"); err != nil {
		return Section{}, err
	}

	rawType, err := br.u32("sh_type")
	if err != nil {
		return Section{}, err
	}
	if s.Type, err = parseSectionType(rawType); err != nil {
		return Section{}, err
	}

	flags, err := w.word(br, "sh_flags")
	if err != nil {
		return Section{}, err
	}
	s.Flags = SectionFlag(flags)

	for _, f := range []struct {
		dst   *uint64
		field string
	}{
		{&s.Addr, "sh_addr"},
		{&s.Offset, "sh_offset"},
		{&s.Size, "sh_size"},
	} {
		if *f.dst, err = w.word(br, f.field); err != nil {
			return Section{}, err
		}
	}

	if s.Link, err = br.u32("sh_link"); err != nil {
		return Section{}, err
	}
	if s.Info, err = br.u32("sh_info"); err != nil {
		return Section{}, err
	}
	if s.AddrAlign, err = w.word(br, "sh_addralign"); err != nil {
		return Section{}, err
	}
	if s.EntSize, err = w.word(br, "sh_entsize"); err != nil {
		return Section{}, err
	}
	return s, nil
}

func sectionStructure(i int) string {
	return fmt.Sprintf("section header %d", i)
}
