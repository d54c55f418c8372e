package elfparse

import "fmt"

// Prog is one program header table entry.
type Prog struct {
	Type   ProgType
	Flags  ProgFlag
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Readable reports whether bit 2 (PF_R) of p_flags is set.
func (p Prog) Readable() bool { return p.Flags&ProgFlagR != 0 }

// Writable reports whether bit 1 (PF_W) of p_flags is set.
func (p Prog) Writable() bool { return p.Flags&ProgFlagW != 0 }

// Executable reports whether bit 0 (PF_X) of p_flags is set.
func (p Prog) Executable() bool { return p.Flags&ProgFlagX != 0 }

// decodeProg reads one program header entry. ELF64 stores p_flags right
// after p_type, ELF32 stores it after p_memsz; both orders are kept as-is.
func decodeProg(br *byteReader, w addrWidth) (Prog, error) {
	rawType, err := br.u32("p_type")
	if err != nil {
		return Prog{}, err
	}
	typ, err := parseProgType(rawType)
	if err != nil {
		return Prog{}, err
	}

	p := Prog{Type: typ}

	readFlags := func() error {
		v, err := br.u32("p_flags")
		p.Flags = ProgFlag(v)
		return err
	}

	if w.progFlagsFirst() {
		if err := readFlags(); err != nil {
			return Prog{}, err
		}
	}

	words := []struct {
		dst   *uint64
		field string
	}{
		{&p.Offset, "p_offset"},
		{&p.Vaddr, "p_vaddr"},
		{&p.Paddr, "p_paddr"},
		{&p.Filesz, "p_filesz"},
		{&p.Memsz, "p_memsz"},
	}
	for _, f := range words {
		if *f.dst, err = w.word(br, f.field); err != nil {
			return Prog{}, err
		}
	}

	if !w.progFlagsFirst() {
		if err := readFlags(); err != nil {
			return Prog{}, err
		}
	}

	if p.Align, err = w.word(br, "p_align"); err != nil {
		return Prog{}, err
	}
	return p, nil
}

func progStructure(i int) string {
	return fmt.Sprintf("program header %d", i)
}
