package elfparse

// Header is the decoded ELF file header. Address and offset fields are
// widened to 64 bits for ELF32 files.
type Header struct {
	Ident     Ident
	Type      Type
	Machine   Machine
	Version   Version
	Entry     uint64
	PhOff     uint64
	ShOff     uint64
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16
}

// Class returns the identification class the header was decoded with.
func (h Header) Class() Class {
	return h.Ident.Class
}

// decodeHeader reads the fields that follow e_ident, in file order. The
// reader must be positioned right after the identification block; on return
// it is positioned right after the header.
func decodeHeader(br *byteReader, w addrWidth, id Ident) (Header, error) {
	rawType, err := br.u16("e_type")
	if err != nil {
		return Header{}, err
	}
	typ, err := checkEnum(typeNames, Type(rawType), "e_type")
	if err != nil {
		return Header{}, err
	}

	rawMachine, err := br.u16("e_machine")
	if err != nil {
		return Header{}, err
	}
	machine, err := checkEnum(machineNames, Machine(rawMachine), "e_machine")
	if err != nil {
		return Header{}, err
	}

	rawVersion, err := br.u32("e_version")
	if err != nil {
		return Header{}, err
	}
	version, err := checkEnum(versionNames, Version(rawVersion), "e_version")
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Ident:   id,
		Type:    typ,
		Machine: machine,
		Version: version,
	}

	words := []struct {
		dst   *uint64
		field string
	}{
		{&h.Entry, "e_entry"},
		{&h.PhOff, "e_phoff"},
		{&h.ShOff, "e_shoff"},
	}
	for _, f := range words {
		if *f.dst, err = w.word(br, f.field); err != nil {
			return Header{}, err
		}
	}

	if h.Flags, err = br.u32("e_flags"); err != nil {
		return Header{}, err
	}

	halves := []struct {
		dst   *uint16
		field string
	}{
		{&h.EhSize, "e_ehsize"},
		{&h.PhEntSize, "e_phentsize"},
		{&h.PhNum, "e_phnum"},
		{&h.ShEntSize, "e_shentsize"},
		{&h.ShNum, "e_shnum"},
		{&h.ShStrNdx, "e_shstrndx"},
	}
	for _, f := range halves {
		if *f.dst, err = br.u16(f.field); err != nil {
			return Header{}, err
		}
	}

	return h, nil
}
