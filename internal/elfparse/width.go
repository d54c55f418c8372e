package elfparse

// addrWidth captures everything that differs between the ELF32 and ELF64
// layouts: the width of address/offset/size words, and where p_flags sits
// inside a program header. The header, program header and section header
// decoders are written once against this interface.
type addrWidth interface {
	class() Class
	// word reads one address-width field (4 bytes on ELF32, 8 on ELF64).
	word(br *byteReader, field string) (uint64, error)
	// progFlagsFirst reports whether p_flags precedes p_offset. ELF64 places
	// it right after p_type; ELF32 places it after p_memsz.
	progFlagsFirst() bool
	headerSize() uint16
	progEntrySize() uint16
	sectionEntrySize() uint16
}

type width32 struct{}

func (width32) class() Class { return Class32 }

func (width32) word(br *byteReader, field string) (uint64, error) {
	v, err := br.u32(field)
	return uint64(v), err
}

func (width32) progFlagsFirst() bool     { return false }
func (width32) headerSize() uint16       { return 52 }
func (width32) progEntrySize() uint16    { return 32 }
func (width32) sectionEntrySize() uint16 { return 40 }

type width64 struct{}

func (width64) class() Class { return Class64 }

func (width64) word(br *byteReader, field string) (uint64, error) {
	return br.u64(field)
}

func (width64) progFlagsFirst() bool     { return true }
func (width64) headerSize() uint16       { return 64 }
func (width64) progEntrySize() uint16    { return 56 }
func (width64) sectionEntrySize() uint16 { return 64 }

// widthFor selects the layout for an identification class.
func widthFor(c Class) (addrWidth, error) {
	switch c {
	case Class32:
		return width32{}, nil
	case Class64:
		return width64{}, nil
	default:
		return nil, &InvalidEnumerantError{Field: "EI_CLASS", Value: uint64(c)}
	}
}
