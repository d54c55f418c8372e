package elfparse

import (
	"bytes"
	"fmt"
)

// IdentSize is the size of the e_ident identification block.
const IdentSize = 16

// magic is the ELF magic number.
var magic = []byte{0x7f, 'E', 'L', 'F'}

// Ident is the decoded e_ident identification block.
type Ident struct {
	Magic      [4]byte
	Class      Class
	Data       Data
	Version    IdentVersion
	OSABI      OSABI
	ABIVersion uint8
}

// IsELFMagic reports whether b starts with the ELF magic number.
func IsELFMagic(b []byte) bool {
	return len(b) >= len(magic) && bytes.Equal(b[:len(magic)], magic)
}

// decodeIdent reads the 16-byte identification block. The magic is checked
// before anything else is read, so a non-ELF source fails with ErrNotELF
// even when it is shorter than the block.
func decodeIdent(br *byteReader) (Ident, error) {
	m, err := br.bytes(len(magic), "magic")
	if err != nil {
		// Too short to carry the magic.
		return Ident{}, fmt.Errorf("%w: %w", ErrNotELF, err)
	}
	if !IsELFMagic(m) {
		return Ident{}, ErrNotELF
	}

	rest, err := br.bytes(IdentSize-len(magic), "e_ident")
	if err != nil {
		return Ident{}, err
	}

	class, err := checkEnum(classNames, Class(rest[0]), "EI_CLASS")
	if err != nil {
		return Ident{}, err
	}
	data, err := checkEnum(dataNames, Data(rest[1]), "EI_DATA")
	if err != nil {
		return Ident{}, err
	}
	version, err := checkEnum(identVersionNames, IdentVersion(rest[2]), "EI_VERSION")
	if err != nil {
		return Ident{}, err
	}
	osabi, err := checkEnum(osabiNames, OSABI(rest[3]), "EI_OSABI")
	if err != nil {
		return Ident{}, err
	}

	id := Ident{
		Class:      class,
		Data:       data,
		Version:    version,
		OSABI:      osabi,
		ABIVersion: rest[4],
	}
	copy(id.Magic[:], m)
	return id, nil
}
