// Package elfparse decodes the on-disk structure of little-endian ELF32 and
// ELF64 files: the identification block, the file header, the program header
// table and the section header table.
//
// # Usage
//
//	f, err := elfparse.Decode(file)
//	if err != nil {
//	    return err
//	}
//	stack, ok := f.FirstProg(elfparse.ProgTypeGNUStack)
//
// Decoding is read-only and single-pass. The decoded File keeps no reference
// to its source; helpers that need file contents (ReadSectionData,
// SectionNameTable) take the source again and seek explicitly before every
// read.
//
// # Errors
//
// A failed decode returns one of:
//
//   - ErrNotELF: the magic number does not match
//   - *TruncatedError: the source ended inside a field or region
//   - *InvalidEnumerantError: a tag outside its known value set
//   - *UnsupportedEncodingError: big-endian (or unset) data encoding
//   - *MissingStructureError: a required table entry is absent
//
// # Limitations
//
// - Big-endian files are recognized and rejected rather than decoded
// - Extended section numbering (SHN_XINDEX) is not resolved
// - Table entries are read back to back; e_phentsize and e_shentsize are reported but not used as strides
package elfparse
