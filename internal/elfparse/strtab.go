package elfparse

import (
	"bytes"
	"math"
)

// StringTable is the raw contents of a SHT_STRTAB section: NUL-terminated
// strings addressed by byte offset.
type StringTable []byte

// Lookup returns the NUL-terminated string starting at off.
func (t StringTable) Lookup(off uint32) (string, bool) {
	if uint64(off) >= uint64(len(t)) {
		return "", false
	}
	rest := t[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", false
	}
	return string(rest[:end]), true
}

// Contains reports whether sub occurs anywhere in the raw table bytes,
// including inside longer strings.
func (t StringTable) Contains(sub string) bool {
	return bytes.Contains(t, []byte(sub))
}

// Offsets returns, in increasing order, every offset at which Lookup would
// return exactly s. Suffix-shared names count: ".strtab" is found inside
// "foo.strtab" when a linker points sh_name there.
func (t StringTable) Offsets(s string) []uint32 {
	needle := append([]byte(s), 0)
	var offs []uint32
	for start := 0; start < len(t); {
		i := bytes.Index(t[start:], needle)
		if i < 0 {
			break
		}
		off := start + i
		if off > math.MaxUint32 {
			break
		}
		offs = append(offs, uint32(off))
		start = off + 1
	}
	return offs
}
