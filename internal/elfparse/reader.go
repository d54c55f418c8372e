package elfparse

import (
	"encoding/binary"
	"io"
)

// byteReader reads fixed-width little-endian integers from a sequential
// source. A read either fills the whole field or fails with a TruncatedError
// naming the structure being decoded.
type byteReader struct {
	r         io.Reader
	off       int64
	structure string
	buf       [8]byte
}

func newByteReader(r io.Reader, off int64, structure string) *byteReader {
	return &byteReader{r: r, off: off, structure: structure}
}

func (br *byteReader) fill(n int, field string) ([]byte, error) {
	b := br.buf[:n]
	if _, err := io.ReadFull(br.r, b); err != nil {
		return nil, &TruncatedError{Structure: br.structure, Field: field, Offset: br.off, Err: err}
	}
	br.off += int64(n)
	return b, nil
}

func (br *byteReader) u8(field string) (uint8, error) {
	b, err := br.fill(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (br *byteReader) u16(field string) (uint16, error) {
	b, err := br.fill(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (br *byteReader) u32(field string) (uint32, error) {
	b, err := br.fill(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (br *byteReader) u64(field string) (uint64, error) {
	b, err := br.fill(8, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// bytes reads exactly n raw bytes.
func (br *byteReader) bytes(n int, field string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(br.r, b); err != nil {
		return nil, &TruncatedError{Structure: br.structure, Field: field, Offset: br.off, Err: err}
	}
	br.off += int64(n)
	return b, nil
}
