package binary

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Writer provides buffered little-endian writing for building package images.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteI32 writes a little-endian int32.
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteU64 writes a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteString writes s with a positive length prefix and a trailing NUL.
func (w *Writer) WriteString(s string) {
	w.WriteI32(int32(len(s) + 1))
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteWideString writes s as UTF-16LE with a negative length prefix and a trailing NUL.
func (w *Writer) WriteWideString(s string) {
	units := utf16.Encode([]rune(s))
	w.WriteI32(-int32(len(units) + 1))
	for _, u := range units {
		w.buf.WriteByte(byte(u))
		w.buf.WriteByte(byte(u >> 8))
	}
	w.buf.WriteByte(0)
	w.buf.WriteByte(0)
}

// PutU32 overwrites the uint32 at byte offset at, for back-patching offsets.
func (w *Writer) PutU32(at int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf.Bytes()[at:at+4], v)
}
