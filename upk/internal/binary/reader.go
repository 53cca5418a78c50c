package binary

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/upkg/errors"
)

// GUIDSize is the width of the raw identity GUIDs stored in headers and exports.
const GUIDSize = 16

// Reader wraps an io.ReadSeeker with position tracking and package-specific read methods.
// All integers are little-endian.
type Reader struct {
	r    io.ReadSeeker
	pos  int64
	size int64
}

// NewReader creates a new Reader positioned at the current offset of r.
// The stream size is probed once so that oversized length prefixes fail
// before allocating; it is -1 when the source cannot report it.
func NewReader(r io.ReadSeeker) *Reader {
	br := &Reader{r: r, size: -1}
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return br
	}
	br.pos = cur
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return br
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return br
	}
	br.size = end
	return br
}

// Position returns the current absolute byte position.
func (r *Reader) Position() int64 {
	return r.pos
}

// Size returns the total stream size, or -1 if unknown.
func (r *Reader) Size() int64 {
	return r.size
}

// Remaining returns the number of bytes between the cursor and the end of
// the stream, or -1 if unknown. Positions past the end report 0.
func (r *Reader) Remaining() int64 {
	if r.size < 0 {
		return -1
	}
	if r.pos >= r.size {
		return 0
	}
	return r.size - r.pos
}

// Seek moves the cursor to the absolute position pos. Seeking past the end
// is allowed; the next read fails with a truncation error.
func (r *Reader) Seek(field string, pos int64) error {
	n, err := r.r.Seek(pos, io.SeekStart)
	if err != nil {
		return errors.Seek(field, pos, err)
	}
	r.pos = n
	return nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(field string, n int64) ([]byte, error) {
	start := r.pos
	if n < 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Field(field).Offset(start).Value(n).
			Detail("negative length %d", n).Build()
	}
	if rem := r.Remaining(); rem >= 0 && n > rem {
		return nil, errors.Truncated(field, start, n, rem, io.ErrUnexpectedEOF)
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	r.pos += int64(got)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Truncated(field, start, n, int64(got), err)
	}
	return buf, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32(field string) (uint32, error) {
	buf, err := r.ReadBytes(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32(field string) (int32, error) {
	v, err := r.ReadU32(field)
	return int32(v), err
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64(field string) (uint64, error) {
	buf, err := r.ReadBytes(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadGUID reads a raw 16-byte GUID.
func (r *Reader) ReadGUID(field string) ([GUIDSize]byte, error) {
	var g [GUIDSize]byte
	buf, err := r.ReadBytes(field, GUIDSize)
	if err != nil {
		return g, err
	}
	copy(g[:], buf)
	return g, nil
}

// ReadString reads a length-prefixed string.
//
// A positive length n is followed by n single-byte characters; a trailing NUL
// is dropped and the rest must be valid UTF-8. A negative length -n is
// followed by n UTF-16LE code units, also with an optional trailing NUL.
func (r *Reader) ReadString(field string) (string, error) {
	n, err := r.ReadI32(field)
	if err != nil {
		return "", err
	}
	start := r.pos
	switch {
	case n == 0:
		return "", nil
	case n > 0:
		data, err := r.ReadBytes(field, int64(n))
		if err != nil {
			return "", err
		}
		if data[len(data)-1] == 0 {
			data = data[:len(data)-1]
		}
		if !utf8.Valid(data) {
			return "", errors.InvalidUTF8(field, start, data)
		}
		return string(data), nil
	default:
		units := -int64(n)
		data, err := r.ReadBytes(field, units*2)
		if err != nil {
			return "", err
		}
		if data[len(data)-2] == 0 && data[len(data)-1] == 0 {
			data = data[:len(data)-2]
		}
		return decodeUTF16(field, start, data)
	}
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func decodeUTF16(field string, start int64, data []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.New(errors.PhaseDecode, errors.KindInvalidUTF8).
			Field(field).Offset(start).Cause(err).
			Detail("invalid UTF-16 sequence").Build()
	}
	return string(out), nil
}

// ReadRemaining reads all bytes from the cursor to the end of the stream.
// A cursor at or past the end yields an empty slice.
func (r *Reader) ReadRemaining(field string) ([]byte, error) {
	if rem := r.Remaining(); rem >= 0 {
		if rem == 0 {
			return []byte{}, nil
		}
		return r.ReadBytes(field, rem)
	}
	start := r.pos
	data, err := io.ReadAll(r.r)
	r.pos += int64(len(data))
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindTruncated).
			Field(field).Offset(start).Cause(err).
			Detail("read tail").Build()
	}
	return data, nil
}
