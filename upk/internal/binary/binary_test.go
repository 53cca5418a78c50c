package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"

	upkerrors "github.com/wippyai/upkg/errors"
)

func isKind(err error, kind upkerrors.Kind) bool {
	var e *upkerrors.Error
	return errors.As(err, &e) && e.Kind == kind
}

func TestReaderReadU32(t *testing.T) {
	data := []byte{0xC1, 0x83, 0x2A, 0x9E, 0x0D, 0x01, 0x00, 0x00}
	r := NewReader(bytes.NewReader(data))

	got, err := r.ReadU32("tag")
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if got != 0x9E2A83C1 {
		t.Errorf("ReadU32: got 0x%08X, want 0x9E2A83C1", got)
	}
	if r.Position() != 4 {
		t.Errorf("position: got %d, want 4", r.Position())
	}

	v, err := r.ReadI32("version")
	if err != nil {
		t.Fatalf("ReadI32: %v", err)
	}
	if v != 269 {
		t.Errorf("ReadI32: got %d, want 269", v)
	}
}

func TestReaderReadI32Negative(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	v, err := r.ReadI32("x")
	if err != nil {
		t.Fatalf("ReadI32: %v", err)
	}
	if v != -1 {
		t.Errorf("got %d, want -1", v)
	}
}

func TestReaderReadU64(t *testing.T) {
	w := NewWriter()
	w.WriteU64(0x0007001000000000)
	r := NewReader(bytes.NewReader(w.Bytes()))

	got, err := r.ReadU64("flags")
	if err != nil {
		t.Fatalf("ReadU64: %v", err)
	}
	if got != 0x0007001000000000 {
		t.Errorf("got 0x%X", got)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))

	_, err := r.ReadU32("nameCount")
	if err == nil {
		t.Fatal("expected error for short read")
	}
	var e *upkerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Kind != upkerrors.KindTruncated {
		t.Errorf("Kind = %v, want truncated", e.Kind)
	}
	if e.Field != "nameCount" {
		t.Errorf("Field = %q, want nameCount", e.Field)
	}
	if e.Expected != 4 || e.Available != 2 {
		t.Errorf("Expected=%d Available=%d, want 4/2", e.Expected, e.Available)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("cause should be io.ErrUnexpectedEOF, got %v", e.Cause)
	}
}

func TestReaderReadBytesNegative(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadBytes("x", -1)
	if !isKind(err, upkerrors.KindInvalidData) {
		t.Errorf("expected invalid_data, got %v", err)
	}
}

func TestReaderReadGUID(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	r := NewReader(bytes.NewReader(data))
	g, err := r.ReadGUID("guid")
	if err != nil {
		t.Fatalf("ReadGUID: %v", err)
	}
	if !bytes.Equal(g[:], data[:16]) {
		t.Errorf("guid = %x", g)
	}
	if r.Position() != 16 {
		t.Errorf("position: got %d, want 16", r.Position())
	}
}

func TestReaderReadString(t *testing.T) {
	tests := []struct {
		name    string
		encoded []byte
		want    string
		pos     int64
	}{
		{"nul terminated", []byte{4, 0, 0, 0, 'F', 'o', 'o', 0}, "Foo", 8},
		{"no terminator", []byte{3, 0, 0, 0, 'F', 'o', 'o'}, "Foo", 7},
		{"empty", []byte{0, 0, 0, 0}, "", 4},
		{"only nul", []byte{1, 0, 0, 0, 0}, "", 5},
		{"utf8", []byte{3, 0, 0, 0, 0xC3, 0xA9, 0}, "é", 7},
		{"inner nul kept", []byte{3, 0, 0, 0, 'a', 0, 'b'}, "a\x00b", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.encoded))
			got, err := r.ReadString("s")
			if err != nil {
				t.Fatalf("ReadString: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if r.Position() != tt.pos {
				t.Errorf("position: got %d, want %d", r.Position(), tt.pos)
			}
		})
	}
}

func TestReaderReadStringWide(t *testing.T) {
	w := NewWriter()
	w.WriteWideString("Grüße")
	w.WriteWideString("")
	r := NewReader(bytes.NewReader(w.Bytes()))

	got, err := r.ReadString("s")
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "Grüße" {
		t.Errorf("got %q, want Grüße", got)
	}

	got, err = r.ReadString("s")
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if r.Position() != int64(len(w.Bytes())) {
		t.Errorf("position: got %d, want %d", r.Position(), len(w.Bytes()))
	}
}

func TestReaderReadStringWideNoTerminator(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0xFF, 0xFF, 'h', 0, 'i', 0}
	r := NewReader(bytes.NewReader(data))
	got, err := r.ReadString("s")
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "hi" {
		t.Errorf("got %q, want hi", got)
	}
}

func TestReaderReadStringInvalidUTF8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{3, 0, 0, 0, 0xFF, 0xFE, 0}))
	_, err := r.ReadString("name")
	if !isKind(err, upkerrors.KindInvalidUTF8) {
		t.Fatalf("expected invalid_utf8, got %v", err)
	}
	var e *upkerrors.Error
	errors.As(err, &e)
	if e.Offset != 4 {
		t.Errorf("Offset = %d, want 4", e.Offset)
	}
}

func TestReaderReadStringTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"length", []byte{5, 0}},
		{"body", []byte{5, 0, 0, 0, 'a', 'b'}},
		{"huge length", []byte{0xFF, 0xFF, 0xFF, 0x7F, 'a'}},
		{"wide body", []byte{0xFC, 0xFF, 0xFF, 0xFF, 'a', 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.data))
			_, err := r.ReadString("s")
			if !isKind(err, upkerrors.KindTruncated) {
				t.Errorf("expected truncated, got %v", err)
			}
		})
	}
}

func TestReaderSeek(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	r := NewReader(bytes.NewReader(data))

	if err := r.Seek("offset", 6); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if r.Position() != 6 {
		t.Errorf("position: got %d, want 6", r.Position())
	}
	b, err := r.ReadBytes("x", 2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(b, []byte{6, 7}) {
		t.Errorf("got %v, want [6 7]", b)
	}

	// Past the end is allowed, the read is not.
	if err := r.Seek("offset", 100); err != nil {
		t.Fatalf("Seek past end: %v", err)
	}
	if _, err := r.ReadU32("x"); !isKind(err, upkerrors.KindTruncated) {
		t.Errorf("expected truncated after seek past end, got %v", err)
	}
}

func TestReaderSeekNegative(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1}))
	err := r.Seek("exportOffset", -5)
	if !isKind(err, upkerrors.KindSeek) {
		t.Fatalf("expected seek error, got %v", err)
	}
}

func TestReaderReadRemaining(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	r := NewReader(bytes.NewReader(data))
	if err := r.Seek("x", 2); err != nil {
		t.Fatal(err)
	}
	rest, err := r.ReadRemaining("tail")
	if err != nil {
		t.Fatalf("ReadRemaining: %v", err)
	}
	if !bytes.Equal(rest, []byte{3, 4, 5}) {
		t.Errorf("got %v, want [3 4 5]", rest)
	}

	rest, err = r.ReadRemaining("tail")
	if err != nil {
		t.Fatalf("ReadRemaining at end: %v", err)
	}
	if rest == nil || len(rest) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", rest)
	}
}

// noEndSeeker cannot report its size, like a pipe wrapped in a seekable shim.
type noEndSeeker struct {
	*bytes.Reader
}

func (s noEndSeeker) Seek(off int64, whence int) (int64, error) {
	if whence == io.SeekEnd {
		return 0, errors.New("size unknown")
	}
	return s.Reader.Seek(off, whence)
}

func TestReaderUnknownSize(t *testing.T) {
	r := NewReader(noEndSeeker{bytes.NewReader([]byte{1, 0, 0, 0, 9, 9})})
	if r.Size() != -1 {
		t.Errorf("Size = %d, want -1", r.Size())
	}
	v, err := r.ReadU32("x")
	if err != nil || v != 1 {
		t.Fatalf("ReadU32 = %d, %v", v, err)
	}
	rest, err := r.ReadRemaining("tail")
	if err != nil {
		t.Fatalf("ReadRemaining: %v", err)
	}
	if !bytes.Equal(rest, []byte{9, 9}) {
		t.Errorf("got %v", rest)
	}
	if r.Position() != 6 {
		t.Errorf("position: got %d, want 6", r.Position())
	}
	if _, err := r.ReadU32("x"); !isKind(err, upkerrors.KindTruncated) {
		t.Errorf("expected truncated, got %v", err)
	}
}

func TestNewReaderMidStream(t *testing.T) {
	br := bytes.NewReader([]byte{0, 0, 7, 0, 0, 0})
	if _, err := br.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	r := NewReader(br)
	if r.Position() != 2 {
		t.Errorf("position: got %d, want 2", r.Position())
	}
	v, err := r.ReadU32("x")
	if err != nil || v != 7 {
		t.Errorf("ReadU32 = %d, %v", v, err)
	}
}

func TestWriterPutU32(t *testing.T) {
	w := NewWriter()
	w.WriteU32(0)
	w.WriteU32(0xAABBCCDD)
	w.PutU32(0, 42)
	r := NewReader(bytes.NewReader(w.Bytes()))
	a, _ := r.ReadU32("a")
	b, _ := r.ReadU32("b")
	if a != 42 || b != 0xAABBCCDD {
		t.Errorf("got %d, 0x%X", a, b)
	}
	if w.Len() != 8 {
		t.Errorf("Len = %d, want 8", w.Len())
	}
}
