package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to tables
	PhaseValidate Phase = "validate" // structural checks on decoded tables
	PhaseLoad     Phase = "load"     // opening the byte source
	PhaseOutput   Phase = "output"   // rendering decoded tables
)

// Kind categorizes the error
type Kind string

const (
	KindTruncated    Kind = "truncated"
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindSeek         Kind = "seek"
	KindInvalidMagic Kind = "invalid_magic"
	KindUnsupported  Kind = "unsupported"
	KindInvalidData  Kind = "invalid_data"
	KindInvalidInput Kind = "invalid_input"
)

// NoOffset marks an error that is not tied to a stream position.
const NoOffset int64 = -1

// Error is the structured error type used throughout the decoder
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Field  string
	Detail string
	Path   []string
	Offset int64

	// Expected and Available are byte counts, set for truncation errors.
	Expected  int64
	Available int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}

	if e.Offset >= 0 {
		b.WriteString(" @0x")
		b.WriteString(strconv.FormatInt(e.Offset, 16))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Path sets the table path, e.g. "exports", "3"
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Field sets the name of the field being decoded
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Offset sets the absolute stream offset
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates a short-read error
func Truncated(field string, offset int64, expected, available int64, cause error) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindTruncated,
		Field:     field,
		Offset:    offset,
		Expected:  expected,
		Available: available,
		Detail:    fmt.Sprintf("need %d bytes, have %d", expected, available),
		Cause:     cause,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(field string, offset int64, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Field:  field,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Offset: NoOffset,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Seek creates an error for a rejected seek
func Seek(field string, target int64, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindSeek,
		Field:  field,
		Offset: target,
		Detail: fmt.Sprintf("cannot seek to %d", target),
		Value:  target,
		Cause:  cause,
	}
}

// InvalidMagic creates an unrecognized tag error
func InvalidMagic(got, want uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidMagic,
		Field:  "tag",
		Offset: 0,
		Detail: fmt.Sprintf("tag 0x%08X, want 0x%08X", got, want),
		Value:  got,
	}
}

// Unsupported creates an unsupported feature error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: NoOffset,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: NoOffset,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a byte source loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns a copy of err with path prepended to its Path.
// Non-structured errors are returned unchanged.
func WithPath(err error, path ...string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	cp := *e
	cp.Path = append(append([]string(nil), path...), e.Path...)
	return &cp
}
