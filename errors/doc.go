// Package errors provides structured error types for the package decoder.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes the field being decoded, the absolute stream offset,
// the table path (e.g. "exports.3") and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
//		Path("imports", "2").
//		Field("className").
//		Offset(0x1c0).
//		Detail("name index %d out of range", 99).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated("nameCount", 0x18, 4, 1, io.ErrUnexpectedEOF)
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
