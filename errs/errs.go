// Package errs defines the error kinds shared by every layer of the BRSAR
// decoder, from the primitive reader up through the archive facade.
package errs

import "fmt"

// Kind classifies a decode failure.
type Kind int

// Error kinds.
const (
	// Io is an underlying read or seek failure.
	Io Kind = iota
	// UnexpectedEof is a short read relative to a declared size.
	UnexpectedEof
	// BadMagic is a file or block magic mismatch.
	BadMagic
	// BadEndianMark is an endian mark that is neither 0xFEFF nor 0xFFFE.
	BadEndianMark
	// UnsupportedVersion is a version value outside the known set.
	UnsupportedVersion
	// StructuralMismatch covers block-count, length, or offset invariant
	// violations.
	StructuralMismatch
	// NullAbsoluteReference is a required absolute reference whose offset is 0.
	NullAbsoluteReference
	// IndexOutOfBounds is a table or node index beyond the array length.
	IndexOutOfBounds
	// NotFound is a Patricia lookup that hit a sentinel child or a bad root.
	NotFound
	// NoPayload is a sound whose file has no recorded FilePosition.
	NoPayload
)

var kindNames = map[Kind]string{
	Io:                    "Io",
	UnexpectedEof:         "UnexpectedEof",
	BadMagic:              "BadMagic",
	BadEndianMark:         "BadEndianMark",
	UnsupportedVersion:    "UnsupportedVersion",
	StructuralMismatch:    "StructuralMismatch",
	NullAbsoluteReference: "NullAbsoluteReference",
	IndexOutOfBounds:      "IndexOutOfBounds",
	NotFound:              "NotFound",
	NoPayload:             "NoPayload",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a decode failure, tagged with the Kind that produced it and,
// where applicable, the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("brsar: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("brsar: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause, so callers may errors.Is/errors.As
// through a Kind the same way cmd/wav2flac wraps causes with
// github.com/pkg/errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a new Error with no wrapped cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a new Error that wraps err.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
