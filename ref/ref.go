// Package ref implements the pointer combinators, length-prefixed table
// reader, and tagged-reference envelope that every BRSAR block schema is
// built from.
//
// Grounded on original_source/src/common.rs's AbsPtr/RelPtr32/MultiReference/
// Single/Table family: the same four shapes (absolute pointer, relative
// pointer, a reference that picks between them from an envelope, and a
// length-prefixed vector) reappear here as Go generics, decoded eagerly
// against a *binstream.Reader instead of lazily against a binread
// ReadOptions.
package ref

import (
	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
	"github.com/mewkiz/pkg/dbg"
)

// Decoder is implemented by every type that can be read from a
// *binstream.Reader with the origin and endianness currently in effect.
type Decoder[T any] func(r *binstream.Reader) (T, error)

// Abs is an absolute pointer: its 32-bit value is an offset from the file
// origin, byte 0, regardless of the origin in effect when the pointer word
// itself was read.
//
// Resolution is eager: ReadAbs seeks to the pointer's raw offset with origin
// reset to 0, decodes T, then restores the reader's position so sibling
// fields continue from the right spot.
type Abs[T any] struct {
	Offset uint32
	Value  T
}

// ReadAbs reads an absolute pointer's raw offset and immediately resolves
// it. offset 0 is rejected unless optional is true, in which case a zero
// offset yields the zero Abs with Offset 0 and ok=false.
func ReadAbs[T any](r *binstream.Reader, optional bool, decode Decoder[T]) (Abs[T], bool, error) {
	off, err := r.ReadU32()
	if err != nil {
		return Abs[T]{}, false, err
	}
	if off == 0 {
		if optional {
			return Abs[T]{}, false, nil
		}
		return Abs[T]{}, false, errs.New(errs.NullAbsoluteReference, "absolute reference is null")
	}
	pos, err := r.Position()
	if err != nil {
		return Abs[T]{}, false, err
	}
	var out Abs[T]
	out.Offset = off
	err = r.WithOrigin(0, func() error {
		if err := r.SeekToOffset(off); err != nil {
			return err
		}
		v, err := decode(r)
		if err != nil {
			return err
		}
		out.Value = v
		return nil
	})
	if err != nil {
		return Abs[T]{}, false, err
	}
	if err := r.SeekAbsolute(pos); err != nil {
		return Abs[T]{}, false, err
	}
	return out, true, nil
}

// Rel is a relative pointer: its 32-bit value is an offset from the origin
// in effect when it is resolved (typically a block body's start, or an
// explicit base such as GroupInfo.file_base/archive_base).
type Rel[T any] struct {
	Offset uint32
	Value  T
}

// ReadRel reads a relative pointer's raw offset and immediately resolves it
// against the reader's current origin, leaving that origin unchanged.
func ReadRel[T any](r *binstream.Reader, decode Decoder[T]) (Rel[T], error) {
	off, err := r.ReadU32()
	if err != nil {
		return Rel[T]{}, err
	}
	pos, err := r.Position()
	if err != nil {
		return Rel[T]{}, err
	}
	if err := r.SeekToOffset(off); err != nil {
		return Rel[T]{}, err
	}
	v, err := decode(r)
	if err != nil {
		return Rel[T]{}, err
	}
	if err := r.SeekAbsolute(pos); err != nil {
		return Rel[T]{}, err
	}
	return Rel[T]{Offset: off, Value: v}, nil
}

// Envelope is the 4-byte tagged-reference header that precedes every
// reference's pointer word.
type Envelope struct {
	IsRelative bool
	TypeTag    uint8
}

// ReadEnvelope decodes the 4-byte envelope: is_relative (u8), type_tag (u8),
// padding (u16, ignored).
func ReadEnvelope(r *binstream.Reader) (Envelope, error) {
	isRel, err := r.ReadU8()
	if err != nil {
		return Envelope{}, err
	}
	tag, err := r.ReadU8()
	if err != nil {
		return Envelope{}, err
	}
	if _, err := r.ReadU16(); err != nil { // padding
		return Envelope{}, err
	}
	return Envelope{IsRelative: isRel != 0, TypeTag: tag}, nil
}

// Single is a single-type reference: an envelope whose type_tag is expected
// to be 0 (some sites encode 1; accepted liberally, with a diagnostic).
type Single[T any] struct {
	Env   Envelope
	Value T
	// Null reports whether this reference was an optional absolute null.
	Null bool
}

// ReadSingle reads a single-type reference. optional controls whether a null
// absolute pointer is tolerated (external_file, sound_info_3d, and similar
// sites tolerate null; everything else errors).
func ReadSingle[T any](r *binstream.Reader, optional bool, decode Decoder[T]) (Single[T], error) {
	env, err := ReadEnvelope(r)
	if err != nil {
		return Single[T]{}, err
	}
	if env.TypeTag != 0 {
		dbg.Println("ref.ReadSingle: non-zero type_tag on single-type reference:", env.TypeTag)
	}
	if env.IsRelative {
		rel, err := ReadRel(r, decode)
		if err != nil {
			return Single[T]{}, err
		}
		return Single[T]{Env: env, Value: rel.Value}, nil
	}
	abs, ok, err := ReadAbs(r, optional, decode)
	if err != nil {
		return Single[T]{}, err
	}
	if !ok {
		return Single[T]{Env: env, Null: true}, nil
	}
	return Single[T]{Env: env, Value: abs.Value}, nil
}

// Table is a length-prefixed homogeneous vector: a u32 count followed by
// that many elements, each decoded with the enclosing context's endian and
// origin.
type Table[T any] struct {
	Items []T
}

// ReadTable reads a Table[T].
func ReadTable[T any](r *binstream.Reader, decode Decoder[T]) (Table[T], error) {
	count, err := r.ReadU32()
	if err != nil {
		return Table[T]{}, err
	}
	items := make([]T, count)
	for i := range items {
		v, err := decode(r)
		if err != nil {
			return Table[T]{}, errs.Wrap(errs.Io, err, "ref.ReadTable: element %d/%d", i, count)
		}
		items[i] = v
	}
	return Table[T]{Items: items}, nil
}

// At returns the i'th element of the table, or an IndexOutOfBounds error.
func (t Table[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(t.Items) {
		return zero, errs.New(errs.IndexOutOfBounds, "table index %d out of %d", i, len(t.Items))
	}
	return t.Items[i], nil
}

// Len returns the number of elements in the table.
func (t Table[T]) Len() int {
	return len(t.Items)
}
