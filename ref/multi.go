package ref

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/kitlith/brsar/internal/binstream"
)

// TaggedDecoder decodes a reference's target once the variant-selecting tag
// is known. For SoundDetails, that tag comes from the parent
// SoundInfo.sound_type field, not from the envelope -- so the tag is an
// explicit parameter here rather than threaded through a side channel.
type TaggedDecoder[T any] func(r *binstream.Reader, tag uint8) (T, error)

// Multi is a multi-type reference: an envelope followed by an absolute or
// relative pointer, whose target's shape is picked by a tag supplied by the
// caller rather than by the envelope's own type_tag.
type Multi[T any] struct {
	Env   Envelope
	Value T
}

// ReadMulti reads the envelope, logs a diagnostic if the envelope's own
// type_tag disagrees with parentTag (they are allowed to, per the source's
// looseness, but it is worth a diagnostic), then resolves the pointer with
// decode(parentTag).
func ReadMulti[T any](r *binstream.Reader, parentTag uint8, decode TaggedDecoder[T]) (Multi[T], error) {
	env, err := ReadEnvelope(r)
	if err != nil {
		return Multi[T]{}, err
	}
	if env.TypeTag != parentTag {
		dbg.Println("ref.ReadMulti: envelope type_tag", env.TypeTag, "disagrees with parent tag", parentTag)
	}
	wrapped := func(r *binstream.Reader) (T, error) {
		return decode(r, parentTag)
	}
	if env.IsRelative {
		rel, err := ReadRel(r, wrapped)
		if err != nil {
			return Multi[T]{}, err
		}
		return Multi[T]{Env: env, Value: rel.Value}, nil
	}
	abs, _, err := ReadAbs(r, false, wrapped)
	if err != nil {
		return Multi[T]{}, err
	}
	return Multi[T]{Env: env, Value: abs.Value}, nil
}
