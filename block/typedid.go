package block

import "github.com/kitlith/brsar/internal/binstream"

// TypedId is a 1-byte type tag followed by a big-endian-packed 3-byte
// identifier.
type TypedId struct {
	Type uint8
	ID   uint32 // 24-bit value, packed big-endian regardless of file endianness.
}

func readTypedId(r *binstream.Reader) (TypedId, error) {
	ty, err := r.ReadU8()
	if err != nil {
		return TypedId{}, err
	}
	raw, err := r.ReadBytes(3)
	if err != nil {
		return TypedId{}, err
	}
	id := uint32(raw[0])<<16 | uint32(raw[1])<<8 | uint32(raw[2])
	return TypedId{Type: ty, ID: id}, nil
}
