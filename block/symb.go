package block

import (
	"github.com/kitlith/brsar/internal/binstream"
	"github.com/kitlith/brsar/patricia"
	"github.com/kitlith/brsar/ref"
)

// Symb is the decoded SYMB block: the string table every name
// lookup resolves against, plus the four Patricia tries (sound, player,
// group, bank).
//
// Unlike INFO's fields, SYMB's pointers are plain relative pointers with no
// tagged-reference envelope (original_source/src/brsar/block/symbol.rs uses
// r32<T>, not Reference<T>), so this schema reads ref.Rel directly.
type Symb struct {
	Header     BlockHeader
	StringTable ref.Table[ref.Rel[string]]
	SoundTree  patricia.Tree
	PlayerTree patricia.Tree
	GroupTree  patricia.Tree
	BankTree   patricia.Tree
}

func decodeNullString(r *binstream.Reader) (string, error) {
	return r.ReadNullString()
}

func decodePatriciaTree(r *binstream.Reader) (patricia.Tree, error) {
	return patricia.Read(r)
}

func decodeStringRef(r *binstream.Reader) (ref.Rel[string], error) {
	return ref.ReadRel(r, decodeNullString)
}

func decodeStringTable(r *binstream.Reader) (ref.Table[ref.Rel[string]], error) {
	return ref.ReadTable(r, decodeStringRef)
}

// ReadSymb decodes the SYMB block body, whose origin is the byte immediately
// following its 8-byte BlockHeader.
func ReadSymb(r *binstream.Reader, bodyOrigin int64, hdr BlockHeader) (Symb, error) {
	var s Symb
	s.Header = hdr
	err := r.WithOrigin(bodyOrigin, func() error {
		if err := r.SeekAbsolute(bodyOrigin); err != nil {
			return err
		}
		stringTable, err := ref.ReadRel(r, decodeStringTable)
		if err != nil {
			return err
		}
		s.StringTable = stringTable.Value

		soundTree, err := ref.ReadRel(r, decodePatriciaTree)
		if err != nil {
			return err
		}
		s.SoundTree = soundTree.Value

		playerTree, err := ref.ReadRel(r, decodePatriciaTree)
		if err != nil {
			return err
		}
		s.PlayerTree = playerTree.Value

		groupTree, err := ref.ReadRel(r, decodePatriciaTree)
		if err != nil {
			return err
		}
		s.GroupTree = groupTree.Value

		bankTree, err := ref.ReadRel(r, decodePatriciaTree)
		if err != nil {
			return err
		}
		s.BankTree = bankTree.Value

		return nil
	})
	if err != nil {
		return Symb{}, err
	}
	return s, nil
}

// String returns the string table entry at index i.
func (s Symb) String(i int) (string, error) {
	entry, err := s.StringTable.At(i)
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}
