// Package brsar provides access to BRSAR (Nintendo Revolution Sound ARchive)
// files: Nintendo Wii-era containers bundling sound/bank/player/group
// metadata, a Patricia-trie name index, and raw sequence/stream/wave
// payloads.
package brsar

import (
	"io"
	"os"

	"github.com/kitlith/brsar/block"
	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
)

// Archive is a fully decoded BRSAR file: the container framing plus the
// decoded SYMB and INFO blocks and the FILE block's span. It is
// immutable once returned from Open/NewArchive and safe for concurrent
// read-only use, including Symbol lookups.
//
// TODO: a writer counterpart (Archive -> serialized bytes) is not part of
// this package; nothing here assumes one exists or will be added.
type Archive struct {
	Header block.FileHeader
	Symbol block.Symb
	Info   block.Info
	File   block.File

	// src is retained so ReadPayload can perform positional reads. When
	// Open opened the underlying file itself, src also implements io.Closer
	// and Close closes it; when NewArchive was handed a reader by the
	// caller, Close is a no-op and the caller keeps ownership.
	src       io.ReaderAt
	srcCloser io.Closer
}

// Open opens the named file and returns its decoded Archive. The file is
// kept open for later ReadPayload calls; the caller must call Close when
// done with the Archive.
func Open(filePath string) (*Archive, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "brsar.Open: open %s", filePath)
	}
	a, err := NewArchive(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.srcCloser = f
	return a, nil
}

// Close releases the underlying file if Open opened it. Archives created
// with NewArchive leave the caller's reader untouched.
func (a *Archive) Close() error {
	if a.srcCloser == nil {
		return nil
	}
	return a.srcCloser.Close()
}

// NewArchive decodes a BRSAR from r. r is read sequentially during decoding.
// If r also implements io.ReaderAt (as *os.File and *bytes.Reader do), it is
// retained for later ReadPayload calls; otherwise ReadPayload returns an Io
// error. NewArchive never closes r.
func NewArchive(r io.ReadSeeker) (*Archive, error) {
	br := binstream.New(r, binstream.BigEndian)

	framing, err := block.ReadFraming(br)
	if err != nil {
		return nil, err
	}

	symb, err := block.ReadSymb(br, framing.SymbBody, framing.SymbHeader)
	if err != nil {
		return nil, err
	}

	info, err := block.ReadInfo(br, framing.InfoBody, framing.InfoHeader)
	if err != nil {
		return nil, err
	}

	fileBlock := block.ReadFile(framing.FileBody, framing.FileHeader)

	a := &Archive{
		Header: framing.Header,
		Symbol: symb,
		Info:   info,
		File:   fileBlock,
	}
	if ra, ok := r.(io.ReaderAt); ok {
		a.src = ra
	}
	return a, nil
}

// Extension is the filename suffix a resolved sound's payload is
// conventionally written with, keyed by its sound_type.
func Extension(kind block.DetailsKind) string {
	switch kind {
	case block.DetailsSequence:
		return "brseq"
	case block.DetailsStream:
		return "brstm"
	case block.DetailsWave:
		return "brwav"
	default:
		return "bin"
	}
}

// ResolvedSound is the result of resolving a sound_table index to a name, a
// conventional file extension, and the file-coordinate byte range its
// payload occupies.
type ResolvedSound struct {
	Name       string
	Extension  string
	RangeStart int64
	RangeLen   int64
}

// ResolveSound implements the seven-step lookup: sound info -> name via the
// string table -> file info -> first FilePosition -> group and entry ->
// byte range in file coordinates. It returns a NoPayload error if the
// sound's file has no recorded FilePosition.
func (a *Archive) ResolveSound(soundIndex int) (ResolvedSound, error) {
	soundRef, err := a.Info.SoundTable.At(soundIndex)
	if err != nil {
		return ResolvedSound{}, err
	}
	sound := soundRef.Value

	name, err := a.Symbol.String(int(sound.StringID))
	if err != nil {
		return ResolvedSound{}, err
	}

	fileRef, err := a.Info.FileTable.At(int(sound.FileID))
	if err != nil {
		return ResolvedSound{}, err
	}
	file := fileRef.Value

	positions := file.Positions()
	if len(positions) == 0 {
		return ResolvedSound{}, errs.New(errs.NoPayload, "sound %d: file %d has no FilePosition", soundIndex, sound.FileID)
	}
	pos := positions[0]

	groupRef, err := a.Info.GroupTable.At(int(pos.GroupIndex))
	if err != nil {
		return ResolvedSound{}, err
	}
	group := groupRef.Value

	entry, err := group.Entry(int(pos.ItemIndex))
	if err != nil {
		return ResolvedSound{}, err
	}

	start, length := group.FileRange(entry)
	return ResolvedSound{
		Name:       name,
		Extension:  Extension(sound.Details.Value.Kind),
		RangeStart: start,
		RangeLen:   length,
	}, nil
}

// ReadPayload reads exactly the bytes of rs's byte range from src.
func (a *Archive) ReadPayload(rs ResolvedSound) ([]byte, error) {
	if a.src == nil {
		return nil, errs.New(errs.Io, "brsar.ReadPayload: archive was decoded without a retained io.ReaderAt source")
	}
	buf := make([]byte, rs.RangeLen)
	if _, err := a.src.ReadAt(buf, rs.RangeStart); err != nil {
		return nil, errs.Wrap(errs.Io, err, "brsar.ReadPayload: read_at 0x%X len 0x%X", rs.RangeStart, rs.RangeLen)
	}
	return buf, nil
}

// SoundCount returns the number of entries in the sound table.
func (a *Archive) SoundCount() int {
	return a.Info.SoundTable.Len()
}
