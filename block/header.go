// Package block implements the BRSAR container framing and block schemas:
// the file header, the three block pointers, and the SYMB/INFO/FILE bodies.
//
// Grounded on meta.go's Block/BlockHeader/NewBlock shape: a header decode
// followed by a type switch into per-kind body constructors, with errors
// built through the errs package's Kind-tagged constructors.
package block

import (
	"github.com/mewkiz/pkg/dbg"

	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
)

// Magic is present at the start of the file.
const Magic = "RSAR"

// Known block magics, in BlockPtr order.
const (
	MagicSymb = "SYMB"
	MagicInfo = "INFO"
	MagicFile = "FILE"
)

// knownVersion is the only version confirmed as supported; others are
// rejected rather than guessed at.
const knownVersion = 0x0104

// blockAlignment is the byte boundary block bodies are aligned to.
const blockAlignment = 0x20

// FileHeader is the fixed-layout header at the start of every BRSAR.
type FileHeader struct {
	Magic      [4]byte
	Endian     binstream.Endian
	Version    uint16
	FileSize    uint32
	HeaderSize  uint16
	BlockCount  uint16
}

// BlockPtr locates one of the three top-level blocks.
type BlockPtr struct {
	Offset uint32
	Len    uint32
}

// BlockHeader is the 8-byte header at the start of every block body.
type BlockHeader struct {
	Magic [4]byte
	Size  uint32
}

// readMagic reads and verifies a 4-byte magic.
func readMagic(r *binstream.Reader, want string) ([4]byte, error) {
	var got [4]byte
	raw, err := r.ReadBytes(4)
	if err != nil {
		return got, err
	}
	copy(got[:], raw)
	if string(got[:]) != want {
		return got, errs.New(errs.BadMagic, "expected %q, got %q", want, string(got[:]))
	}
	return got, nil
}

// readFileHeader decodes and validates the FileHeader.
func readFileHeader(r *binstream.Reader) (FileHeader, error) {
	var h FileHeader
	magic, err := readMagic(r, Magic)
	if err != nil {
		return h, err
	}
	h.Magic = magic

	mark, err := r.ReadU16Big()
	if err != nil {
		return h, err
	}
	switch mark {
	case 0xFEFF:
		h.Endian = binstream.BigEndian
	case 0xFFFE:
		h.Endian = binstream.LittleEndian
	default:
		return h, errs.New(errs.BadEndianMark, "0x%04X", mark)
	}
	r.SetEndian(h.Endian)

	h.Version, err = r.ReadU16()
	if err != nil {
		return h, err
	}
	if h.Version != knownVersion {
		return h, errs.New(errs.UnsupportedVersion, "0x%04X", h.Version)
	}

	h.FileSize, err = r.ReadU32()
	if err != nil {
		return h, err
	}
	h.HeaderSize, err = r.ReadU16()
	if err != nil {
		return h, err
	}
	h.BlockCount, err = r.ReadU16()
	if err != nil {
		return h, err
	}
	if h.BlockCount != 3 {
		return h, errs.New(errs.StructuralMismatch, "block_count: expected 3, got %d", h.BlockCount)
	}
	return h, nil
}

func readBlockPtr(r *binstream.Reader) (BlockPtr, error) {
	off, err := r.ReadU32()
	if err != nil {
		return BlockPtr{}, err
	}
	length, err := r.ReadU32()
	if err != nil {
		return BlockPtr{}, err
	}
	return BlockPtr{Offset: off, Len: length}, nil
}

func readBlockHeader(r *binstream.Reader, want string) (BlockHeader, error) {
	magic, err := readMagic(r, want)
	if err != nil {
		return BlockHeader{}, err
	}
	size, err := r.ReadU32()
	if err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{Magic: magic, Size: size}, nil
}

// verifyBlockPtr checks one block's invariants: offset alignment, offset+len
// within the file, and an inner size matching the outer len.
func verifyBlockPtr(r *binstream.Reader, name string, ptr BlockPtr, fileSize uint32) (BlockHeader, error) {
	if ptr.Offset%blockAlignment != 0 {
		return BlockHeader{}, errs.New(errs.StructuralMismatch, "%s block offset 0x%X not aligned to 0x%X", name, ptr.Offset, blockAlignment)
	}
	if uint64(ptr.Offset)+uint64(ptr.Len) > uint64(fileSize) {
		return BlockHeader{}, errs.New(errs.StructuralMismatch, "%s block [0x%X, +0x%X) exceeds file_size 0x%X", name, ptr.Offset, ptr.Len, fileSize)
	}
	if err := r.SeekAbsolute(int64(ptr.Offset)); err != nil {
		return BlockHeader{}, err
	}
	hdr, err := readBlockHeader(r, name)
	if err != nil {
		return BlockHeader{}, err
	}
	if hdr.Size != ptr.Len {
		return BlockHeader{}, errs.New(errs.StructuralMismatch, "%s block declares size 0x%X, BlockPtr.len is 0x%X", name, hdr.Size, ptr.Len)
	}
	return hdr, nil
}

// Framing is the decoded file header plus the three verified block headers
// and their body origins (offset+8, immediately after each 8-byte block
// header).
type Framing struct {
	Header     FileHeader
	SymbPtr    BlockPtr
	InfoPtr    BlockPtr
	FilePtr    BlockPtr
	SymbHeader BlockHeader
	InfoHeader BlockHeader
	FileHeader BlockHeader
	SymbBody   int64
	InfoBody   int64
	FileBody   int64
}

// ReadFraming decodes the container framing: the file header and the three
// block pointers, verifying every invariant along the way.
func ReadFraming(r *binstream.Reader) (Framing, error) {
	var f Framing
	hdr, err := readFileHeader(r)
	if err != nil {
		return f, err
	}
	f.Header = hdr

	// header_size marks where the fixed header fields end and the block
	// pointer array begins: the file header is 0x20 bytes, padded to 0x20,
	// then the three BlockPtr entries. The fields read by readFileHeader
	// only span the first 16 bytes, so this seek skips the trailing padding.
	if err := r.SeekAbsolute(int64(hdr.HeaderSize)); err != nil {
		return f, err
	}

	f.SymbPtr, err = readBlockPtr(r)
	if err != nil {
		return f, err
	}
	f.InfoPtr, err = readBlockPtr(r)
	if err != nil {
		return f, err
	}
	f.FilePtr, err = readBlockPtr(r)
	if err != nil {
		return f, err
	}

	f.SymbHeader, err = verifyBlockPtr(r, MagicSymb, f.SymbPtr, hdr.FileSize)
	if err != nil {
		return f, err
	}
	f.SymbBody = int64(f.SymbPtr.Offset) + 8

	f.InfoHeader, err = verifyBlockPtr(r, MagicInfo, f.InfoPtr, hdr.FileSize)
	if err != nil {
		return f, err
	}
	f.InfoBody = int64(f.InfoPtr.Offset) + 8

	f.FileHeader, err = verifyBlockPtr(r, MagicFile, f.FilePtr, hdr.FileSize)
	if err != nil {
		return f, err
	}
	f.FileBody = int64(f.FilePtr.Offset) + 8

	dbg.Println("block.ReadFraming: symb body @", f.SymbBody, "info body @", f.InfoBody, "file body @", f.FileBody)
	return f, nil
}
