package block_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/kitlith/brsar/block"
	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
)

// minimalFraming builds the smallest well-formed container framing: a
// 0x20-byte header, three block pointers each 8 bytes, and three empty
// blocks (just their own 8-byte BlockHeader), matching S1.
func minimalFraming(t *testing.T, corruptInfoSize bool) []byte {
	t.Helper()
	var b []byte
	u32 := func(v uint32) { b = append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
	u16 := func(v uint16) { b = append(b, byte(v>>8), byte(v)) }

	b = append(b, []byte("RSAR")...)
	u16(0xFEFF) // endian mark, big
	u16(0x0104) // version
	fileSizeIdx := len(b)
	u32(0) // file_size, patched below
	u16(0x20)
	u16(3)
	for len(b) < 0x20 {
		b = append(b, 0)
	}

	// block pointers at 0x20..0x38
	symbOffset, symbLen := uint32(0x40), uint32(8)
	infoOffset, infoLen := uint32(0x60), uint32(8)
	fileOffset, fileLen := uint32(0x80), uint32(8)
	u32(symbOffset)
	u32(symbLen)
	u32(infoOffset)
	u32(infoLen)
	u32(fileOffset)
	u32(fileLen)
	for len(b) < 0x40 {
		b = append(b, 0)
	}

	b = append(b, []byte("SYMB")...)
	u32(symbLen)
	for len(b) < 0x60 {
		b = append(b, 0)
	}

	b = append(b, []byte("INFO")...)
	if corruptInfoSize {
		u32(0x200)
	} else {
		u32(infoLen)
	}
	for len(b) < 0x80 {
		b = append(b, 0)
	}

	b = append(b, []byte("FILE")...)
	u32(fileLen)
	for len(b) < 0x88 {
		b = append(b, 0)
	}

	binary.BigEndian.PutUint32(b[fileSizeIdx:], uint32(len(b)))
	return b
}

func TestReadFramingMinimal(t *testing.T) {
	data := minimalFraming(t, false)
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	f, err := block.ReadFraming(r)
	if err != nil {
		t.Fatal(err)
	}
	if f.Header.BlockCount != 3 {
		t.Fatalf("block_count = %d, want 3", f.Header.BlockCount)
	}
	if f.SymbBody != 0x48 || f.InfoBody != 0x68 || f.FileBody != 0x88 {
		t.Fatalf("body origins = (%#x, %#x, %#x), want (0x48, 0x68, 0x88)", f.SymbBody, f.InfoBody, f.FileBody)
	}
}

// TestBadMagic is scenario S5: a bad file magic aborts immediately.
func TestBadMagic(t *testing.T) {
	data := minimalFraming(t, false)
	copy(data[0:4], "XXXX")
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	_, err := block.ReadFraming(r)
	if err == nil {
		t.Fatal("expected BadMagic error")
	}
	e, ok := err.(*errs.Error)
	if !ok || e.Kind != errs.BadMagic {
		t.Fatalf("got %v, want BadMagic", err)
	}
}

// TestBlockLengthMismatch is scenario S6: BlockPtr.len disagrees with the
// block's own declared size.
func TestBlockLengthMismatch(t *testing.T) {
	data := minimalFraming(t, true)
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	_, err := block.ReadFraming(r)
	if err == nil {
		t.Fatal("expected StructuralMismatch error")
	}
	e, ok := err.(*errs.Error)
	if !ok || e.Kind != errs.StructuralMismatch {
		t.Fatalf("got %v, want StructuralMismatch", err)
	}
}

func TestBadEndianMark(t *testing.T) {
	data := minimalFraming(t, false)
	data[4], data[5] = 0x12, 0x34
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	_, err := block.ReadFraming(r)
	if err == nil {
		t.Fatal("expected BadEndianMark error")
	}
	e, ok := err.(*errs.Error)
	if !ok || e.Kind != errs.BadEndianMark {
		t.Fatalf("got %v, want BadEndianMark", err)
	}
}
