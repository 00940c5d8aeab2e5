package binstream_test

import (
	"bytes"
	"testing"

	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
)

func TestReadFixedWidth(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)

	u8, err := r.ReadU8()
	if err != nil || u8 != 0x01 {
		t.Fatalf("ReadU8: got (%v, %v), want (0x01, nil)", u8, err)
	}
	u16, err := r.ReadU16()
	if err != nil || u16 != 0x0203 {
		t.Fatalf("ReadU16 (big): got (0x%X, %v), want (0x0203, nil)", u16, err)
	}
	u32, err := r.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: unexpected error %v", err)
	}
	want := uint32(0x04050607)
	if u32 != want {
		t.Fatalf("ReadU32 (big): got 0x%X, want 0x%X", u32, want)
	}
}

func TestEndianSwitch(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	r.SetEndian(binstream.LittleEndian)
	v, err := r.ReadU32()
	if err != nil {
		t.Fatal(err)
	}
	want := uint32(0xDDCCBBAA)
	if v != want {
		t.Fatalf("little-endian ReadU32: got 0x%X, want 0x%X", v, want)
	}
}

func TestWithOriginScoping(t *testing.T) {
	data := make([]byte, 0x20)
	data[0x10] = 0x7F
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)

	if r.Origin() != 0 {
		t.Fatalf("initial origin: got %d, want 0", r.Origin())
	}
	err := r.WithOrigin(0x10, func() error {
		if r.Origin() != 0x10 {
			t.Fatalf("scoped origin: got %d, want 0x10", r.Origin())
		}
		if err := r.SeekToOffset(0); err != nil {
			return err
		}
		b, err := r.ReadU8()
		if err != nil {
			return err
		}
		if b != 0x7F {
			t.Fatalf("SeekToOffset(0) inside scope: got 0x%X, want 0x7F", b)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Origin() != 0 {
		t.Fatalf("origin after WithOrigin returns: got %d, want restored to 0", r.Origin())
	}
}

func TestWithOriginRestoresOnError(t *testing.T) {
	r := binstream.New(bytes.NewReader(make([]byte, 4)), binstream.BigEndian)
	sentinel := errs.New(errs.Io, "boom")
	err := r.WithOrigin(4, func() error { return sentinel })
	if err != sentinel {
		t.Fatalf("got %v, want sentinel error", err)
	}
	if r.Origin() != 0 {
		t.Fatalf("origin not restored after error: got %d, want 0", r.Origin())
	}
}

func TestReadNullString(t *testing.T) {
	data := []byte("hello\x00world\x00")
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	s, err := r.ReadNullString()
	if err != nil || s != "hello" {
		t.Fatalf("got (%q, %v), want (\"hello\", nil)", s, err)
	}
	s2, err := r.ReadNullString()
	if err != nil || s2 != "world" {
		t.Fatalf("got (%q, %v), want (\"world\", nil)", s2, err)
	}
}

func TestUnexpectedEof(t *testing.T) {
	r := binstream.New(bytes.NewReader([]byte{0x01}), binstream.BigEndian)
	_, err := r.ReadU32()
	if err == nil {
		t.Fatal("expected error on short read, got nil")
	}
	e, ok := err.(*errs.Error)
	if !ok {
		t.Fatalf("expected *errs.Error, got %T", err)
	}
	if e.Kind != errs.UnexpectedEof {
		t.Fatalf("got Kind %v, want UnexpectedEof", e.Kind)
	}
}
