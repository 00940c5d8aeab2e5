package block_test

import (
	"testing"

	"github.com/kitlith/brsar/block"
)

func TestVerifySpan(t *testing.T) {
	data := []byte("boom")
	want := block.CRC16(data)
	if !block.VerifySpan(data, want) {
		t.Fatal("VerifySpan: want true for matching checksum")
	}
	if block.VerifySpan(data, want^0xFFFF) {
		t.Fatal("VerifySpan: want false for mismatched checksum")
	}
}

func TestCRC8Deterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	if block.CRC8(data) != block.CRC8(data) {
		t.Fatal("CRC8 is not deterministic")
	}
}
