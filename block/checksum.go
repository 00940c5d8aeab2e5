package block

import (
	"github.com/mewkiz/pkg/hashutil/crc16"
	"github.com/mewkiz/pkg/hashutil/crc8"
)

// CRC8 returns the CRC-8/ATM checksum of data. BRSAR payload spans carry no
// built-in checksum; this is an opt-in integrity check for callers that
// record one out of band (for instance, to confirm a re-extraction is
// byte-identical to a prior one).
func CRC8(data []byte) uint8 {
	h := crc8.NewATM()
	h.Write(data)
	return h.Sum8()
}

// CRC16 returns the CRC-16/IBM checksum of data, a stronger alternative to
// CRC8 for larger spans such as whole sequence/stream/wave payloads.
func CRC16(data []byte) uint16 {
	return crc16.ChecksumIBM(data)
}

// VerifySpan reports whether data's CRC-16 matches want.
func VerifySpan(data []byte, want uint16) bool {
	return CRC16(data) == want
}
