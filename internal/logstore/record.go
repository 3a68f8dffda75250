package logstore

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Frame encoding: varint bodyLen | body | crc32c(body)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ErrCorruptRecord reports a frame whose checksum does not match its body.
var ErrCorruptRecord = errors.New("logstore: corrupt record")

const frameCRCLen = 4

func encodeFrame(body []byte) []byte {
	out := make([]byte, 0, binary.MaxVarintLen32+len(body)+frameCRCLen)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(body)))
	out = append(out, tmp[:n]...)
	out = append(out, body...)

	crc := crc32.Update(0, castagnoli, body)
	var crcb [frameCRCLen]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out
}

// decodeFrame reads one frame from the front of b. It returns the body, the
// total frame length consumed, and an error. A frame that does not fit in b
// returns (nil, 0, nil): the caller treats it as a truncated tail. A frame
// whose checksum fails returns its length alongside ErrCorruptRecord so a
// scan can step over it.
func decodeFrame(b []byte) ([]byte, int, error) {
	bodyLen, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, 0, nil
	}
	frameLen := n + int(bodyLen) + frameCRCLen
	if int(bodyLen) < 0 || frameLen > len(b) {
		return nil, 0, nil
	}
	body := b[n : n+int(bodyLen)]
	expect := binary.BigEndian.Uint32(b[n+int(bodyLen) : frameLen])
	if crc32.Update(0, castagnoli, body) != expect {
		return nil, frameLen, ErrCorruptRecord
	}
	return append([]byte(nil), body...), frameLen, nil
}
