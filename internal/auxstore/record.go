package auxstore

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// NodeIDLen is the width of the node id keying every record.
const NodeIDLen = 20

// NodeID identifies the file revision a metadata entry describes.
type NodeID [NodeIDLen]byte

func (n NodeID) String() string { return hex.EncodeToString(n[:]) }

// NodeIDFromBytes copies b into a NodeID.
func NodeIDFromBytes(b []byte) (NodeID, error) {
	var n NodeID
	if len(b) != NodeIDLen {
		return n, fmt.Errorf("auxstore: node id must be %d bytes, got %d", NodeIDLen, len(b))
	}
	copy(n[:], b)
	return n, nil
}

// Entry is the derived metadata stored per node: the three content digests
// plus the content size.
type Entry struct {
	ContentID [32]byte
	SHA1      [20]byte
	Blake3    [32]byte
	TotalSize uint64
}

// recordVersion is the only on-disk layout this reader understands.
const recordVersion = 0

// ErrTruncatedRecord reports a record that ends before its fixed fields or
// its size quantity are complete.
var ErrTruncatedRecord = errors.New("auxstore: truncated record")

// VersionError reports a record carrying a format version this reader does
// not understand.
type VersionError struct {
	Version byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("auxstore: unsupported record version %d", e.Version)
}

// Record layout:
//
//	node id    20 bytes
//	version     1 byte
//	content id 32 bytes
//	sha1       20 bytes
//	blake3     32 bytes
//	total size vlq, 1-9 bytes
const fixedRecordLen = NodeIDLen + 1 + 32 + 20 + 32

// maxVLQLen caps the size quantity at nine 7-bit groups, so the largest
// representable value is 1<<63 - 1.
const maxVLQLen = 9

// MaxTotalSize is the largest content size a record can carry.
const MaxTotalSize = 1<<63 - 1

func appendVLQ(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// readVLQ decodes a variable-length quantity from the front of b and returns
// the value and the number of bytes consumed.
func readVLQ(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(b); i++ {
		if i >= maxVLQLen {
			return 0, 0, fmt.Errorf("auxstore: size quantity exceeds %d bytes", maxVLQLen)
		}
		c := b[i]
		v |= uint64(c&0x7f) << (7 * uint(i))
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncatedRecord
}

// serializeRecord encodes node and e into the on-disk record layout. It
// cannot fail: every field is fixed width and TotalSize is validated at Put.
func serializeRecord(node NodeID, e Entry) []byte {
	out := make([]byte, 0, fixedRecordLen+maxVLQLen)
	out = append(out, node[:]...)
	out = append(out, recordVersion)
	out = append(out, e.ContentID[:]...)
	out = append(out, e.SHA1[:]...)
	out = append(out, e.Blake3[:]...)
	return appendVLQ(out, e.TotalSize)
}

// deserializeRecord decodes a record produced by serializeRecord. It rejects
// records that are too short for the fixed fields, carry an unknown version
// byte, or end inside the size quantity.
func deserializeRecord(rec []byte) (NodeID, Entry, error) {
	var node NodeID
	var e Entry
	if len(rec) < fixedRecordLen+1 {
		return node, e, ErrTruncatedRecord
	}
	copy(node[:], rec[:NodeIDLen])
	if v := rec[NodeIDLen]; v != recordVersion {
		return node, e, &VersionError{Version: v}
	}
	off := NodeIDLen + 1
	copy(e.ContentID[:], rec[off:off+32])
	off += 32
	copy(e.SHA1[:], rec[off:off+20])
	off += 20
	copy(e.Blake3[:], rec[off:off+32])
	off += 32
	size, n, err := readVLQ(rec[off:])
	if err != nil {
		return node, e, err
	}
	if off+n != len(rec) {
		return node, e, fmt.Errorf("auxstore: %d trailing bytes after record", len(rec)-off-n)
	}
	e.TotalSize = size
	return node, e, nil
}
