package changeset

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// IDLen is the byte width of a changeset id.
const IDLen = 32

// ID is a 32-byte content hash identifying an immutable changeset.
type ID [IDLen]byte

// ComputeID derives the id for a canonical changeset blob.
func ComputeID(blob []byte) ID { return ID(blake3.Sum256(blob)) }

// IDFromBytes converts a raw 32-byte slice to an ID.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDLen {
		return id, fmt.Errorf("changeset: id must be %d bytes, got %d", IDLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// IDFromHex parses a 64-character hex string.
func IDFromHex(s string) (ID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("changeset: bad id hex: %w", err)
	}
	return IDFromBytes(b)
}

// Bytes returns the raw 32-byte representation.
func (id ID) Bytes() []byte { b := make([]byte, IDLen); copy(b, id[:]); return b }

// String returns the lowercase hex form.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 12 hex characters, for log output.
func (id ID) Short() string { return id.String()[:12] }

// Compare returns -1, 0, 1 based on lexical comparison.
func (id ID) Compare(other ID) int {
	for i := 0; i < IDLen; i++ {
		if id[i] < other[i] {
			return -1
		}
		if id[i] > other[i] {
			return 1
		}
	}
	return 0
}

// RepositoryID scopes every storage operation. All graph rows and lookups
// are keyed by (RepositoryID, ID).
type RepositoryID uint32

// String renders the conventional zero-padded form, e.g. "repo0001".
func (r RepositoryID) String() string { return fmt.Sprintf("repo%04d", uint32(r)) }

// Generation is the length of the longest ancestor chain to a root. Roots
// have generation 0.
type Generation uint64
