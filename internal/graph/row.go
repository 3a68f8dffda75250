package graph

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/kiprasmel/sapling/pkg/changeset"
)

// Row is one changeset's entry in the graph index.
type Row struct {
	Parents    []changeset.ID
	Generation changeset.Generation
}

// rowVersion is the only on-disk row layout this reader understands.
const rowVersion = 0

// ErrTruncatedRow reports a row value that ends before its declared fields.
var ErrTruncatedRow = errors.New("graph: truncated row")

// Row value layout:
//
//	version      1 byte
//	parent count uvarint
//	parents      32 bytes each
//	generation   uvarint
func encodeRow(r Row) []byte {
	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(r.Parents)*changeset.IDLen+binary.MaxVarintLen64)
	out = append(out, rowVersion)
	out = binary.AppendUvarint(out, uint64(len(r.Parents)))
	for _, p := range r.Parents {
		out = append(out, p[:]...)
	}
	return binary.AppendUvarint(out, uint64(r.Generation))
}

func decodeRow(b []byte) (Row, error) {
	var r Row
	if len(b) == 0 {
		return r, ErrTruncatedRow
	}
	if v := b[0]; v != rowVersion {
		return r, fmt.Errorf("graph: unsupported row version %d", v)
	}
	b = b[1:]

	count, n := binary.Uvarint(b)
	if n <= 0 {
		return r, ErrTruncatedRow
	}
	b = b[n:]
	if count > uint64(len(b))/changeset.IDLen {
		return r, ErrTruncatedRow
	}
	if count > 0 {
		r.Parents = make([]changeset.ID, count)
		for i := range r.Parents {
			copy(r.Parents[i][:], b[:changeset.IDLen])
			b = b[changeset.IDLen:]
		}
	}

	gen, n := binary.Uvarint(b)
	if n <= 0 {
		return r, ErrTruncatedRow
	}
	if len(b) != n {
		return r, fmt.Errorf("graph: %d trailing bytes after row", len(b)-n)
	}
	r.Generation = changeset.Generation(gen)
	return r, nil
}

func rowsEqual(a, b Row) bool {
	if a.Generation != b.Generation || len(a.Parents) != len(b.Parents) {
		return false
	}
	for i := range a.Parents {
		if a.Parents[i] != b.Parents[i] {
			return false
		}
	}
	return true
}
