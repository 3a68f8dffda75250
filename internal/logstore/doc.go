// Package logstore implements a durable, key-indexed, append-only record
// store over a rotating sequence of bounded segment files.
//
// # Layout
//
// A store owns a directory of numbered segment files ("000001.log", ...).
// Records are framed as uvarint(bodyLen) | body | crc32c(body). Appends go
// to the newest segment; once it exceeds MaxBytesPerSegment the store
// rotates to a new segment, and a store opened with AccessShared drops the
// oldest segments past MaxSegmentCount. AccessLocal stores are authoritative
// and never drop segments.
//
// # Visibility and durability
//
// Put stages a record in memory. Flush writes staged bytes to the active
// segment, fsyncs, and only then publishes the records' offsets into the
// in-memory index; a record is neither durable nor visible to Get before
// that. Once staged bytes exceed AutoSyncThreshold an implicit Flush runs.
//
// # Index and tie-break
//
// The index maps a record's primary-key byte range (the first KeyLen bytes
// of the body) to its location. The store is append-only: a later Put for
// the same key is an additional record, and the index keeps the one with the
// highest append sequence, so the most recently appended wins. Sequences are
// re-derived in append order when the index is rebuilt at Open, so the
// winner is stable across reopens.
//
// # Corruption tolerance
//
// A segment that is missing or unreadable at Open is treated as lost; the
// store still opens and other segments stay retrievable. A truncated tail is
// cut back to the last intact frame boundary before appends resume.
//
// # Error asymmetry
//
// Get surfaces a corrupt frame as an error; Scan skips it and keeps going.
// This is intentional: bulk scans favor availability of the surviving
// records, point lookups favor a correctness signal for the one record the
// caller asked about.
//
// # Concurrency
//
// One Store instance supports many concurrent readers and a single writer,
// serialized by an internal RWMutex. No method calls into another subsystem
// while holding the lock. Sharing one directory across processes without
// external coordination is unsupported.
package logstore
