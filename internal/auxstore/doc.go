// Package auxstore persists derived file metadata (content hashes and size)
// keyed by the 20-byte node id of the file revision, so that repeated hash
// computations over large file contents can be answered from disk.
//
// Records live in an append-only segmented log (internal/logstore). A put for
// a node that is already present appends a new record rather than rewriting
// the old one; lookups return the most recently appended record for the node.
//
// Every record starts with its node id and a one-byte format version. A
// reader rejects versions it does not understand instead of guessing at the
// layout. Get surfaces decode errors to the caller; Nodes skips records it
// cannot decode, since a bulk walk favors availability over failing on the
// first damaged entry.
package auxstore
