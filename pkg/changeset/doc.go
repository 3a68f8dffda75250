// Package changeset defines Sapling's core identity types and the immutable
// changeset value.
//
// A changeset is identified by the BLAKE3 hash of its canonical blob
// encoding. The encoding is deterministic (CBOR core deterministic mode), so
// two changesets with equal content always produce byte-identical blobs and
// therefore equal ids. Storing the same changeset twice is a safe no-op
// everywhere downstream.
package changeset
