package auxstore

import (
	"fmt"

	"github.com/kiprasmel/sapling/internal/logstore"
)

// Store is a durable node-keyed metadata store backed by an append-only
// segmented log.
type Store struct {
	log *logstore.Store
}

// Open opens or creates the store at dir. access selects the retention
// policy: a shared store rotates old segments away, a local store keeps
// everything.
func Open(dir string, opts logstore.Options, access logstore.Access) (*Store, error) {
	opts.KeyLen = NodeIDLen
	log, err := logstore.Open(dir, opts, access)
	if err != nil {
		return nil, fmt.Errorf("auxstore: %w", err)
	}
	return &Store{log: log}, nil
}

// Put appends a metadata record for node. The record is not durable or
// visible to Get until Flush.
func (s *Store) Put(node NodeID, e Entry) error {
	if e.TotalSize > MaxTotalSize {
		return fmt.Errorf("auxstore: total size %d exceeds maximum", e.TotalSize)
	}
	return s.log.Put(node[:], serializeRecord(node, e))
}

// Get returns the most recently appended entry for node. The second return
// is false when the node has no record. A record that fails to decode
// surfaces its error rather than reading as absent.
func (s *Store) Get(node NodeID) (Entry, bool, error) {
	rec, ok, err := s.log.Get(node[:])
	if err != nil || !ok {
		return Entry{}, false, err
	}
	_, e, err := deserializeRecord(rec)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Flush makes all prior Puts durable and visible.
func (s *Store) Flush() error {
	return s.log.Flush()
}

// Nodes walks every decodable flushed record, oldest first. Records that
// fail to decode are skipped. fn returning an error stops the walk.
func (s *Store) Nodes(fn func(NodeID, Entry) error) error {
	return s.log.Scan(func(rec []byte) error {
		node, e, err := deserializeRecord(rec)
		if err != nil {
			return nil
		}
		return fn(node, e)
	})
}

// Close flushes and releases the underlying log.
func (s *Store) Close() error {
	return s.log.Close()
}
