package logstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Access declares how a store directory is used.
type Access int

const (
	// AccessLocal marks an authoritative store: rotation opens new segments
	// but old ones are never dropped.
	AccessLocal Access = iota
	// AccessShared marks a cache store: rotation drops the oldest segments
	// past MaxSegmentCount.
	AccessShared
)

// Defaults mirror the aux-store cache configuration: 4 x 2.5 GB segments,
// implicit flush every 250 MiB.
const (
	DefaultMaxSegmentCount    = 4
	DefaultMaxBytesPerSegment = 2500 * 1000 * 1000
	DefaultAutoSyncThreshold  = 250 * 1024 * 1024
	DefaultKeyLen             = 20
)

// Options tunes a store. Zero values take the defaults above.
type Options struct {
	// MaxSegmentCount caps retained segments; the oldest are dropped on
	// rotation. Only applied under AccessShared.
	MaxSegmentCount int
	// MaxBytesPerSegment is the rotation threshold.
	MaxBytesPerSegment int64
	// AutoSyncThreshold is the number of staged bytes that triggers an
	// implicit Flush. Zero means the default; negative disables implicit
	// flushes entirely.
	AutoSyncThreshold int64
	// KeyLen is the width of the primary-key byte range at the front of
	// every record body. Records shorter than KeyLen are not indexed.
	KeyLen int
}

func (o Options) withDefaults() Options {
	if o.MaxSegmentCount <= 0 {
		o.MaxSegmentCount = DefaultMaxSegmentCount
	}
	if o.MaxBytesPerSegment <= 0 {
		o.MaxBytesPerSegment = DefaultMaxBytesPerSegment
	}
	if o.AutoSyncThreshold == 0 {
		o.AutoSyncThreshold = DefaultAutoSyncThreshold
	}
	if o.KeyLen <= 0 {
		o.KeyLen = DefaultKeyLen
	}
	return o
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("logstore: store is closed")

// recordLoc addresses one flushed frame. seq is the store-wide append
// sequence backing the most-recently-appended-wins tie-break.
type recordLoc struct {
	segID  uint64
	off    int64
	length int
	seq    uint64
}

type stagedRecord struct {
	key string
	loc recordLoc
}

// Store is an append-only record store with a secondary key index.
type Store struct {
	mu     sync.RWMutex
	dir    string
	access Access
	opts   Options

	segs    []*segment // ascending id; the last one is the append target
	index   map[string]recordLoc
	staged  []stagedRecord
	pending bytes.Buffer
	nextSeq uint64
	closed  bool
}

// Open creates the directory layout if absent and rebuilds the key index
// from existing segments. Unreadable segments are treated as lost; a
// truncated tail is cut back to the last intact frame.
func Open(dir string, opts Options, access Access) (*Store, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logstore: create %s: %w", dir, err)
	}

	s := &Store{
		dir:    dir,
		access: access,
		opts:   opts,
		index:  make(map[string]recordLoc),
	}

	ids, err := listSegmentIDs(dir)
	if err != nil {
		return nil, fmt.Errorf("logstore: list %s: %w", dir, err)
	}
	for _, id := range ids {
		seg, err := s.loadSegment(id)
		if err != nil {
			// Segment contents are lost; the store stays available.
			continue
		}
		s.segs = append(s.segs, seg)
	}
	if len(s.segs) == 0 {
		seg, err := s.createSegment(1)
		if err != nil {
			return nil, err
		}
		s.segs = append(s.segs, seg)
	} else {
		// Appends resume after the intact prefix of the newest segment.
		tail := s.segs[len(s.segs)-1]
		if err := tail.f.Truncate(tail.size); err != nil {
			return nil, fmt.Errorf("logstore: repair %s: %w", tail.path, err)
		}
	}
	return s, nil
}

// loadSegment opens one segment file and indexes its intact frames.
func (s *Store) loadSegment(id uint64) (*segment, error) {
	path := segmentPath(s.dir, id)
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		f.Close()
		return nil, err
	}

	seg := &segment{id: id, path: path, f: f}
	off := int64(0)
	for off < int64(len(data)) {
		body, frameLen, err := decodeFrame(data[off:])
		if frameLen == 0 {
			break // truncated tail; the rest of the segment is lost
		}
		if err == nil && len(body) >= s.opts.KeyLen {
			key := string(body[:s.opts.KeyLen])
			loc := recordLoc{segID: id, off: off, length: frameLen, seq: s.nextSeq}
			if prev, ok := s.index[key]; !ok || loc.seq > prev.seq {
				s.index[key] = loc
			}
		}
		s.nextSeq++
		off += int64(frameLen)
	}
	seg.size = off
	return seg, nil
}

func (s *Store) createSegment(id uint64) (*segment, error) {
	path := segmentPath(s.dir, id)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logstore: create segment: %w", err)
	}
	return &segment{id: id, path: path, f: f}, nil
}

// Put stages a record for append. The first KeyLen bytes of rec must equal
// key. The record is neither durable nor visible to Get until Flush.
func (s *Store) Put(key, rec []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(rec) < s.opts.KeyLen {
		return fmt.Errorf("logstore: record shorter than key length %d", s.opts.KeyLen)
	}
	if !bytes.Equal(rec[:s.opts.KeyLen], key) {
		return fmt.Errorf("logstore: key does not match record prefix")
	}

	frame := encodeFrame(rec)
	active := s.segs[len(s.segs)-1]
	if active.size+int64(s.pending.Len()) > 0 &&
		active.size+int64(s.pending.Len())+int64(len(frame)) > s.opts.MaxBytesPerSegment {
		if err := s.rotateLocked(); err != nil {
			return err
		}
		active = s.segs[len(s.segs)-1]
	}

	loc := recordLoc{
		segID:  active.id,
		off:    active.size + int64(s.pending.Len()),
		length: len(frame),
		seq:    s.nextSeq,
	}
	s.nextSeq++
	s.pending.Write(frame)
	s.staged = append(s.staged, stagedRecord{key: string(key), loc: loc})

	if s.opts.AutoSyncThreshold > 0 && int64(s.pending.Len()) >= s.opts.AutoSyncThreshold {
		return s.flushLocked()
	}
	return nil
}

// Flush writes staged bytes to the active segment, fsyncs, and publishes the
// staged records' offsets into the index. After it returns, every prior Put
// is durable and visible.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.pending.Len() == 0 {
		return nil
	}
	active := s.segs[len(s.segs)-1]
	if _, err := active.f.WriteAt(s.pending.Bytes(), active.size); err != nil {
		return fmt.Errorf("logstore: write %s: %w", active.path, err)
	}
	if err := active.f.Sync(); err != nil {
		return fmt.Errorf("logstore: sync %s: %w", active.path, err)
	}
	active.size += int64(s.pending.Len())

	for _, st := range s.staged {
		if prev, ok := s.index[st.key]; !ok || st.loc.seq > prev.seq {
			s.index[st.key] = st.loc
		}
	}
	s.staged = s.staged[:0]
	s.pending.Reset()
	return nil
}

// rotateLocked flushes the active segment and opens the next one, dropping
// the oldest segments past the retention cap when the store is shared.
func (s *Store) rotateLocked() error {
	if err := s.flushLocked(); err != nil {
		return err
	}
	active := s.segs[len(s.segs)-1]
	next, err := s.createSegment(active.id + 1)
	if err != nil {
		return err
	}
	s.segs = append(s.segs, next)

	if s.access != AccessShared {
		return nil
	}
	for len(s.segs) > s.opts.MaxSegmentCount {
		oldest := s.segs[0]
		s.segs = s.segs[1:]
		for key, loc := range s.index {
			if loc.segID == oldest.id {
				delete(s.index, key)
			}
		}
		oldest.close()
		if err := os.Remove(oldest.path); err != nil {
			return fmt.Errorf("logstore: drop segment %s: %w", oldest.path, err)
		}
	}
	return nil
}

// Get returns the most recently appended flushed record for key. The second
// return is false when no record is indexed. Unlike Scan, a record that
// fails to decode here surfaces the error.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	loc, ok := s.index[string(key)]
	if !ok {
		return nil, false, nil
	}
	seg := s.segmentByID(loc.segID)
	if seg == nil {
		return nil, false, nil
	}
	buf := make([]byte, loc.length)
	if _, err := seg.f.ReadAt(buf, loc.off); err != nil {
		return nil, false, fmt.Errorf("logstore: read %s@%d: %w", seg.path, loc.off, err)
	}
	body, frameLen, err := decodeFrame(buf)
	if err != nil {
		return nil, false, fmt.Errorf("logstore: %s@%d: %w", seg.path, loc.off, err)
	}
	if frameLen == 0 {
		return nil, false, fmt.Errorf("logstore: %s@%d: %w", seg.path, loc.off, ErrCorruptRecord)
	}
	return body, true, nil
}

// Scan enumerates every structurally valid flushed record across all intact
// segments, oldest first. Records that fail to decode are skipped. fn
// returning an error stops the scan.
func (s *Store) Scan(fn func(rec []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	for _, seg := range s.segs {
		if seg.size == 0 {
			continue
		}
		data := make([]byte, seg.size)
		if _, err := seg.f.ReadAt(data, 0); err != nil {
			continue // segment unreadable; keep scanning the others
		}
		off := 0
		for off < len(data) {
			body, frameLen, err := decodeFrame(data[off:])
			if frameLen == 0 {
				break
			}
			off += frameLen
			if err != nil {
				continue // corrupt frame; scan favors availability
			}
			if err := fn(body); err != nil {
				return err
			}
		}
	}
	return nil
}

// SegmentCount reports how many segments the store currently retains.
func (s *Store) SegmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segs)
}

// Close flushes staged records and releases file handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	flushErr := s.flushLocked()
	for _, seg := range s.segs {
		seg.close()
	}
	s.closed = true
	return flushErr
}

func (s *Store) segmentByID(id uint64) *segment {
	for _, seg := range s.segs {
		if seg.id == id {
			return seg
		}
	}
	return nil
}
