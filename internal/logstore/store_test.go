package logstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testRecord(key byte, val string) ([]byte, []byte) {
	k := bytes.Repeat([]byte{key}, DefaultKeyLen)
	rec := append(append([]byte(nil), k...), val...)
	return k, rec
}

func openTestStore(t *testing.T, dir string, opts Options, access Access) *Store {
	t.Helper()
	s, err := Open(dir, opts, access)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetFlushVisibility(t *testing.T) {
	s := openTestStore(t, t.TempDir(), Options{}, AccessLocal)

	key, rec := testRecord(0xaa, "hello")
	if err := s.Put(key, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Not visible before flush.
	if _, ok, err := s.Get(key); err != nil || ok {
		t.Fatalf("staged record visible before flush: ok=%v err=%v", ok, err)
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || !bytes.Equal(got, rec) {
		t.Fatalf("got %q ok=%v want %q", got, ok, rec)
	}

	// Absent key.
	absent, _ := testRecord(0xbb, "")
	if _, ok, err := s.Get(absent); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}
}

func TestMostRecentlyAppendedWins(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Options{}, AccessLocal)

	key, rec1 := testRecord(0x01, "first")
	_, rec2 := testRecord(0x01, "second")
	if err := s.Put(key, rec1); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(key, rec2); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, rec2) {
		t.Fatalf("tie-break picked %q want %q", got, rec2)
	}

	// Both records remain in the log.
	var n int
	if err := s.Scan(func([]byte) error { n++; return nil }); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 records in log, got %d", n)
	}

	// The winner is stable across reopen.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s2 := openTestStore(t, dir, Options{}, AccessLocal)
	got, ok, err = s2.Get(key)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, rec2) {
		t.Fatalf("tie-break changed after reopen: %q", got)
	}
}

func TestConcurrentPutsWithReaders(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Options{}, AccessLocal)

	key, rec1 := testRecord(0x01, "writer-one")
	_, rec2 := testRecord(0x01, "writer-two")

	// Readers run throughout; they must only ever observe a fully published
	// record, never a torn one.
	done := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, ok, err := s.Get(key)
				if err != nil {
					t.Errorf("get: %v", err)
					return
				}
				if ok && !bytes.Equal(got, rec1) && !bytes.Equal(got, rec2) {
					t.Errorf("torn record observed: %q", got)
					return
				}
				if err := s.Scan(func([]byte) error { return nil }); err != nil {
					t.Errorf("scan: %v", err)
					return
				}
			}
		}()
	}

	var writers sync.WaitGroup
	for _, rec := range [][]byte{rec1, rec2} {
		writers.Add(1)
		go func() {
			defer writers.Done()
			if err := s.Put(key, rec); err != nil {
				t.Errorf("put: %v", err)
			}
		}()
	}
	writers.Wait()
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	close(done)
	readers.Wait()

	// One of the two values won, per the append-sequence tie-break.
	got, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, rec1) && !bytes.Equal(got, rec2) {
		t.Fatalf("winner is neither written value: %q", got)
	}

	// The same winner is reproduced after reopen.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s2 := openTestStore(t, dir, Options{}, AccessLocal)
	again, ok, err := s2.Get(key)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(again, got) {
		t.Fatalf("winner changed after reopen: %q vs %q", again, got)
	}
}

func TestRotationAndRetention(t *testing.T) {
	dir := t.TempDir()
	opts := Options{MaxSegmentCount: 2, MaxBytesPerSegment: 64}
	s := openTestStore(t, dir, opts, AccessShared)

	var keys [][]byte
	for i := 0; i < 8; i++ {
		key, rec := testRecord(byte(i), fmt.Sprintf("value-%d", i))
		keys = append(keys, key)
		if err := s.Put(key, rec); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
		if err := s.Flush(); err != nil {
			t.Fatalf("flush %d: %v", i, err)
		}
	}

	if got := s.SegmentCount(); got > opts.MaxSegmentCount {
		t.Fatalf("retention not applied: %d segments", got)
	}

	// Oldest keys were dropped with their segments, newest survive.
	if _, ok, err := s.Get(keys[0]); err != nil || ok {
		t.Fatalf("dropped key still indexed: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.Get(keys[len(keys)-1]); err != nil || !ok {
		t.Fatalf("newest key lost: ok=%v err=%v", ok, err)
	}
}

func TestLocalStoreNeverDropsSegments(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Options{MaxSegmentCount: 2, MaxBytesPerSegment: 64}, AccessLocal)

	var first []byte
	for i := 0; i < 8; i++ {
		key, rec := testRecord(byte(i), fmt.Sprintf("value-%d", i))
		if i == 0 {
			first = key
		}
		if err := s.Put(key, rec); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, ok, err := s.Get(first); err != nil || !ok {
		t.Fatalf("local store dropped a record: ok=%v err=%v", ok, err)
	}
}

func TestAutoSyncThreshold(t *testing.T) {
	s := openTestStore(t, t.TempDir(), Options{AutoSyncThreshold: 1}, AccessLocal)

	key, rec := testRecord(0x42, "autoflush")
	if err := s.Put(key, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Threshold of 1 byte forces an implicit flush inside Put.
	if _, ok, err := s.Get(key); err != nil || !ok {
		t.Fatalf("implicit flush did not publish: ok=%v err=%v", ok, err)
	}
}

func TestReopenAfterDeletedSegment(t *testing.T) {
	dir := t.TempDir()
	opts := Options{MaxBytesPerSegment: 64}
	s := openTestStore(t, dir, opts, AccessLocal)

	keyA, recA := testRecord(0x0a, "segment-one")
	if err := s.Put(keyA, recA); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	keyB, recB := testRecord(0x0b, "segment-two")
	if err := s.Put(keyB, recB); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Remove the first segment file entirely.
	if err := os.Remove(filepath.Join(dir, segmentFileName(1))); err != nil {
		t.Fatalf("remove: %v", err)
	}

	s2 := openTestStore(t, dir, opts, AccessLocal)
	if _, ok, err := s2.Get(keyA); err != nil || ok {
		t.Fatalf("key from deleted segment should be not-found: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s2.Get(keyB); err != nil || !ok {
		t.Fatalf("key from intact segment lost: ok=%v err=%v", ok, err)
	}

	// New writes still succeed.
	keyC, recC := testRecord(0x0c, "after-recovery")
	if err := s2.Put(keyC, recC); err != nil {
		t.Fatalf("put after recovery: %v", err)
	}
	if err := s2.Flush(); err != nil {
		t.Fatalf("flush after recovery: %v", err)
	}
	if _, ok, err := s2.Get(keyC); err != nil || !ok {
		t.Fatalf("new record lost: ok=%v err=%v", ok, err)
	}
}

func TestReopenAfterTruncatedTail(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Options{}, AccessLocal)

	key1, rec1 := testRecord(0x01, "intact")
	key2, rec2 := testRecord(0x02, "will-be-cut")
	if err := s.Put(key1, rec1); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(key2, rec2); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Cut the tail mid-record.
	path := filepath.Join(dir, segmentFileName(1))
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()-5); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	s2 := openTestStore(t, dir, Options{}, AccessLocal)
	if _, ok, err := s2.Get(key1); err != nil || !ok {
		t.Fatalf("intact record lost: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s2.Get(key2); err != nil || ok {
		t.Fatalf("truncated record should be gone: ok=%v err=%v", ok, err)
	}

	// Appends resume cleanly after the repair.
	key3, rec3 := testRecord(0x03, "resumed")
	if err := s2.Put(key3, rec3); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s2.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, ok, err := s2.Get(key3); err != nil || !ok {
		t.Fatalf("resumed record lost: ok=%v err=%v", ok, err)
	}
}

func TestScanSkipsCorruptGetSurfaces(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Options{}, AccessLocal)

	key1, rec1 := testRecord(0x01, "good-one")
	key2, rec2 := testRecord(0x02, "to-corrupt")
	key3, rec3 := testRecord(0x03, "good-two")
	for _, pr := range [][2][]byte{{key1, rec1}, {key2, rec2}, {key3, rec3}} {
		if err := s.Put(pr[0], pr[1]); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Flip a byte inside the second record's body.
	loc := s.index[string(key2)]
	f, err := os.OpenFile(filepath.Join(dir, segmentFileName(1)), os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("open segment: %v", err)
	}
	if _, err := f.WriteAt([]byte{0xff}, loc.off+int64(loc.length)-frameCRCLen-1); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	f.Close()

	// Point lookup surfaces the corruption.
	if _, _, err := s.Get(key2); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("want ErrCorruptRecord, got %v", err)
	}

	// Bulk scan skips it and yields the survivors.
	var seen [][]byte
	if err := s.Scan(func(rec []byte) error {
		seen = append(seen, append([]byte(nil), rec...))
		return nil
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("want 2 surviving records, got %d", len(seen))
	}
	if !bytes.Equal(seen[0], rec1) || !bytes.Equal(seen[1], rec3) {
		t.Fatalf("scan returned wrong records")
	}
}

func TestPutValidatesKeyPrefix(t *testing.T) {
	s := openTestStore(t, t.TempDir(), Options{}, AccessLocal)

	key, rec := testRecord(0x01, "x")
	wrong, _ := testRecord(0x02, "x")
	if err := s.Put(wrong, rec); err == nil {
		t.Fatalf("expected key/prefix mismatch error")
	}
	if err := s.Put(key, key[:5]); err == nil {
		t.Fatalf("expected short-record error")
	}
}

func TestClosedStore(t *testing.T) {
	s, err := Open(t.TempDir(), Options{}, AccessLocal)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	key, rec := testRecord(0x01, "x")
	if err := s.Put(key, rec); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
	if _, _, err := s.Get(key); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}
