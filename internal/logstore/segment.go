package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const segmentSuffix = ".log"

// segment is one bounded append-only file. size counts only intact, durable
// bytes; staged appends live in the store until Flush.
type segment struct {
	id   uint64
	path string
	f    *os.File
	size int64
}

func segmentFileName(id uint64) string {
	return fmt.Sprintf("%06d%s", id, segmentSuffix)
}

func segmentPath(dir string, id uint64) string {
	return filepath.Join(dir, segmentFileName(id))
}

// listSegmentIDs returns the ids of all segment files in dir, ascending.
func listSegmentIDs(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, segmentSuffix) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSuffix(name, segmentSuffix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *segment) close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
