// Package registry maps repository names to their numeric ids. Ids are
// minted once, on first use of a name, and never reused.
package registry

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pebblestore "github.com/kiprasmel/sapling/internal/storage/pebble"
	"github.com/kiprasmel/sapling/pkg/changeset"
)

// Meta holds one repository's registration record.
type Meta struct {
	Name        string                 `json:"name"`
	ID          changeset.RepositoryID `json:"id"`
	CreatedAtMs int64                  `json:"createdAtMs"`
}

var (
	repoMetaPrefix = []byte("repometa/")
	nextIDKey      = []byte("reponextid")
)

// repoMetaKey builds the metadata key for a repository name.
func repoMetaKey(name string) []byte {
	k := make([]byte, 0, len(repoMetaPrefix)+len(name))
	k = append(k, repoMetaPrefix...)
	k = append(k, name...)
	return k
}

// Lookup returns the registration for name; the second return is false when
// the name has never been registered.
func Lookup(db *pebblestore.DB, name string) (Meta, bool, error) {
	b, err := db.Get(repoMetaKey(name))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, fmt.Errorf("registry: lookup %q: %w", name, err)
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, false, fmt.Errorf("registry: decode %q: %w", name, err)
	}
	return m, true, nil
}

// Ensure registers name if absent, minting the next free id, and returns the
// effective registration. Idempotent: an existing registration is returned
// unchanged.
// registerMu serializes registrations. Minting reads and advances the id
// counter, and that read-modify-write must not interleave across concurrent
// Ensure calls: two racing registrations would otherwise mint the same id
// for distinct names and merge their blob and graph namespaces.
var registerMu sync.Mutex

func Ensure(db *pebblestore.DB, name string) (Meta, error) {
	if name == "" {
		return Meta{}, fmt.Errorf("registry: empty repository name")
	}
	registerMu.Lock()
	defer registerMu.Unlock()

	if m, ok, err := Lookup(db, name); err != nil {
		return Meta{}, err
	} else if ok {
		return m, nil
	}

	id, err := nextID(db)
	if err != nil {
		return Meta{}, err
	}
	m := Meta{
		Name:        name,
		ID:          id,
		CreatedAtMs: time.Now().UnixMilli(),
	}
	b, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}

	// The counter advance and the meta record commit together, so a crash
	// cannot consume an id without registering its name.
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(id)+1)
	batch := db.NewBatch()
	defer batch.Close()
	if err := batch.Set(nextIDKey, buf[:], nil); err != nil {
		return Meta{}, fmt.Errorf("registry: advance next id: %w", err)
	}
	if err := batch.Set(repoMetaKey(name), b, nil); err != nil {
		return Meta{}, fmt.Errorf("registry: register %q: %w", name, err)
	}
	if err := db.CommitBatch(context.Background(), batch); err != nil {
		return Meta{}, fmt.Errorf("registry: register %q: %w", name, err)
	}
	return m, nil
}

func nextID(db *pebblestore.DB) (changeset.RepositoryID, error) {
	next := uint32(1)
	b, err := db.Get(nextIDKey)
	if err == nil && len(b) == 4 {
		next = binary.BigEndian.Uint32(b)
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return 0, fmt.Errorf("registry: read next id: %w", err)
	}
	return changeset.RepositoryID(next), nil
}
