package blobstore

import (
	"context"
	"errors"
	"fmt"

	pebblestore "github.com/kiprasmel/sapling/internal/storage/pebble"
	"github.com/kiprasmel/sapling/pkg/changeset"
)

// Store persists content-addressed blobs. Puts are idempotent and there is
// no ordering guarantee across distinct keys.
type Store interface {
	// Put stores value under key. Storing identical bytes under the same
	// key again is a no-op.
	Put(ctx context.Context, key, value []byte) error
	// Get returns the blob for key, or false when no blob is stored.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
}

// Scoped is a Store confined to one repository's key namespace inside a
// shared backing database.
type Scoped struct {
	db   *pebblestore.DB
	repo changeset.RepositoryID
}

var _ Store = (*Scoped)(nil)

// NewScoped returns the blob namespace for repo inside db.
func NewScoped(db *pebblestore.DB, repo changeset.RepositoryID) *Scoped {
	return &Scoped{db: db, repo: repo}
}

func (s *Scoped) Put(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("blobstore: empty key")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Set(scopedKey(s.repo, key), value); err != nil {
		return fmt.Errorf("blobstore: put %x: %w", key, err)
	}
	return nil
}

func (s *Scoped) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	val, err := s.db.Get(scopedKey(s.repo, key))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("blobstore: get %x: %w", key, err)
	}
	return val, true, nil
}
