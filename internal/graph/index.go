package graph

import (
	"context"
	"errors"
	"fmt"

	pebblestore "github.com/kiprasmel/sapling/internal/storage/pebble"
	"github.com/kiprasmel/sapling/pkg/changeset"
)

// Index answers parent and generation queries for changesets and admits new
// rows one at a time, parents first.
type Index interface {
	// Get returns the committed row for id, or false when id is not indexed.
	Get(ctx context.Context, repo changeset.RepositoryID, id changeset.ID) (Row, bool, error)
	// Exists reports whether id is indexed.
	Exists(ctx context.Context, repo changeset.RepositoryID, id changeset.ID) (bool, error)
	// Generation returns id's generation number, or false when id is not
	// indexed.
	Generation(ctx context.Context, repo changeset.RepositoryID, id changeset.ID) (changeset.Generation, bool, error)
	// Insert commits a row for id with the given parents. Every parent must
	// already be indexed. Re-inserting an identical row is a no-op.
	Insert(ctx context.Context, repo changeset.RepositoryID, id changeset.ID, parents []changeset.ID) error
}

// ConflictError reports an insert whose parents disagree with the row
// already committed for the same changeset.
type ConflictError struct {
	ID changeset.ID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("graph: conflicting row already indexed for %s", e.ID.Short())
}

// ParentNotIndexedError reports an insert referencing a parent with no
// committed row.
type ParentNotIndexedError struct {
	ID     changeset.ID
	Parent changeset.ID
}

func (e *ParentNotIndexedError) Error() string {
	return fmt.Sprintf("graph: parent %s of %s is not indexed", e.Parent.Short(), e.ID.Short())
}

// PebbleIndex is the durable Index over a pebble database.
type PebbleIndex struct {
	db *pebblestore.DB
}

var _ Index = (*PebbleIndex)(nil)

func NewPebbleIndex(db *pebblestore.DB) *PebbleIndex {
	return &PebbleIndex{db: db}
}

func (x *PebbleIndex) Get(ctx context.Context, repo changeset.RepositoryID, id changeset.ID) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, false, err
	}
	val, err := x.db.Get(rowKey(repo, id))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("graph: get %s: %w", id.Short(), err)
	}
	row, err := decodeRow(val)
	if err != nil {
		return Row{}, false, fmt.Errorf("graph: %s: %w", id.Short(), err)
	}
	return row, true, nil
}

func (x *PebbleIndex) Exists(ctx context.Context, repo changeset.RepositoryID, id changeset.ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := x.db.Has(rowKey(repo, id))
	if err != nil {
		return false, fmt.Errorf("graph: exists %s: %w", id.Short(), err)
	}
	return ok, nil
}

func (x *PebbleIndex) Generation(ctx context.Context, repo changeset.RepositoryID, id changeset.ID) (changeset.Generation, bool, error) {
	row, ok, err := x.Get(ctx, repo, id)
	if err != nil || !ok {
		return 0, false, err
	}
	return row.Generation, true, nil
}

func (x *PebbleIndex) Insert(ctx context.Context, repo changeset.RepositoryID, id changeset.ID, parents []changeset.ID) error {
	// Generation is derived from the committed parent rows, so every parent
	// must be indexed before its child.
	var gen changeset.Generation
	for _, p := range parents {
		pgen, ok, err := x.Generation(ctx, repo, p)
		if err != nil {
			return err
		}
		if !ok {
			return &ParentNotIndexedError{ID: id, Parent: p}
		}
		if pgen+1 > gen {
			gen = pgen + 1
		}
	}
	row := Row{Parents: parents, Generation: gen}

	if prev, ok, err := x.Get(ctx, repo, id); err != nil {
		return err
	} else if ok {
		if rowsEqual(prev, row) {
			return nil
		}
		return &ConflictError{ID: id}
	}

	if err := x.db.Set(rowKey(repo, id), encodeRow(row)); err != nil {
		return fmt.Errorf("graph: insert %s: %w", id.Short(), err)
	}
	return nil
}
