package repo

import (
	"context"
	"fmt"

	"github.com/kiprasmel/sapling/internal/blobstore"
	"github.com/kiprasmel/sapling/internal/graph"
	"github.com/kiprasmel/sapling/pkg/changeset"
	"github.com/kiprasmel/sapling/pkg/log"
)

// Repository is the handle for one repository's changesets. Its storage
// backends are supplied at construction; it never builds its own.
type Repository struct {
	id     changeset.RepositoryID
	name   string
	blobs  blobstore.Store
	graph  graph.Index
	logger log.Logger
}

func New(id changeset.RepositoryID, name string, blobs blobstore.Store, gx graph.Index, logger log.Logger) *Repository {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Repository{
		id:     id,
		name:   name,
		blobs:  blobs,
		graph:  gx,
		logger: logger.With(log.Component("repo"), log.Str("repo", name)),
	}
}

func (r *Repository) ID() changeset.RepositoryID { return r.id }
func (r *Repository) Name() string               { return r.name }

// Exists reports whether id is indexed in this repository.
func (r *Repository) Exists(ctx context.Context, id changeset.ID) (bool, error) {
	return r.graph.Exists(ctx, r.id, id)
}

// Parents returns id's parent ids. It fails with ErrNotFound when id is not
// indexed.
func (r *Repository) Parents(ctx context.Context, id changeset.ID) ([]changeset.ID, error) {
	row, ok, err := r.graph.Get(ctx, r.id, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	return row.Parents, nil
}

// Generation returns id's generation number; the second return is false when
// id is not indexed.
func (r *Repository) Generation(ctx context.Context, id changeset.ID) (changeset.Generation, bool, error) {
	return r.graph.Generation(ctx, r.id, id)
}

// Changeset loads and decodes the changeset object for id. It fails with
// ErrNotFound when no blob is stored for id.
func (r *Repository) Changeset(ctx context.Context, id changeset.ID) (*changeset.Changeset, error) {
	blob, ok, err := r.blobs.Get(ctx, id[:])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Short())
	}
	return changeset.FromBlob(blob)
}
