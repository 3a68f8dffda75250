package repo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kiprasmel/sapling/pkg/changeset"
	"github.com/kiprasmel/sapling/pkg/log"
)

// maxConcurrentSaves bounds the fan-out of parent checks and blob writes
// within one batch.
const maxConcurrentSaves = 100

// SaveBatch admits a set of new changesets. Parents referenced by the batch
// but not members of it must already be indexed; the batch's own internal
// parent edges must be acyclic.
//
// Blobs are written before any graph mutation, then graph rows are inserted
// one at a time in topological order, so an interrupted call leaves only
// rows whose full ancestry is visible. Retrying the identical batch is safe:
// blob puts are idempotent and already-inserted rows are no-ops.
func (r *Repository) SaveBatch(ctx context.Context, batch []*changeset.Changeset) error {
	if len(batch) == 0 {
		return nil
	}
	start := time.Now()

	ids := make([]changeset.ID, len(batch))
	blobs := make([][]byte, len(batch))
	member := make(map[changeset.ID]bool, len(batch))
	for i, cs := range batch {
		blob, err := cs.Blob()
		if err != nil {
			return fmt.Errorf("repo: encode changeset %d: %w", i, err)
		}
		blobs[i] = blob
		ids[i] = changeset.ComputeID(blob)
		member[ids[i]] = true
	}

	// Parents outside the batch must already be indexed. Checks are
	// independent reads, so they fan out; the first failure cancels the
	// rest.
	external := make(map[changeset.ID]bool)
	for _, cs := range batch {
		for _, p := range cs.Parents {
			if !member[p] {
				external[p] = true
			}
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSaves)
	for p := range external {
		g.Go(func() error {
			ok, err := r.graph.Exists(gctx, r.id, p)
			if err != nil {
				return err
			}
			if !ok {
				return &MissingParentError{Parent: p}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// All blobs are durable before the first graph row becomes visible.
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSaves)
	for i := range batch {
		g.Go(func() error {
			return r.blobs.Put(gctx, ids[i][:], blobs[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	order, err := topoSort(batch, ids)
	if err != nil {
		return err
	}

	// Sequential, parents first: the insertion order itself is what keeps
	// the index closed under parent edges at every intermediate state.
	for _, i := range order {
		if err := r.graph.Insert(ctx, r.id, ids[i], batch[i].Parents); err != nil {
			return fmt.Errorf("repo: insert %s: %w", ids[i].Short(), err)
		}
	}

	r.logger.Info("saved changeset batch",
		log.Int("changesets", len(batch)),
		log.Int("external_parents", len(external)),
		log.Duration("elapsed", time.Since(start)))
	return nil
}
