// Package repo ties a repository's blob store and graph index together and
// implements batch changeset insertion.
//
// SaveBatch admits a set of new changesets while keeping the graph closed
// under parent edges: parents outside the batch are verified to exist up
// front, blobs are written before any graph mutation, and graph rows are
// inserted sequentially in topological order. A batch that fails partway
// leaves only a topologically consistent prefix behind and can be retried
// as-is.
package repo
