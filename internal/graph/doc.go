// Package graph maintains the changeset DAG index: one row per changeset
// holding its parent ids and its generation number (0 for roots, otherwise
// one past the highest parent generation).
//
// Insert requires every parent row to already be committed, which keeps the
// index closed under parent edges: any row that is visible has all of its
// ancestry visible too. Re-inserting a row identical to the committed one is
// a no-op, so interrupted batch insertions can be retried safely. Inserting
// a row that disagrees with the committed one is an error.
package graph
