package repo

import (
	"errors"
	"fmt"

	"github.com/kiprasmel/sapling/pkg/changeset"
)

// ErrNotFound reports a lookup for a changeset the repository does not have.
var ErrNotFound = errors.New("repo: changeset not found")

// MissingParentError rejects a batch referencing a parent that is neither in
// the batch nor already indexed. When several parents are missing, which one
// is reported depends on check completion order, but the reported id is
// always genuinely missing.
type MissingParentError struct {
	Parent changeset.ID
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("repo: missing parent %s", e.Parent.Short())
}

// CycleError reports a batch whose intra-batch parent edges form a cycle.
// The caller constructed an invalid batch; this is not retryable.
type CycleError struct {
	ID changeset.ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("repo: parent cycle through %s", e.ID.Short())
}
