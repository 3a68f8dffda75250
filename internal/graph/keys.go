package graph

import "github.com/kiprasmel/sapling/pkg/changeset"

// Keyspace:
//
//	graph/{repo}/{changeset id}
const keyPrefix = "graph/"

func rowKey(repo changeset.RepositoryID, id changeset.ID) []byte {
	scope := repo.String()
	out := make([]byte, 0, len(keyPrefix)+len(scope)+1+changeset.IDLen)
	out = append(out, keyPrefix...)
	out = append(out, scope...)
	out = append(out, '/')
	return append(out, id[:]...)
}
