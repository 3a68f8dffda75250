package blobstore

import "github.com/kiprasmel/sapling/pkg/changeset"

// Keyspace:
//
//	blob/{repo}/{key}
const keyPrefix = "blob/"

func scopedKey(repo changeset.RepositoryID, key []byte) []byte {
	scope := repo.String()
	out := make([]byte, 0, len(keyPrefix)+len(scope)+1+len(key))
	out = append(out, keyPrefix...)
	out = append(out, scope...)
	out = append(out, '/')
	return append(out, key...)
}
