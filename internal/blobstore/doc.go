// Package blobstore is a content-addressed byte store. Callers derive the
// key from the bytes they store, so writing the same content twice under the
// same key is harmless and concurrent identical puts never conflict.
//
// A Scoped store prefixes every key with a repository namespace, keeping the
// blobs of distinct repositories apart inside one shared backing database.
package blobstore
