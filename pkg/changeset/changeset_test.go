package changeset

import (
	"bytes"
	"testing"
)

func TestBlobDeterministic(t *testing.T) {
	cs := &Changeset{
		Author:       "alice <alice@example.com>",
		Message:      "initial import",
		AuthoredAtMs: 1700000000000,
		Extra:        map[string]string{"branch": "main", "amended": "true"},
	}
	b1, err := cs.Blob()
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	b2, err := cs.Blob()
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatalf("encoding is not deterministic")
	}
	if ComputeID(b1) != ComputeID(b2) {
		t.Fatalf("ids differ for identical blobs")
	}
}

func TestBlobRoundTrip(t *testing.T) {
	parent := ID{1, 2, 3}
	cs := &Changeset{
		Parents:      []ID{parent},
		Author:       "bob",
		Message:      "fix crash on empty input",
		AuthoredAtMs: 42,
	}
	blob, err := cs.Blob()
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	got, err := FromBlob(blob)
	if err != nil {
		t.Fatalf("from blob: %v", err)
	}
	if len(got.Parents) != 1 || got.Parents[0] != parent {
		t.Fatalf("parents not preserved: %+v", got.Parents)
	}
	if got.Author != cs.Author || got.Message != cs.Message || got.AuthoredAtMs != cs.AuthoredAtMs {
		t.Fatalf("fields not preserved: %+v", got)
	}
	// Round-tripped content must re-encode to the same identity.
	id1, err := cs.ComputeID()
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	id2, err := got.ComputeID()
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("identity changed across round trip: %s vs %s", id1, id2)
	}
}

func TestIDHex(t *testing.T) {
	var id ID
	for i := range id {
		id[i] = byte(i)
	}
	parsed, err := IDFromHex(id.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != id {
		t.Fatalf("hex round trip mismatch")
	}
	if _, err := IDFromHex("zz"); err == nil {
		t.Fatalf("expected error for bad hex")
	}
	if _, err := IDFromHex("abcd"); err == nil {
		t.Fatalf("expected error for short id")
	}
}

func TestIDCompare(t *testing.T) {
	a := ID{0x01}
	b := ID{0x02}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("compare is inconsistent")
	}
}
