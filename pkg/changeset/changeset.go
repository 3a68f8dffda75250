package changeset

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core deterministic mode: sorted map keys, shortest-form integers.
	// Identity depends on this encoding being canonical.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Changeset is an immutable commit object. Parents are ordered: zero for a
// root, one for a normal commit, two or more for a merge.
type Changeset struct {
	Parents      []ID              `cbor:"1,keyasint"`
	Author       string            `cbor:"2,keyasint"`
	Message      string            `cbor:"3,keyasint"`
	AuthoredAtMs int64             `cbor:"4,keyasint"`
	Extra        map[string]string `cbor:"5,keyasint,omitempty"`
}

// Blob returns the canonical byte encoding. The blob's content-derived key
// equals ComputeID of these bytes.
func (c *Changeset) Blob() ([]byte, error) {
	b, err := encMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("changeset: encode: %w", err)
	}
	return b, nil
}

// ComputeID encodes the changeset and hashes the blob.
func (c *Changeset) ComputeID() (ID, error) {
	b, err := c.Blob()
	if err != nil {
		return ID{}, err
	}
	return ComputeID(b), nil
}

// FromBlob decodes a canonical blob back into a Changeset.
func FromBlob(blob []byte) (*Changeset, error) {
	var c Changeset
	if err := decMode.Unmarshal(blob, &c); err != nil {
		return nil, fmt.Errorf("changeset: decode: %w", err)
	}
	return &c, nil
}
