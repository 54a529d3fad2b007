package deres_protocol

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/providenetwork/merkletree"
)

// metadataField is one key/value pair of an off-chain metadata document,
// hashed as a merkle leaf.
type metadataField struct {
	key   string
	value string
}

func (f metadataField) CalculateHash() ([]byte, error) {
	h := sha256.New()
	h.Write([]byte(f.key))
	h.Write([]byte{0})
	h.Write([]byte(f.value))
	return h.Sum(nil), nil
}

func (f metadataField) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(metadataField)
	if !ok {
		return false, fmt.Errorf("cannot compare metadata field against %T", other)
	}
	return f.key == o.key && f.value == o.value, nil
}

// ComputeMetadataCommitment builds a merkle tree over the metadata
// fields and returns its root. Keys are sorted first so the commitment
// is independent of map iteration order; the same document always
// yields the same root.
func ComputeMetadataCommitment(metadata map[string]string) ([32]byte, error) {
	var commitment [32]byte
	if len(metadata) == 0 {
		return commitment, nil
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	leaves := make([]merkletree.Content, 0, len(keys))
	for _, key := range keys {
		leaves = append(leaves, metadataField{key: key, value: metadata[key]})
	}

	tree, err := merkletree.NewTreeWithHashStrategy(leaves, sha256.New)
	if err != nil {
		return commitment, fmt.Errorf("failed to build metadata merkle tree: %w", err)
	}

	copy(commitment[:], tree.MerkleRoot())
	return commitment, nil
}

// VerifyMetadataCommitment recomputes the commitment for a metadata
// document and compares it against the value stored on-chain.
func VerifyMetadataCommitment(metadata map[string]string, onChain [32]byte) (bool, error) {
	computed, err := ComputeMetadataCommitment(metadata)
	if err != nil {
		return false, err
	}
	return bytes.Equal(computed[:], onChain[:]), nil
}
