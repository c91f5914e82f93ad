package merkle

import (
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// Hash is the opaque, fixed-size digest type every node of the tree carries.
type Hash [32]byte

// leafPrefix and nodePrefix are 64-byte-padded domain separators absorbed
// before any leaf/node-specific data, so a leaf hash can never collide with
// a node hash of the same preimage bytes.
var (
	leafPrefix = pad64([]byte("circlestark/merkle/leaf"))
	nodePrefix = pad64([]byte("circlestark/merkle/node"))
)

func pad64(s []byte) [64]byte {
	var out [64]byte
	copy(out[:], s)
	return out
}

// Hasher is the capability set a hash function must provide to back the
// lifted Merkle tree: a fresh leaf-absorbing state pre-seeded with
// LEAF_PREFIX, and a two-child combiner pre-seeded with NODE_PREFIX.
type Hasher interface {
	// NewLeafState returns a hasher state pre-absorbed with LEAF_PREFIX,
	// ready to accept one or more column rows via LeafState.UpdateLeaf.
	NewLeafState() LeafState
	// HashChildren pre-absorbs NODE_PREFIX then left||right.
	HashChildren(left, right Hash) Hash
}

// LeafState accumulates one leaf's row across the tree's columns before
// Finalize produces the leaf hash.
type LeafState interface {
	// UpdateLeaf absorbs one column's value at this row, as its canonical
	// little-endian 4-byte encoding.
	UpdateLeaf(v m31.M31)
	Finalize() Hash
}

// Blake2sHasher is the reference hasher: Blake2s-256, Hash = [32]byte.
type Blake2sHasher struct{}

func (Blake2sHasher) NewLeafState() LeafState {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(leafPrefix[:])
	return &blake2sLeafState{h: h}
}

func (Blake2sHasher) HashChildren(left, right Hash) Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(nodePrefix[:])
	h.Write(left[:])
	h.Write(right[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

type blake2sLeafState struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

func (s *blake2sLeafState) UpdateLeaf(v m31.M31) {
	b := v.ToBytesLE()
	s.h.Write(b[:])
}

func (s *blake2sLeafState) Finalize() Hash {
	var out Hash
	copy(out[:], s.h.Sum(nil))
	return out
}

// Sha3Hasher is a second hasher implementation proving the channel and the
// merkle tree are hasher-agnostic: Sha3-256, Hash = [32]byte.
type Sha3Hasher struct{}

func (Sha3Hasher) NewLeafState() LeafState {
	h := sha3.New256()
	h.Write(leafPrefix[:])
	return &sha3LeafState{h: h}
}

func (Sha3Hasher) HashChildren(left, right Hash) Hash {
	h := sha3.New256()
	h.Write(nodePrefix[:])
	h.Write(left[:])
	h.Write(right[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

type sha3LeafState struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

func (s *sha3LeafState) UpdateLeaf(v m31.M31) {
	b := v.ToBytesLE()
	s.h.Write(b[:])
}

func (s *sha3LeafState) Finalize() Hash {
	var out Hash
	copy(out[:], s.h.Sum(nil))
	return out
}
