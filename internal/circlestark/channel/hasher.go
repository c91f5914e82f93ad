package channel

import (
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Hasher is the digest primitive a Channel is built over: a single
// fixed-size hash of an arbitrary byte string. Blake2sHash is the default,
// matching the Merkle tree's reference hasher; Sha3Hash is kept wired as a
// second implementation to prove the channel is hasher-agnostic.
type Hasher interface {
	Hash(data []byte) [32]byte
}

// Blake2sHash hashes with Blake2s-256.
type Blake2sHash struct{}

func (Blake2sHash) Hash(data []byte) [32]byte {
	return blake2s.Sum256(data)
}

// Sha3Hash hashes with Sha3-256.
type Sha3Hash struct{}

func (Sha3Hash) Hash(data []byte) [32]byte {
	return sha3.Sum256(data)
}
