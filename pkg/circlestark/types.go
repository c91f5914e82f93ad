package circlestark

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/pcs"
)

// Type aliases re-exporting the internal engine's core vocabulary, so
// callers of this package never import internal/circlestark/... directly.
type (
	M31  = m31.M31
	QM31 = m31.QM31

	CirclePoint[F any] = circle.CirclePoint[F]

	Statement = component.Statement
	TreeVec[T any] = component.TreeVec[T]

	FriConfig = fri.Config
	Config    = pcs.Config
	Proof     = pcs.Proof

	Channel = channel.Channel
	Hasher  = channel.Hasher
)

// DefaultConfig returns a small configuration: no grinding, a blowup
// factor of 2 (log 1), a last-layer degree bound of one coefficient, 3 FRI
// queries.
// Suitable for tests and examples, not for a production soundness target.
func DefaultConfig() Config {
	return Config{
		PowBits: 0,
		Fri: FriConfig{
			LogBlowupFactor:         1,
			LogLastLayerDegreeBound: 0,
			NQueries:                3,
		},
	}
}

// DefaultHasher returns the Blake2s-256 channel hasher this package's
// provers and verifiers use for the Fiat-Shamir channel; their Merkle trees
// use merkle.Blake2sHasher, also Blake2s-256.
func DefaultHasher() channel.Hasher {
	return channel.Blake2sHash{}
}
