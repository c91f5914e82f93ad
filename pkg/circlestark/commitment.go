package circlestark

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
	"github.com/vybium/circle-stark/internal/circlestark/pcs"
)

// ProverColumn re-exports pcs.ProverColumn: a trace column's log size plus
// its stored coefficients, the unit this package commits and opens.
type ProverColumn = pcs.ProverColumn

// CommitAndProve commits columns to a lifted Merkle tree per non-empty
// tree, opens sampledPoints against them, and runs the batched-quotient
// FRI proof over the opening (§4.7, §4.8). It is the public entry point
// for §8 scenario B/C: committing a column of known log size and opening
// it at an out-of-domain point with a non-zero blowup factor.
func CommitAndProve(
	config Config,
	columns TreeVec[[]ProverColumn],
	sampledPoints TreeVec[[][]CirclePoint[QM31]],
) (*Proof, error) {
	ch := channel.New(DefaultHasher())
	prover, err := pcs.Commit(ch, merkle.Blake2sHasher{}, config, columns)
	if err != nil {
		return nil, wrap(ErrProofGeneration, "commit failed", err)
	}
	proof, err := prover.ProveValues(ch, sampledPoints)
	if err != nil {
		return nil, wrap(ErrProofGeneration, "opening proof failed", err)
	}
	return proof, nil
}

// VerifyCommitment replays CommitAndProve's transcript against shape (the
// declared per-tree, per-column log sizes) and proof, rejecting any
// divergence: a tampered out-of-domain value, a tampered queried value, a
// tampered Merkle witness, or a FRI inconsistency.
func VerifyCommitment(
	config Config,
	shape TreeVec[[]int],
	proof *Proof,
	sampledPoints TreeVec[[][]CirclePoint[QM31]],
) error {
	ch := channel.New(DefaultHasher())
	verifier, err := pcs.CommitVerifier(ch, merkle.Blake2sHasher{}, config, shape, proof)
	if err != nil {
		return wrap(ErrProofVerification, "verifier commit failed", err)
	}
	if err := verifier.Verify(ch, proof, sampledPoints); err != nil {
		return wrap(ErrProofVerification, "verification rejected the proof", err)
	}
	return nil
}

// NewColumn builds a ProverColumn from its natural (un-extended) log size
// and base-field coefficients, bit-reversed-order free: callers supply
// coefficients in standard (non-evaluation) order.
func NewColumn(logSize int, coeffs []M31) ProverColumn {
	return ProverColumn{LogSize: logSize, Coeffs: circle.NewCircleCoefficients(coeffs)}
}
