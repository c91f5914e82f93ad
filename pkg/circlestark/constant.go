package circlestark

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/component"
)

// ConstantProof attests that a Statement's claimed sums add up to the
// expected constant, under proof-of-work grinding driven by a channel
// seeded from the statement itself (§8 scenario A never touches the PCS:
// ConstantComponent has zero trace columns and zero mask points).
type ConstantProof struct {
	Nonce uint64
}

// ConstantProver proves and ConstantVerifier verifies §8 scenario A's
// trivial constant-column statement.
type ConstantProver struct {
	config Config
	hasher channel.Hasher
}

// NewConstantProver builds a ConstantProver over config's PoW difficulty,
// using the default Blake2s channel hasher.
func NewConstantProver(config Config) *ConstantProver {
	return &ConstantProver{config: config, hasher: DefaultHasher()}
}

func mixConstantStatement(ch *channel.Channel, stmt Statement, expected QM31) {
	ch.MixFelts([]QM31{stmt.XAxisClaimedSum, stmt.YAxisClaimedSum, expected})
}

// Prove checks stmt against expected and, if satisfied, grinds a
// proof-of-work nonce over the mixed statement. A statement that does not
// satisfy the constant constraint never reaches the channel: it fails
// immediately with ErrInvalidProof.
func (p *ConstantProver) Prove(stmt Statement, expected QM31) (*ConstantProof, error) {
	c := component.NewConstantComponent(stmt, expected)
	if !c.Satisfied() {
		return nil, wrap(ErrInvalidProof, "statement does not satisfy the constant constraint",
			&component.Error{Kind: component.KindStatementNotSatisfied, Op: "ConstantProver.Prove"})
	}

	ch := channel.New(p.hasher)
	mixConstantStatement(ch, stmt, expected)
	nonce, err := ch.Grind(p.config.PowBits)
	if err != nil {
		return nil, wrap(ErrProofGeneration, "proof-of-work grind failed", err)
	}
	return &ConstantProof{Nonce: nonce}, nil
}

// ConstantVerifier verifies a ConstantProof.
type ConstantVerifier struct {
	config Config
	hasher channel.Hasher
}

// NewConstantVerifier builds a ConstantVerifier over config's PoW
// difficulty, using the default Blake2s channel hasher.
func NewConstantVerifier(config Config) *ConstantVerifier {
	return &ConstantVerifier{config: config, hasher: DefaultHasher()}
}

// Verify rejects a statement that does not satisfy the constant
// constraint (ErrInvalidProof) and rejects a proof whose nonce does not
// clear config.PowBits leading zero bits (ErrProofVerification) — the same
// two failure paths §8 scenario A names: flipping stmt1's claimed sum, or
// flipping a proof_of_work byte.
func (v *ConstantVerifier) Verify(proof *ConstantProof, stmt Statement, expected QM31) error {
	c := component.NewConstantComponent(stmt, expected)
	if !c.Satisfied() {
		return wrap(ErrInvalidProof, "statement does not satisfy the constant constraint",
			&component.Error{Kind: component.KindStatementNotSatisfied, Op: "ConstantVerifier.Verify"})
	}

	ch := channel.New(v.hasher)
	mixConstantStatement(ch, stmt, expected)
	if !ch.VerifyPowNonce(v.config.PowBits, proof.Nonce) {
		return wrap(ErrProofVerification, "proof-of-work nonce rejected", nil)
	}
	return nil
}
