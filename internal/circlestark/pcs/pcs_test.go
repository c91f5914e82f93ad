package pcs

import (
	"testing"

	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
)

func testConfig() Config {
	return Config{
		PowBits: 0,
		Fri:     fri.Config{LogBlowupFactor: 1, LogLastLayerDegreeBound: 0, NQueries: 3},
	}
}

func oneColumnSetup() (component.TreeVec[[]ProverColumn], component.TreeVec[[][]circle.CirclePoint[m31.QM31]], component.TreeVec[[]int]) {
	col := ProverColumn{LogSize: 2, Coeffs: circle.NewCircleCoefficients([]m31.M31{1, 2, 3, 4})}
	columns := component.TreeVec[[]ProverColumn]{Trees: [][]ProverColumn{{col}}}
	sampledPoints := component.TreeVec[[][]circle.CirclePoint[m31.QM31]]{
		Trees: [][][]circle.CirclePoint[m31.QM31]{{{circle.SecureFieldCircleGen}}},
	}
	shape := component.TreeVec[[]int]{Trees: [][]int{{2}}}
	return columns, sampledPoints, shape
}

func proveRoundTrip(t *testing.T) (*Proof, component.TreeVec[[][]circle.CirclePoint[m31.QM31]], component.TreeVec[[]int]) {
	t.Helper()
	config := testConfig()
	columns, sampledPoints, shape := oneColumnSetup()

	proverCh := channel.New(channel.Blake2sHash{})
	prover, err := Commit(proverCh, merkle.Blake2sHasher{}, config, columns)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	proof, err := prover.ProveValues(proverCh, sampledPoints)
	if err != nil {
		t.Fatalf("ProveValues: %v", err)
	}
	return proof, sampledPoints, shape
}

func TestPCSRoundTripAccepts(t *testing.T) {
	proof, sampledPoints, shape := proveRoundTrip(t)
	config := testConfig()

	verifierCh := channel.New(channel.Blake2sHash{})
	verifier, err := CommitVerifier(verifierCh, merkle.Blake2sHasher{}, config, shape, proof)
	if err != nil {
		t.Fatalf("verifier Commit: %v", err)
	}
	if err := verifier.Verify(verifierCh, proof, sampledPoints); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
}

func TestPCSRejectsTamperedOodValue(t *testing.T) {
	proof, sampledPoints, shape := proveRoundTrip(t)
	config := testConfig()

	proof.OodValues.Trees[0][0][0] = proof.OodValues.Trees[0][0][0].Add(m31.QM31One)

	verifierCh := channel.New(channel.Blake2sHash{})
	verifier, err := CommitVerifier(verifierCh, merkle.Blake2sHasher{}, config, shape, proof)
	if err != nil {
		t.Fatalf("verifier Commit: %v", err)
	}
	if err := verifier.Verify(verifierCh, proof, sampledPoints); err == nil {
		t.Fatal("expected rejection of a tampered out-of-domain value")
	}
}

func TestPCSRejectsTamperedQueriedValue(t *testing.T) {
	proof, sampledPoints, shape := proveRoundTrip(t)
	config := testConfig()

	if len(proof.QueriedValues) == 0 || len(proof.QueriedValues[0]) == 0 {
		t.Fatal("expected at least one queried column")
	}
	proof.QueriedValues[0][0][0] = proof.QueriedValues[0][0][0].Add(m31.One)

	verifierCh := channel.New(channel.Blake2sHash{})
	verifier, err := CommitVerifier(verifierCh, merkle.Blake2sHasher{}, config, shape, proof)
	if err != nil {
		t.Fatalf("verifier Commit: %v", err)
	}
	if err := verifier.Verify(verifierCh, proof, sampledPoints); err == nil {
		t.Fatal("expected rejection of a tampered queried value")
	}
}

func TestPCSCommitRejectsShapeMismatch(t *testing.T) {
	config := testConfig()
	columns := component.TreeVec[[]ProverColumn]{Trees: [][]ProverColumn{{
		{LogSize: 2, Coeffs: circle.NewCircleCoefficients([]m31.M31{1, 2, 3, 4})},
		{LogSize: 3, Coeffs: circle.NewCircleCoefficients([]m31.M31{1, 2, 3, 4, 5, 6, 7, 8})},
	}}}
	ch := channel.New(channel.Blake2sHash{})
	_, err := Commit(ch, merkle.Blake2sHasher{}, config, columns)
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindShapeMismatch {
		t.Fatalf("expected KindShapeMismatch, got %v", err)
	}
}

func TestVerifierCommitRejectsWrongRootCount(t *testing.T) {
	proof, _, shape := proveRoundTrip(t)
	config := testConfig()
	proof.TreeRoots = append(proof.TreeRoots, proof.TreeRoots[0])

	ch := channel.New(channel.Blake2sHash{})
	_, err := CommitVerifier(ch, merkle.Blake2sHasher{}, config, shape, proof)
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindInvalidStructure {
		t.Fatalf("expected KindInvalidStructure, got %v", err)
	}
}

func TestComplexConjugateLineCoeffsRejectsRealPoint(t *testing.T) {
	realPoint := circle.CirclePoint[m31.QM31]{
		X: m31.FromM31(m31.M31(2)),
		Y: m31.FromM31(m31.M31(3)),
	}
	_, err := complexConjugateLineCoeffs(realPoint, m31.QM31One, m31.QM31One)
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindDegenerateLine {
		t.Fatalf("expected KindDegenerateLine, got %v", err)
	}
}
