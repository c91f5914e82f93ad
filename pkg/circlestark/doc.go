// Package circlestark is the public API surface over the internal Circle
// STARK engine: a polynomial commitment scheme over the Mersenne-31 circle
// domain, FRI as its low-degree test, and a Fiat-Shamir channel driving
// both.
//
// # Quick start
//
// Proving and verifying the trivial constant-sum statement (§8 scenario A):
//
//	stmt := circlestark.Statement{XAxisClaimedSum: x, YAxisClaimedSum: y}
//	prover := circlestark.NewConstantProver(circlestark.DefaultConfig())
//	proof, err := prover.Prove(stmt, expected)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	verifier := circlestark.NewConstantVerifier(circlestark.DefaultConfig())
//	if err := verifier.Verify(proof, stmt, expected); err != nil {
//		log.Fatal(err)
//	}
//
// Proving and verifying an opened commitment to a column of evaluations
// uses CommitAndProve and VerifyCommitment; see commitment.go.
//
// # Architecture
//
// - internal/circlestark/: the engine (not importable outside this module)
// - pkg/circlestark/: this package, a stable wrapper over it
//
// Implementation details inside internal/ can change without breaking this
// package's API.
package circlestark
