// Package fri implements the FRI low-degree test: an initial circle-to-line
// fold followed by repeated line-to-line folds, each committed to a lifted
// Merkle tree, terminating in an explicit last-layer polynomial whose high
// coefficients are checked to vanish.
package fri

import "fmt"

// Kind enumerates this package's closed error kinds.
type Kind int

const (
	// KindNotCanonicDomain reports a prover Commit call whose domain is not
	// a canonic circle domain.
	KindNotCanonicDomain Kind = iota
	// KindShapeMismatch reports a column length that does not match its
	// domain, or a query/value slice whose length disagrees with what the
	// surrounding step expects.
	KindShapeMismatch
	// KindInvalidLastLayerSize reports a folded last-layer evaluation column
	// whose length differs from config.LastLayerDomainSize(); since folding
	// continues while the column is longer, this means it came out shorter.
	KindInvalidLastLayerSize
	// KindInvalidLastLayerDegree reports a prover-side last layer whose
	// interpolated coefficients above the degree bound are nonzero.
	KindInvalidLastLayerDegree
	// KindQueryOutOfRange reports a query position at or beyond a layer's
	// column length.
	KindQueryOutOfRange
	// KindFoldStepTooLarge reports a fold step at or beyond the machine
	// word width.
	KindFoldStepTooLarge
	// KindInvalidNumFriLayers reports a verifier-supplied proof whose inner
	// layer count does not match what the claimed degree bound predicts.
	KindInvalidNumFriLayers
	// KindLastLayerDegreeInvalid reports a verifier-side last-layer
	// coefficient count exceeding 2^log_last_layer_degree_bound.
	KindLastLayerDegreeInvalid
	// KindLastLayerEvaluationsInvalid reports a last-layer evaluation that
	// does not match the committed last-layer polynomial.
	KindLastLayerEvaluationsInvalid
	// KindInnerLayerEvaluationsInvalid reports a folded value mismatch at
	// an inner FRI layer.
	KindInnerLayerEvaluationsInvalid
	// KindInnerLayerCommitmentInvalid reports a Merkle verification
	// failure at an inner FRI layer.
	KindInnerLayerCommitmentInvalid
)

// Error is the typed error returned by fri operations.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("fri: %s: %s", e.Op, e.Msg)
	}
	switch e.Kind {
	case KindNotCanonicDomain:
		return fmt.Sprintf("fri: %s: domain is not canonic", e.Op)
	case KindShapeMismatch:
		return fmt.Sprintf("fri: %s: shape mismatch", e.Op)
	case KindInvalidLastLayerSize:
		return fmt.Sprintf("fri: %s: last layer evaluation column does not match the last layer domain size", e.Op)
	case KindInvalidLastLayerDegree:
		return fmt.Sprintf("fri: %s: last layer exceeds claimed degree bound", e.Op)
	case KindQueryOutOfRange:
		return fmt.Sprintf("fri: %s: query position out of range", e.Op)
	case KindFoldStepTooLarge:
		return fmt.Sprintf("fri: %s: fold step too large", e.Op)
	case KindInvalidNumFriLayers:
		return fmt.Sprintf("fri: %s: unexpected number of FRI layers", e.Op)
	case KindLastLayerDegreeInvalid:
		return fmt.Sprintf("fri: %s: last layer polynomial exceeds degree bound", e.Op)
	case KindLastLayerEvaluationsInvalid:
		return fmt.Sprintf("fri: %s: last layer evaluation does not match polynomial", e.Op)
	case KindInnerLayerEvaluationsInvalid:
		return fmt.Sprintf("fri: %s: inner layer folded value mismatch", e.Op)
	case KindInnerLayerCommitmentInvalid:
		return fmt.Sprintf("fri: %s: inner layer Merkle verification failed", e.Op)
	default:
		return fmt.Sprintf("fri: error in %s", e.Op)
	}
}
