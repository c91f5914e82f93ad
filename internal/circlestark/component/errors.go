// Package component defines the small interface external collaborators
// (example AIRs and their expression-level constraint framework, both out
// of scope here) use to drive the core proving/verifying engine, plus the
// generic containers that interface leans on: TreeVec and the
// point-sample batching used by quotient construction.
package component

import "fmt"

// Kind enumerates this package's closed error kinds.
type Kind int

const (
	// KindShapeMismatch reports a TreeVec operation over vectors whose
	// tree counts disagree where they are required to match exactly.
	KindShapeMismatch Kind = iota
	// KindDuplicateTreeIndex reports two entries claiming the same tree
	// index when building a TreeVec from explicitly indexed entries.
	KindDuplicateTreeIndex
	// KindInvalidSubTreeSpan reports an out-of-range or inverted
	// [start, end) span passed to TreeVec.Span, or a gap left by
	// NewTreeVecFromIndexed.
	KindInvalidSubTreeSpan
	// KindStatementNotSatisfied reports a component whose public
	// statement does not match its computed composition value.
	KindStatementNotSatisfied
)

// Error is the typed error returned by component/TreeVec operations.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("component: %s: %s", e.Op, e.Msg)
	}
	switch e.Kind {
	case KindShapeMismatch:
		return fmt.Sprintf("component: %s: tree counts do not match", e.Op)
	case KindDuplicateTreeIndex:
		return fmt.Sprintf("component: %s: duplicate tree index", e.Op)
	case KindInvalidSubTreeSpan:
		return fmt.Sprintf("component: %s: invalid sub-tree span", e.Op)
	case KindStatementNotSatisfied:
		return fmt.Sprintf("component: %s: statement does not match composition value", e.Op)
	default:
		return fmt.Sprintf("component: error in %s", e.Op)
	}
}
