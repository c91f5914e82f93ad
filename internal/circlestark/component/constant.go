package component

import (
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// Statement is the public input a ConstantComponent checks: two claimed
// sums whose total must equal a known constant.
type Statement struct {
	XAxisClaimedSum m31.QM31
	YAxisClaimedSum m31.QM31
}

// ConstantComponent is a single-constraint component with no trace
// columns: its one constraint asserts that Statement's two claimed sums
// add up to Expected. It exists to exercise the Component contract without
// pulling in an AIR or expression framework.
type ConstantComponent struct {
	Statement Statement
	Expected  m31.QM31
}

// NewConstantComponent builds a component checking stmt against expected.
func NewConstantComponent(stmt Statement, expected m31.QM31) *ConstantComponent {
	return &ConstantComponent{Statement: stmt, Expected: expected}
}

// CompositionValue returns the statement's claimed-sum total.
func (c *ConstantComponent) CompositionValue() m31.QM31 {
	return c.Statement.XAxisClaimedSum.Add(c.Statement.YAxisClaimedSum)
}

// Satisfied reports whether the composition value matches Expected.
func (c *ConstantComponent) Satisfied() bool {
	return c.CompositionValue() == c.Expected
}

// Check returns KindStatementNotSatisfied if the statement does not match
// the component's expected constant.
func (c *ConstantComponent) Check() error {
	if !c.Satisfied() {
		return &Error{Kind: KindStatementNotSatisfied, Op: "ConstantComponent.Check"}
	}
	return nil
}

func (c *ConstantComponent) NConstraints() int                   { return 1 }
func (c *ConstantComponent) MaxConstraintLogDegreeBound() uint32  { return 0 }
func (c *ConstantComponent) PreprocessedColumnIndices() []int     { return nil }
func (c *ConstantComponent) TraceLogDegreeBounds() TreeVec[[]uint32] {
	return TreeVec[[]uint32]{Trees: [][]uint32{{}}}
}

func (c *ConstantComponent) MaskPoints(circle.CirclePoint[m31.QM31], int) TreeVec[[][]circle.CirclePoint[m31.QM31]] {
	return TreeVec[[][]circle.CirclePoint[m31.QM31]]{Trees: [][][]circle.CirclePoint[m31.QM31]{{}}}
}

// EvaluateConstraintQuotientsAtPoint accumulates the constraint's one
// residual: the gap between the claimed composition value and Expected,
// which a satisfying proof drives to zero.
func (c *ConstantComponent) EvaluateConstraintQuotientsAtPoint(_ circle.CirclePoint[m31.QM31], _ TreeVec[[][]m31.QM31], acc *EvaluationAccumulator, _ int) {
	acc.Accumulate(c.CompositionValue().Sub(c.Expected))
}

// EvaluateConstraintQuotientsOnDomain folds the same residual into every
// domain point, since the constraint has no per-row trace dependency.
func (c *ConstantComponent) EvaluateConstraintQuotientsOnDomain(_ TreeVec[[]m31.M31], acc *DomainEvaluationAccumulator) {
	diff := c.CompositionValue().Sub(c.Expected)
	for i := range acc.column {
		acc.column[i] = acc.column[i].Add(acc.power.Mul(diff))
	}
	acc.power = acc.power.Mul(acc.randomCoeff)
}
