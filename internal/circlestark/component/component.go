package component

import (
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// Component is the contract a constraint system exposes to the core
// engine. Example AIRs and their expression-level constraint framework
// implement it; the engine only ever consumes components through this
// interface.
type Component interface {
	NConstraints() int
	MaxConstraintLogDegreeBound() uint32
	// TraceLogDegreeBounds returns, per tree, per column, the column's log
	// degree bound.
	TraceLogDegreeBounds() TreeVec[[]uint32]
	// MaskPoints returns, per tree, per column, the sampled points the
	// component's mask needs at the given out-of-domain point.
	MaskPoints(point circle.CirclePoint[m31.QM31], liftingLogSize int) TreeVec[[][]circle.CirclePoint[m31.QM31]]
	PreprocessedColumnIndices() []int
	// EvaluateConstraintQuotientsAtPoint folds every constraint's
	// evaluation at point (given the mask values sampled there) into acc.
	EvaluateConstraintQuotientsAtPoint(point circle.CirclePoint[m31.QM31], maskValues TreeVec[[][]m31.QM31], acc *EvaluationAccumulator, liftingLogSize int)
}

// ProverComponent additionally exposes the domain-wide evaluation path a
// prover uses to build the composition column directly from the trace,
// without going through out-of-domain sampling.
type ProverComponent interface {
	Component
	EvaluateConstraintQuotientsOnDomain(trace TreeVec[[]m31.M31], acc *DomainEvaluationAccumulator)
}

// EvaluationAccumulator folds successive constraint evaluations into one
// QM31 using increasing powers of a random coefficient, so unrelated
// constraints cannot cancel each other out except with negligible
// probability.
type EvaluationAccumulator struct {
	randomCoeff m31.QM31
	power       m31.QM31
	total       m31.QM31
}

// NewEvaluationAccumulator starts an accumulator at power 0 of randomCoeff.
func NewEvaluationAccumulator(randomCoeff m31.QM31) *EvaluationAccumulator {
	return &EvaluationAccumulator{randomCoeff: randomCoeff, power: m31.QM31One}
}

// Accumulate folds v in at the accumulator's current power, then advances
// the power by one more factor of randomCoeff.
func (a *EvaluationAccumulator) Accumulate(v m31.QM31) {
	a.total = a.total.Add(a.power.Mul(v))
	a.power = a.power.Mul(a.randomCoeff)
}

// Finalize returns the accumulated composition value.
func (a *EvaluationAccumulator) Finalize() m31.QM31 {
	return a.total
}

// DomainEvaluationAccumulator is EvaluationAccumulator's domain-wide
// counterpart: each AccumulateColumn call folds one base-field column
// (one value per domain point) into a running QM31 column at the
// accumulator's current power.
type DomainEvaluationAccumulator struct {
	randomCoeff m31.QM31
	power       m31.QM31
	column      []m31.QM31
}

// NewDomainEvaluationAccumulator allocates a zero column of the given
// domain size.
func NewDomainEvaluationAccumulator(randomCoeff m31.QM31, domainSize int) *DomainEvaluationAccumulator {
	return &DomainEvaluationAccumulator{
		randomCoeff: randomCoeff,
		power:       m31.QM31One,
		column:      make([]m31.QM31, domainSize),
	}
}

// AccumulateColumn folds vals (one base-field value per domain point) into
// the running column at the accumulator's current power, then advances.
func (a *DomainEvaluationAccumulator) AccumulateColumn(vals []m31.M31) {
	for i, v := range vals {
		a.column[i] = a.column[i].Add(a.power.MulM31(v))
	}
	a.power = a.power.Mul(a.randomCoeff)
}

// Finalize returns the accumulated composition column.
func (a *DomainEvaluationAccumulator) Finalize() []m31.QM31 {
	return a.column
}
