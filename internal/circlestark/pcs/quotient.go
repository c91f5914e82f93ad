package pcs

import (
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// lineCoeffs is the (a, b, c) of the complex-conjugate line trick: the
// unique pair (a, b) such that a*p.Y + b equals coeff*value at the sample
// point and the QM31-conjugate of that equality holds at the conjugate
// point, paired with c = coeff itself. Evaluating (a*domain_y + b) at a
// domain point and comparing it against c*queried_value lets every sample
// of a batch share one denominator inversion, since the line's zero set is
// exactly the sample point and its conjugate.
type lineCoeffs struct {
	A, B, C m31.QM31
}

// complexConjugateLineCoeffs derives lineCoeffs for one sampled (point,
// value) pair scaled by coeff. It fails when point.Y already lies in the
// conjugation-fixed subfield (point.Y equals its own conjugate), since then
// no non-degenerate line separates the point from its conjugate.
func complexConjugateLineCoeffs(point circle.CirclePoint[m31.QM31], value, coeff m31.QM31) (lineCoeffs, error) {
	y1 := point.Y
	y2 := y1.Conjugate()
	denom := y1.Sub(y2)
	if denom.IsZero() {
		return lineCoeffs{}, &Error{Kind: KindDegenerateLine, Op: "complexConjugateLineCoeffs"}
	}
	denomInv, err := denom.Inv()
	if err != nil {
		return lineCoeffs{}, &Error{Kind: KindDegenerateLine, Op: "complexConjugateLineCoeffs"}
	}
	target1 := value.Mul(coeff)
	target2 := target1.Conjugate()
	a := target1.Sub(target2).Mul(denomInv)
	b := target1.Sub(a.Mul(y1))
	return lineCoeffs{A: a, B: b, C: coeff}, nil
}

// batchDenominators evaluates, for every row of the domain (bit-reversed
// order, matching the stored column evaluations), the shared denominator
// d_B of a ColumnSampleBatch at point: the implicit line through point's
// two CM31 coordinate components and its conjugate, determinant-style so
// it depends only on point and the domain point, never on any value.
func batchDenominators(point circle.CirclePoint[m31.QM31], domain circle.CircleDomain, logSize int) []m31.QM31 {
	prx, pix := point.X.C0, point.X.C1
	pry, piy := point.Y.C0, point.Y.C1
	out := make([]m31.QM31, domain.Size())
	for row := range out {
		p := domain.At(circle.BitReverseIndex(row, logSize))
		dx := m31.CM31{A: p.X}
		dy := m31.CM31{A: p.Y}
		d := prx.Sub(dx).Mul(piy).Sub(pry.Sub(dy).Mul(pix))
		out[row] = m31.QM31{C0: d}
	}
	return out
}

// accumulateBatchNumerator adds, for every row, c*queried_value -
// (a*domain_y + b) for one sample entry into acc.
func accumulateBatchNumerator(acc []m31.QM31, coeffs lineCoeffs, column []m31.M31, domain circle.CircleDomain, logSize int) {
	for row := range acc {
		p := domain.At(circle.BitReverseIndex(row, logSize))
		domainY := m31.FromM31(p.Y)
		line := coeffs.A.Mul(domainY).Add(coeffs.B)
		acc[row] = acc[row].Add(coeffs.C.MulM31(column[row]).Sub(line))
	}
}

// accumulateQuotients builds the secure-field quotient column FRI commits
// to: for every ColumnSampleBatch, the batch's numerator (summed across its
// sample entries) divided by its shared denominator, accumulated across
// batches. columnsByGlobalIndex maps a SampleEntry.ColumnIndex back to the
// evaluation column (bit-reversed, over domain) it samples.
func accumulateQuotients(batches []component.ColumnSampleBatch, columnsByGlobalIndex [][]m31.M31, domain circle.CircleDomain) ([]m31.QM31, error) {
	logSize := domain.LogSize()
	size := domain.Size()
	quotient := make([]m31.QM31, size)

	for _, batch := range batches {
		numerator := make([]m31.QM31, size)
		for _, entry := range batch.Samples {
			coeffs, err := complexConjugateLineCoeffs(batch.Point, entry.Value, entry.RandomCoeff)
			if err != nil {
				return nil, err
			}
			accumulateBatchNumerator(numerator, coeffs, columnsByGlobalIndex[entry.ColumnIndex], domain, logSize)
		}
		denom := batchDenominators(batch.Point, domain, logSize)
		denomInv, err := m31.BatchInverseQM31(denom)
		if err != nil {
			return nil, &Error{Kind: KindDegenerateLine, Op: "accumulateQuotients", Msg: "denominator vanishes on domain"}
		}
		for row := range quotient {
			quotient[row] = quotient[row].Add(numerator[row].Mul(denomInv[row]))
		}
	}
	return quotient, nil
}
