package circle

import "github.com/vybium/circle-stark/internal/circlestark/m31"

// CircleToLineFoldStep and FoldStep are the fixed fold widths this
// implementation supports: one circle-domain layer folds into one
// line-domain layer per step.
const (
	CircleToLineFoldStep = 1
	FoldStep             = 1
)

// LineDomain is { p.X : p in coset }, the domain FRI folds onto after the
// initial circle-to-line step.
type LineDomain struct {
	Coset Coset
}

// NewLineDomain wraps a coset as a line domain.
func NewLineDomain(coset Coset) LineDomain {
	return LineDomain{Coset: coset}
}

// LogSize returns the underlying coset's log size.
func (d LineDomain) LogSize() int {
	return d.Coset.LogSize
}

// Size returns 2^LogSize.
func (d LineDomain) Size() int {
	return d.Coset.Size()
}

// At returns the i-th domain point's x-coordinate, in domain (not
// bit-reversed) order.
func (d LineDomain) At(i int) m31.M31 {
	return d.Coset.At(i).X
}

// Double returns the domain obtained by doubling the underlying coset,
// which FRI's line->line fold recurses onto.
func (d LineDomain) Double() LineDomain {
	return LineDomain{Coset: d.Coset.Double()}
}

// LinePoly is a univariate polynomial over QM31 in ordered coefficients,
// the representation used for the FRI last layer.
type LinePoly struct {
	Coeffs []m31.QM31
}

// NewLinePoly wraps coeffs, whose length must be a power of two.
func NewLinePoly(coeffs []m31.QM31) LinePoly {
	return LinePoly{Coeffs: coeffs}
}

// LogSize returns log2(len(Coeffs)).
func (p LinePoly) LogSize() int {
	n := len(p.Coeffs)
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// EvalAtPoint evaluates p at an arbitrary x (any QM31, on or off the
// domain), folding coefficients with the factor schedule (x, doubleX(x),
// doubleX(doubleX(x)), ...): each recursion level of interpolateLineRec
// doubles its coset, and coset doubling carries x to 2x^2-1, so the dual
// fold must advance x the same way rather than by squaring it.
func (p LinePoly) EvalAtPoint(x m31.QM31) m31.QM31 {
	n := p.LogSize()
	factors := make([]m31.QM31, n)
	if n > 0 {
		factors[0] = x
	}
	curX := x
	for k := 1; k < n; k++ {
		curX = doubleXQM31(curX)
		factors[k] = curX
	}
	cur := make([]m31.QM31, len(p.Coeffs))
	copy(cur, p.Coeffs)
	for k := n - 1; k >= 0; k-- {
		half := len(cur) / 2
		next := make([]m31.QM31, half)
		f := factors[k]
		for i := 0; i < half; i++ {
			next[i] = cur[2*i].Add(f.Mul(cur[2*i+1]))
		}
		cur = next
	}
	if len(cur) == 0 {
		return m31.QM31Zero
	}
	return cur[0]
}

// doubleXQM31 computes 2x^2-1 over QM31, the same doubling map DoubleX
// applies over M31.
func doubleXQM31(x m31.QM31) m31.QM31 {
	sq := x.Mul(x)
	return sq.Add(sq).Sub(m31.QM31One)
}

// interpolateLine is the QM31 analogue of interpolateLineNatural, used to
// turn the FRI last layer's bit-reversed evaluations into a LinePoly.
func interpolateLine(values []m31.QM31, domain LineDomain) []m31.QM31 {
	n := domain.LogSize()
	natural := make([]m31.QM31, len(values))
	for i, v := range values {
		natural[BitReverseIndex(i, n)] = v
	}
	coeffs := interpolateLineRec(natural, domain)
	invN, err := m31.FromU64(uint64(len(values))).Inv()
	if err != nil {
		return coeffs
	}
	invNq := m31.FromM31(invN)
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(invNq)
	}
	return coeffs
}

func interpolateLineRec(values []m31.QM31, domain LineDomain) []m31.QM31 {
	n := len(values)
	if n == 1 {
		return []m31.QM31{values[0]}
	}
	half := n / 2
	e := make([]m31.QM31, half)
	o := make([]m31.QM31, half)
	for k := 0; k < half; k++ {
		fp, fpc := values[k], values[half+k]
		x := domain.At(k)
		xinv, err := x.Inv()
		if err != nil {
			panic(err)
		}
		e[k] = fp.Add(fpc)
		o[k] = fp.Sub(fpc).MulM31(xinv)
	}
	ecoef := interpolateLineRec(e, domain.Double())
	ocoef := interpolateLineRec(o, domain.Double())
	return append(ecoef, ocoef...)
}

// InterpolateLine interpolates a bit-reversed-order evaluation column on
// domain into a LinePoly.
func InterpolateLine(values []m31.QM31, domain LineDomain) LinePoly {
	return LinePoly{Coeffs: interpolateLine(values, domain)}
}

// FoldCircleIntoLine consumes a circle-domain secure column (QM31 values in
// bit-reversed order matching circleDomain) and returns a line-domain secure
// column half as large, folding conjugate pairs with randomness alpha.
func FoldCircleIntoLine(circleEvals []m31.QM31, circleDomain CircleDomain, alpha m31.QM31) ([]m31.QM31, LineDomain) {
	n := circleDomain.LogSize()
	half := len(circleEvals) / 2
	out := make([]m31.QM31, half)
	two := m31.One.Double()
	twoInv, err := two.Inv()
	if err != nil {
		panic(err)
	}
	twoInvQ := m31.FromM31(twoInv)
	for m := 0; m < half; m++ {
		f0, f1 := circleEvals[2*m], circleEvals[2*m+1]
		p0 := circleDomain.At(BitReverseIndex(2*m, n))
		yInv, err := p0.Y.Inv()
		if err != nil {
			panic(err)
		}
		fe := f0.Add(f1).Mul(twoInvQ)
		fo := f0.Sub(f1).MulM31(yInv).Mul(twoInvQ)
		out[m] = fe.Add(alpha.Mul(fo))
	}
	return out, NewLineDomain(circleDomain.HalfCoset)
}

// FoldLine halves a line-domain secure column using randomness alpha,
// pairing antipodal (x, -x) points.
func FoldLine(lineEvals []m31.QM31, domain LineDomain, alpha m31.QM31) ([]m31.QM31, LineDomain) {
	k := domain.LogSize()
	half := len(lineEvals) / 2
	out := make([]m31.QM31, half)
	two := m31.One.Double()
	twoInv, err := two.Inv()
	if err != nil {
		panic(err)
	}
	twoInvQ := m31.FromM31(twoInv)
	for m := 0; m < half; m++ {
		f0, f1 := lineEvals[2*m], lineEvals[2*m+1]
		x := domain.At(BitReverseIndex(2*m, k))
		xInv, err := x.Inv()
		if err != nil {
			panic(err)
		}
		fe := f0.Add(f1).Mul(twoInvQ)
		fo := f0.Sub(f1).MulM31(xInv).Mul(twoInvQ)
		out[m] = fe.Add(alpha.Mul(fo))
	}
	return out, domain.Double()
}
