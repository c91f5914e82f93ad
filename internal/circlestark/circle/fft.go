package circle

import "github.com/vybium/circle-stark/internal/circlestark/m31"

// CircleCoefficients is a polynomial in the circle-FFT basis: a
// length-2^LogSize vector of M31 coefficients in natural (non-bit-reversed)
// order.
type CircleCoefficients struct {
	Coeffs []m31.M31
}

// NewCircleCoefficients wraps coeffs, whose length must be a non-zero power
// of two.
func NewCircleCoefficients(coeffs []m31.M31) CircleCoefficients {
	return CircleCoefficients{Coeffs: coeffs}
}

// LogSize returns log2(len(Coeffs)).
func (p CircleCoefficients) LogSize() int {
	n := len(p.Coeffs)
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// Evaluate evaluates p on every point of domain, returning base-field values
// in bit-reversed order. It builds a fresh TwiddleTree rooted at domain's
// half coset.
func (p CircleCoefficients) Evaluate(domain CircleDomain) []m31.M31 {
	tree := NewTwiddleTree(domain.HalfCoset)
	vals, _ := p.EvaluateWithTwiddles(domain, tree)
	return vals
}

// EvaluateWithTwiddles evaluates p using a precomputed TwiddleTree. domain's
// half coset must equal tree's root coset.
func (p CircleCoefficients) EvaluateWithTwiddles(domain CircleDomain, tree *TwiddleTree) ([]m31.M31, error) {
	if domain.HalfCoset.LogSize != tree.RootCoset.LogSize ||
		domain.HalfCoset.InitialIndex != tree.RootCoset.InitialIndex ||
		domain.HalfCoset.StepIndex != tree.RootCoset.StepIndex {
		return nil, &Error{Kind: KindTwiddleMismatch, Op: "CircleCoefficients.EvaluateWithTwiddles"}
	}
	n := domain.LogSize()
	natural := evaluateNatural(p.Coeffs, tree)
	vals := make([]m31.M31, len(natural))
	for i := range vals {
		vals[i] = natural[BitReverseIndex(i, n)]
	}
	return vals, nil
}

// evaluateNatural is the forward circle FFT in natural domain order: one
// circle (y) fold at the top, then the line (x) fold recursion.
func evaluateNatural(coeffs []m31.M31, tree *TwiddleTree) []m31.M31 {
	n := len(coeffs)
	if n == 1 {
		return []m31.M31{coeffs[0]}
	}
	half := n / 2
	evalsEven := evaluateNaturalLine(coeffs[:half], tree, 0)
	evalsOdd := evaluateNaturalLine(coeffs[half:], tree, 0)
	out := make([]m31.M31, n)
	y := tree.YLayer
	for k := 0; k < half; k++ {
		t := y[k].Mul(evalsOdd[k])
		out[k] = evalsEven[k].Add(t)
		out[half+k] = evalsEven[k].Sub(t)
	}
	return out
}

// evaluateNaturalLine is the forward FFT on a line (x-only) domain, reading
// twiddles from tree.XLayers starting at XLayers[depth].
func evaluateNaturalLine(coeffs []m31.M31, tree *TwiddleTree, depth int) []m31.M31 {
	n := len(coeffs)
	if n == 1 {
		return []m31.M31{coeffs[0]}
	}
	half := n / 2
	evalsEven := evaluateNaturalLine(coeffs[:half], tree, depth+1)
	evalsOdd := evaluateNaturalLine(coeffs[half:], tree, depth+1)
	out := make([]m31.M31, n)
	x := tree.XLayers[depth]
	for k := 0; k < half; k++ {
		t := x[k].Mul(evalsOdd[k])
		out[k] = evalsEven[k].Add(t)
		out[half+k] = evalsEven[k].Sub(t)
	}
	return out
}

// InterpolateFromEvaluation is the inverse of Evaluate: values are in
// bit-reversed order, the result is CircleCoefficients in natural order.
func InterpolateFromEvaluation(values []m31.M31, domain CircleDomain) CircleCoefficients {
	tree := NewTwiddleTree(domain.HalfCoset)
	p, _ := InterpolateFromEvaluationWithTwiddles(values, domain, tree)
	return p
}

// InterpolateFromEvaluationWithTwiddles is the twiddle-tree-backed inverse
// FFT. It divides by N once at the end rather than per layer.
func InterpolateFromEvaluationWithTwiddles(values []m31.M31, domain CircleDomain, tree *TwiddleTree) (CircleCoefficients, error) {
	if domain.HalfCoset.LogSize != tree.RootCoset.LogSize ||
		domain.HalfCoset.InitialIndex != tree.RootCoset.InitialIndex ||
		domain.HalfCoset.StepIndex != tree.RootCoset.StepIndex {
		return CircleCoefficients{}, &Error{Kind: KindTwiddleMismatch, Op: "InterpolateFromEvaluationWithTwiddles"}
	}
	n := domain.LogSize()
	natural := make([]m31.M31, len(values))
	for i, v := range values {
		natural[BitReverseIndex(i, n)] = v
	}
	coeffs := interpolateNatural(natural, tree)
	invN, err := m31.FromU64(uint64(len(values))).Inv()
	if err != nil {
		return CircleCoefficients{}, &Error{Kind: KindLogSizeZero, Op: "InterpolateFromEvaluationWithTwiddles", Msg: "empty domain"}
	}
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(invN)
	}
	return CircleCoefficients{Coeffs: coeffs}, nil
}

func interpolateNatural(natural []m31.M31, tree *TwiddleTree) []m31.M31 {
	n := len(natural)
	if n == 1 {
		return []m31.M31{natural[0]}
	}
	half := n / 2
	e := make([]m31.M31, half)
	o := make([]m31.M31, half)
	yinv := tree.YLayerInv
	for k := 0; k < half; k++ {
		fp, fpc := natural[k], natural[half+k]
		e[k] = fp.Add(fpc)
		o[k] = yinv[k].Mul(fp.Sub(fpc))
	}
	ecoef := interpolateLineNatural(e, tree, 0)
	ocoef := interpolateLineNatural(o, tree, 0)
	return append(ecoef, ocoef...)
}

func interpolateLineNatural(values []m31.M31, tree *TwiddleTree, depth int) []m31.M31 {
	n := len(values)
	if n == 1 {
		return []m31.M31{values[0]}
	}
	half := n / 2
	e := make([]m31.M31, half)
	o := make([]m31.M31, half)
	xinv := tree.XLayersInv[depth]
	for k := 0; k < half; k++ {
		fp, fpc := values[k], values[half+k]
		e[k] = fp.Add(fpc)
		o[k] = xinv[k].Mul(fp.Sub(fpc))
	}
	ecoef := interpolateLineNatural(e, tree, depth+1)
	ocoef := interpolateLineNatural(o, tree, depth+1)
	return append(ecoef, ocoef...)
}

// SplitAtMid splits p's coefficients into their even- and odd-indexed
// entries, satisfying p(z) = left(z) + pi^(L-2)(z.x) * right(z) where pi is
// DoubleX applied L-2 times and L is p's log size.
func (p CircleCoefficients) SplitAtMid() (left, right CircleCoefficients) {
	n := len(p.Coeffs)
	leftCoeffs := make([]m31.M31, 0, n/2)
	rightCoeffs := make([]m31.M31, 0, n/2)
	for i, c := range p.Coeffs {
		if i%2 == 0 {
			leftCoeffs = append(leftCoeffs, c)
		} else {
			rightCoeffs = append(rightCoeffs, c)
		}
	}
	return CircleCoefficients{Coeffs: leftCoeffs}, CircleCoefficients{Coeffs: rightCoeffs}
}

// EvalAtSecurePoint evaluates p (a base-field coordinate polynomial) at an
// out-of-domain QM31 point, the path PCS proveValues uses when stored
// coefficients are available.
func (p CircleCoefficients) EvalAtSecurePoint(point CirclePoint[m31.QM31]) m31.QM31 {
	return EvalAtPoint(p.Coeffs, point, embedM31ToQM31)
}

// EvalAtPoint evaluates p at an arbitrary point (on or off the evaluation
// domain) in the field E, using the iterative factor schedule (y, x,
// 2x^2-1, ...) folded right-to-left over the coefficients.
func EvalAtPoint[E Scalar[E]](coeffs []m31.M31, point CirclePoint[E], embed func(m31.M31) E) E {
	n := len(coeffs)
	logSize := 0
	for n > 1 {
		n >>= 1
		logSize++
	}
	factors := make([]E, logSize)
	if logSize > 0 {
		factors[0] = point.Y
	}
	if logSize > 1 {
		factors[1] = point.X
	}
	one := embed(m31.One)
	curX := point.X
	for k := 2; k < logSize; k++ {
		curX = doubleXGeneric(curX, one)
		factors[k] = curX
	}
	cur := make([]E, len(coeffs))
	for i, c := range coeffs {
		cur[i] = embed(c)
	}
	for k := logSize - 1; k >= 0; k-- {
		half := len(cur) / 2
		next := make([]E, half)
		f := factors[k]
		for i := 0; i < half; i++ {
			next[i] = cur[2*i].Add(f.Mul(cur[2*i+1]))
		}
		cur = next
	}
	if len(cur) == 0 {
		var zero E
		return zero
	}
	return cur[0]
}

// doubleXGeneric computes 2x^2-1 over a field E whose own constraint does
// not expose a multiplicative identity; one must be embed(m31.One).
func doubleXGeneric[E Scalar[E]](x E, one E) E {
	sq := x.Mul(x)
	return sq.Add(sq).Sub(one)
}
