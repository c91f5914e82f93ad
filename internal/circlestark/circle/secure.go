package circle

import "github.com/vybium/circle-stark/internal/circlestark/m31"

// SecureCirclePoly is a degree-4 extension-field polynomial represented as
// four equal-log-size base-field coordinate polynomials, reassembled via
// m31.FromPartialEvals. All four share one cached TwiddleTree.
type SecureCirclePoly struct {
	Coords [4]CircleCoefficients
}

// NewSecureCirclePoly wraps four equal-length coordinate polynomials.
func NewSecureCirclePoly(coords [4]CircleCoefficients) SecureCirclePoly {
	return SecureCirclePoly{Coords: coords}
}

// LogSize returns the shared log size of the four coordinate polynomials.
func (p SecureCirclePoly) LogSize() int {
	return p.Coords[0].LogSize()
}

// EvaluateWithTwiddles evaluates all four coordinates on domain using one
// shared twiddle tree and recombines them into a QM31 column in
// bit-reversed order.
func (p SecureCirclePoly) EvaluateWithTwiddles(domain CircleDomain, tree *TwiddleTree) ([]m31.QM31, error) {
	var parts [4][]m31.M31
	for i, c := range p.Coords {
		v, err := c.EvaluateWithTwiddles(domain, tree)
		if err != nil {
			return nil, err
		}
		parts[i] = v
	}
	n := len(parts[0])
	out := make([]m31.QM31, n)
	for i := 0; i < n; i++ {
		out[i] = m31.FromPartialEvals(
			m31.FromM31(parts[0][i]),
			m31.FromM31(parts[1][i]),
			m31.FromM31(parts[2][i]),
			m31.FromM31(parts[3][i]),
		)
	}
	return out, nil
}

// Evaluate evaluates all four coordinates on domain, building a fresh
// twiddle tree rooted at domain's half coset.
func (p SecureCirclePoly) Evaluate(domain CircleDomain) []m31.QM31 {
	tree := NewTwiddleTree(domain.HalfCoset)
	out, _ := p.EvaluateWithTwiddles(domain, tree)
	return out
}

// embedM31ToQM31 lifts a base-field element into QM31 for use with the
// generic EvalAtPoint fold.
func embedM31ToQM31(a m31.M31) m31.QM31 {
	return m31.FromM31(a)
}

// EvalAtPoint evaluates the polynomial at an arbitrary QM31 point (the
// out-of-domain sampling path), combining the four coordinate evaluations
// via fromPartialEvals.
func (p SecureCirclePoly) EvalAtPoint(point CirclePoint[m31.QM31]) m31.QM31 {
	var evals [4]m31.QM31
	for i, c := range p.Coords {
		evals[i] = EvalAtPoint(c.Coeffs, point, embedM31ToQM31)
	}
	return m31.FromPartialEvals(evals[0], evals[1], evals[2], evals[3])
}
