package m31

// R is the mixing constant u^2 = 2+i that defines the QM31 extension tower
// QM31 = CM31[u]/(u^2 - R). It must never be substituted: every
// multiplication, squaring, inversion, and complex-conjugate line
// coefficient bakes it in.
var R = CM31{A: M31(2), B: M31(1)}

// QM31 is the degree-2 extension of CM31 (degree 4 over M31), the "secure
// field" used for out-of-domain sampling, channel draws, and FRI folding.
type QM31 struct {
	C0, C1 CM31
}

var (
	QM31Zero = QM31{}
	QM31One  = QM31{C0: CM31One}
)

// FromM31 embeds a base-field element as a QM31 with all higher coordinates
// zero.
func FromM31(a M31) QM31 {
	return QM31{C0: CM31{A: a}}
}

// FromM31Array builds a QM31 from its four base-field coordinates
// (c0.a, c0.b, c1.a, c1.b).
func FromM31Array(arr [4]M31) QM31 {
	return QM31{C0: CM31{A: arr[0], B: arr[1]}, C1: CM31{A: arr[2], B: arr[3]}}
}

// ToM31Array is the inverse of FromM31Array.
func (q QM31) ToM31Array() [4]M31 {
	return [4]M31{q.C0.A, q.C0.B, q.C1.A, q.C1.B}
}

func (q QM31) Add(w QM31) QM31 {
	return QM31{C0: q.C0.Add(w.C0), C1: q.C1.Add(w.C1)}
}

func (q QM31) Sub(w QM31) QM31 {
	return QM31{C0: q.C0.Sub(w.C0), C1: q.C1.Sub(w.C1)}
}

func (q QM31) Neg() QM31 {
	return QM31{C0: q.C0.Neg(), C1: q.C1.Neg()}
}

// Mul multiplies via Karatsuba over CM31: (c0+c1 u)(d0+d1 u)
// = (c0 d0 + R c1 d1) + (c0 d1 + c1 d0) u.
func (q QM31) Mul(w QM31) QM31 {
	v0 := q.C0.Mul(w.C0)
	v1 := q.C1.Mul(w.C1)
	v2 := q.C0.Add(q.C1).Mul(w.C0.Add(w.C1))
	cross := v2.Sub(v0).Sub(v1)
	return QM31{C0: v0.Add(R.Mul(v1)), C1: cross}
}

// MulCM31 multiplies by a CM31 scalar embedded with zero u-coordinate; it is
// cheaper than a full Mul on the hot quotient-accumulation path.
func (q QM31) MulCM31(rhs CM31) QM31 {
	return QM31{C0: q.C0.Mul(rhs), C1: q.C1.Mul(rhs)}
}

// MulM31 multiplies by a base-field scalar.
func (q QM31) MulM31(rhs M31) QM31 {
	return QM31{C0: q.C0.MulM31(rhs), C1: q.C1.MulM31(rhs)}
}

func (q QM31) Square() QM31 {
	return q.Mul(q)
}

// Conjugate returns c0 - c1*u, the conjugate used to compute the QM31 norm.
func (q QM31) Conjugate() QM31 {
	return QM31{C0: q.C0, C1: q.C1.Neg()}
}

// Inv returns (a-bu)/(a^2-R b^2). Fails only for the zero element.
func (q QM31) Inv() (QM31, error) {
	norm := q.C0.Mul(q.C0).Sub(R.Mul(q.C1.Mul(q.C1)))
	normInv, err := norm.Inv()
	if err != nil {
		return QM31{}, &Error{Kind: KindDivisionByZero, Op: "QM31.Inv"}
	}
	return QM31{
		C0: q.C0.Mul(normInv),
		C1: q.C1.Neg().Mul(normInv),
	}, nil
}

func (q QM31) IsZero() bool {
	return q.C0.IsZero() && q.C1.IsZero()
}

func (q QM31) Equal(w QM31) bool {
	return q.C0.Equal(w.C0) && q.C1.Equal(w.C1)
}

// IsInBaseField reports whether q has zero C1 and zero imaginary C0
// coordinate, i.e. narrows losslessly to M31.
func (q QM31) IsInBaseField() bool {
	return q.C1.IsZero() && q.C0.B.IsZero()
}

// ToM31 narrows q to M31, failing with KindNonBaseField if q carries any
// extension-field component.
func (q QM31) ToM31() (M31, error) {
	if !q.IsInBaseField() {
		return 0, &Error{Kind: KindNonBaseField, Op: "QM31.ToM31"}
	}
	return q.C0.A, nil
}

// basis elements 1, i, u, iu used by FromPartialEvals.
var (
	qm31E0 = QM31One
	qm31E1 = QM31{C0: CM31{B: One}}
	qm31E2 = QM31{C1: CM31{A: One}}
	qm31E3 = QM31{C1: CM31{B: One}}
)

// FromPartialEvals reconstructs a QM31 from its four component evaluations
// p0+p1*e1+p2*e2+p3*e3 against the basis {1, i, u, iu}.
func FromPartialEvals(p0, p1, p2, p3 QM31) QM31 {
	return p0.Mul(qm31E0).Add(p1.Mul(qm31E1)).Add(p2.Mul(qm31E2)).Add(p3.Mul(qm31E3))
}

// BatchInverseQM31 inverts every element of in using one field inversion.
func BatchInverseQM31(in []QM31) ([]QM31, error) {
	n := len(in)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]QM31, n)
	acc := QM31One
	for i, v := range in {
		if v.IsZero() {
			return nil, &Error{Kind: KindDivisionByZero, Op: "BatchInverseQM31"}
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}
	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}
	out := make([]QM31, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = prefix[i].Mul(accInv)
		accInv = accInv.Mul(in[i])
	}
	return out, nil
}
