package m31

// CM31 represents a+b*i in the complex extension of M31, with i^2 = -1.
type CM31 struct {
	A, B M31
}

// CM31Zero and CM31One are the additive and multiplicative identities.
var (
	CM31Zero = CM31{}
	CM31One  = CM31{A: One}
)

// NewCM31 builds a+b*i.
func NewCM31(a, b M31) CM31 {
	return CM31{A: a, B: b}
}

func (z CM31) Add(w CM31) CM31 {
	return CM31{A: z.A.Add(w.A), B: z.B.Add(w.B)}
}

func (z CM31) Sub(w CM31) CM31 {
	return CM31{A: z.A.Sub(w.A), B: z.B.Sub(w.B)}
}

func (z CM31) Neg() CM31 {
	return CM31{A: z.A.Neg(), B: z.B.Neg()}
}

// Mul computes (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (z CM31) Mul(w CM31) CM31 {
	return CM31{
		A: z.A.Mul(w.A).Sub(z.B.Mul(w.B)),
		B: z.A.Mul(w.B).Add(z.B.Mul(w.A)),
	}
}

// MulM31 scales both coordinates by a base-field element.
func (z CM31) MulM31(s M31) CM31 {
	return CM31{A: z.A.Mul(s), B: z.B.Mul(s)}
}

// Conjugate returns a-bi.
func (z CM31) Conjugate() CM31 {
	return CM31{A: z.A, B: z.B.Neg()}
}

// Norm returns a^2+b^2, the base-field norm of z.
func (z CM31) Norm() M31 {
	return z.A.Square().Add(z.B.Square())
}

// Inv returns 1/(a+bi) = (a-bi)/(a^2+b^2). Fails on the zero element.
func (z CM31) Inv() (CM31, error) {
	norm := z.Norm()
	normInv, err := norm.Inv()
	if err != nil {
		return CM31{}, &Error{Kind: KindDivisionByZero, Op: "CM31.Inv"}
	}
	return z.Conjugate().MulM31(normInv), nil
}

func (z CM31) IsZero() bool {
	return z.A.IsZero() && z.B.IsZero()
}

func (z CM31) Equal(w CM31) bool {
	return z.A == w.A && z.B == w.B
}
