package circle

import "github.com/vybium/circle-stark/internal/circlestark/m31"

// Scalar is the coordinate-field constraint a CirclePoint needs: the circle
// group law only ever adds, subtracts, negates, and multiplies coordinates.
type Scalar[F any] interface {
	Add(F) F
	Sub(F) F
	Neg() F
	Mul(F) F
}

// CirclePoint is a point (x, y) on the circle x^2+y^2=1 over the field F.
// The group law (x1,y1)*(x2,y2) = (x1x2-y1y2, x1y2+y1x2) makes the circle a
// group of order p+1 over M31 and of order p^4-1 over QM31; in practice only the
// order-2^31 M31 subgroup and a single QM31 generator are used.
type CirclePoint[F Scalar[F]] struct {
	X, Y F
}

// Add applies the circle group law.
func (p CirclePoint[F]) Add(q CirclePoint[F]) CirclePoint[F] {
	return CirclePoint[F]{
		X: p.X.Mul(q.X).Sub(p.Y.Mul(q.Y)),
		Y: p.X.Mul(q.Y).Add(p.Y.Mul(q.X)),
	}
}

// Neg returns the group inverse (x, -y), i.e. the conjugate point.
func (p CirclePoint[F]) Neg() CirclePoint[F] {
	return CirclePoint[F]{X: p.X, Y: p.Y.Neg()}
}

// Sub returns p ⊗ (-q).
func (p CirclePoint[F]) Sub(q CirclePoint[F]) CirclePoint[F] {
	return p.Add(q.Neg())
}

// Conjugate is an alias for Neg: on the circle, the group inverse and the
// complex conjugate coincide.
func (p CirclePoint[F]) Conjugate() CirclePoint[F] {
	return p.Neg()
}

// Double returns p ⊗ p, computed through the group law so it needs no
// multiplicative identity of F.
func (p CirclePoint[F]) Double() CirclePoint[F] {
	return p.Add(p)
}

// RepeatedDouble applies Double n times.
func (p CirclePoint[F]) RepeatedDouble(n int) CirclePoint[F] {
	for i := 0; i < n; i++ {
		p = p.Double()
	}
	return p
}

// DoubleX computes 2x^2-1, the x-coordinate of doubling a point whose
// x-coordinate is x, without needing the corresponding y. It underlies the
// iterative factor schedule used by CircleCoefficients evaluation and the
// splitAtMid identity.
func DoubleX(x m31.M31) m31.M31 {
	return x.Square().Double().Sub(m31.One)
}

// M31Generator is the declared generator of the order-2^31 M31 circle
// subgroup: g^(2^30) = (-1, 0) and g^(2^31) = (1, 0).
var M31Generator = CirclePoint[m31.M31]{X: m31.M31(2), Y: m31.M31(1268011823)}

// M31Identity is the circle group identity (1, 0).
var M31Identity = CirclePoint[m31.M31]{X: m31.One, Y: m31.Zero}

// SecureFieldCircleGen is the QM31 circle generator used for out-of-domain
// sampling points.
var SecureFieldCircleGen = CirclePoint[m31.QM31]{
	X: m31.QM31{
		C0: m31.CM31{A: m31.One, B: m31.Zero},
		C1: m31.CM31{A: m31.M31(478637715), B: m31.M31(513582971)},
	},
	Y: m31.QM31{
		C0: m31.CM31{A: m31.M31(992285211), B: m31.M31(649143431)},
		C1: m31.CM31{A: m31.M31(740191619), B: m31.M31(1186584352)},
	},
}

// CirclePointIndex is an integer modulo 2^31 interpreting g^i (g the M31
// circle generator) as a curve point.
type CirclePointIndex uint32

const circleGroupLogOrder = 31
const circleGroupOrder = uint32(1) << circleGroupLogOrder

// NewCirclePointIndex reduces an arbitrary integer into [0, 2^31).
func NewCirclePointIndex(i int64) CirclePointIndex {
	m := int64(circleGroupOrder)
	r := i % m
	if r < 0 {
		r += m
	}
	return CirclePointIndex(r)
}

// Add returns i+j mod 2^31.
func (i CirclePointIndex) Add(j CirclePointIndex) CirclePointIndex {
	return CirclePointIndex((uint32(i) + uint32(j)) % circleGroupOrder)
}

// Neg returns -i mod 2^31.
func (i CirclePointIndex) Neg() CirclePointIndex {
	if i == 0 {
		return 0
	}
	return CirclePointIndex(circleGroupOrder - uint32(i))
}

// Mul returns i*n mod 2^31.
func (i CirclePointIndex) Mul(n uint32) CirclePointIndex {
	return CirclePointIndex((uint64(i) * uint64(n)) % uint64(circleGroupOrder))
}

// ToPoint evaluates g^i via double-and-add.
func (i CirclePointIndex) ToPoint() CirclePoint[m31.M31] {
	result := M31Identity
	cur := M31Generator
	n := uint32(i)
	for n > 0 {
		if n&1 == 1 {
			result = result.Add(cur)
		}
		cur = cur.Double()
		n >>= 1
	}
	return result
}
