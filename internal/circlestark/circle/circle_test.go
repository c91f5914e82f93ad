package circle

import (
	"math/rand"
	"testing"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

func TestM31GeneratorOnCurve(t *testing.T) {
	x, y := M31Generator.X, M31Generator.Y
	lhs := x.Square().Add(y.Square())
	if lhs != m31.One {
		t.Fatalf("generator not on curve: x^2+y^2 = %v", lhs)
	}
}

func TestM31GeneratorOrder(t *testing.T) {
	g30 := M31Generator.RepeatedDouble(30)
	if g30.X != m31.One.Neg() || !g30.Y.IsZero() {
		t.Fatalf("g^(2^30) should be (-1,0), got (%v,%v)", g30.X, g30.Y)
	}
	g31 := g30.Double()
	if g31.X != m31.One || !g31.Y.IsZero() {
		t.Fatalf("g^(2^31) should be (1,0), got (%v,%v)", g31.X, g31.Y)
	}
}

func TestSecureFieldGeneratorOnCurve(t *testing.T) {
	x, y := SecureFieldCircleGen.X, SecureFieldCircleGen.Y
	lhs := x.Mul(x).Add(y.Mul(y))
	if lhs != m31.QM31One {
		t.Fatalf("secure field generator not on curve")
	}
}

func TestCirclePointIndexToPointMatchesRepeatedAdd(t *testing.T) {
	idx := NewCirclePointIndex(37)
	got := idx.ToPoint()
	want := M31Identity
	for i := 0; i < 37; i++ {
		want = want.Add(M31Generator)
	}
	if got != want {
		t.Fatalf("ToPoint mismatch: got %v want %v", got, want)
	}
}

func TestBitReverseIndexInvolution(t *testing.T) {
	for logSize := 1; logSize <= 8; logSize++ {
		n := 1 << logSize
		for i := 0; i < n; i++ {
			r := BitReverseIndex(i, logSize)
			back := BitReverseIndex(r, logSize)
			if back != i {
				t.Fatalf("bit reverse not involutive at log_size=%d i=%d", logSize, i)
			}
		}
	}
}

func TestCanonicCosetIsCanonic(t *testing.T) {
	for logSize := 1; logSize <= 10; logSize++ {
		cc, err := NewCanonicCoset(logSize)
		if err != nil {
			t.Fatalf("NewCanonicCoset(%d): %v", logSize, err)
		}
		if !IsCanonic(cc.Coset()) {
			t.Fatalf("canonic coset at log_size=%d failed its own canonicity check", logSize)
		}
		if !cc.CircleDomain().IsCanonic() {
			t.Fatalf("circle domain at log_size=%d is not canonic", logSize)
		}
	}
}

func TestCanonicCosetLogSizeZeroRejected(t *testing.T) {
	if _, err := NewCanonicCoset(0); err == nil {
		t.Fatal("expected error for log_size 0")
	}
}

func TestCircleDomainPointsOnCurve(t *testing.T) {
	cc, err := NewCanonicCoset(5)
	if err != nil {
		t.Fatalf("NewCanonicCoset: %v", err)
	}
	dom := cc.CircleDomain()
	for i := 0; i < dom.Size(); i++ {
		p := dom.At(i)
		sum := p.X.Square().Add(p.Y.Square())
		if sum != m31.One {
			t.Fatalf("domain point %d not on curve", i)
		}
	}
}

func TestFFTRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for logSize := 1; logSize <= 8; logSize++ {
		n := 1 << logSize
		coeffs := make([]m31.M31, n)
		for i := range coeffs {
			coeffs[i] = m31.FromU64(r.Uint64())
		}
		cc, err := NewCanonicCoset(logSize)
		if err != nil {
			t.Fatalf("NewCanonicCoset: %v", err)
		}
		dom := cc.CircleDomain()
		poly := NewCircleCoefficients(coeffs)
		evals := poly.Evaluate(dom)
		if len(evals) != n {
			t.Fatalf("evaluate length mismatch: got %d want %d", len(evals), n)
		}
		recovered := InterpolateFromEvaluation(evals, dom)
		for i := range coeffs {
			if recovered.Coeffs[i] != coeffs[i] {
				t.Fatalf("round trip mismatch at log_size=%d index %d: got %v want %v", logSize, i, recovered.Coeffs[i], coeffs[i])
			}
		}
	}
}

func TestEvaluateMatchesNaiveEvalAtPoint(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	logSize := 4
	n := 1 << logSize
	coeffs := make([]m31.M31, n)
	for i := range coeffs {
		coeffs[i] = m31.FromU64(r.Uint64())
	}
	cc, err := NewCanonicCoset(logSize)
	if err != nil {
		t.Fatalf("NewCanonicCoset: %v", err)
	}
	dom := cc.CircleDomain()
	poly := NewCircleCoefficients(coeffs)
	evals := poly.Evaluate(dom)
	for i := 0; i < n; i++ {
		p := dom.At(BitReverseIndex(i, logSize))
		got := EvalAtPoint(coeffs, p, func(a m31.M31) m31.M31 { return a })
		if got != evals[i] {
			t.Fatalf("index %d: fast eval %v != direct fold eval %v", i, evals[i], got)
		}
	}
}

func TestSplitAtMidIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for logSize := 2; logSize <= 7; logSize++ {
		n := 1 << logSize
		coeffs := make([]m31.M31, n)
		for i := range coeffs {
			coeffs[i] = m31.FromU64(r.Uint64())
		}
		cc, err := NewCanonicCoset(logSize)
		if err != nil {
			t.Fatalf("NewCanonicCoset: %v", err)
		}
		dom := cc.CircleDomain()
		poly := NewCircleCoefficients(coeffs)
		left, right := poly.SplitAtMid()

		z := dom.At(5 % n)
		identity := func(a m31.M31) m31.M31 { return a }
		lhs := EvalAtPoint(coeffs, z, identity)

		zx := z.X
		for i := 0; i < logSize-2; i++ {
			zx = DoubleX(zx)
		}
		leftVal := EvalAtPoint(left.Coeffs, z, identity)
		rightVal := EvalAtPoint(right.Coeffs, z, identity)
		rhs := leftVal.Add(zx.Mul(rightVal))

		if lhs != rhs {
			t.Fatalf("split identity failed at log_size=%d: lhs=%v rhs=%v", logSize, lhs, rhs)
		}
	}
}

func TestFoldCircleIntoLineThenFoldLineHalvesEachLayer(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	logSize := 4
	n := 1 << logSize
	coeffs := make([]m31.M31, n)
	for i := range coeffs {
		coeffs[i] = m31.FromU64(r.Uint64())
	}
	cc, err := NewCanonicCoset(logSize)
	if err != nil {
		t.Fatalf("NewCanonicCoset: %v", err)
	}
	dom := cc.CircleDomain()
	poly := NewCircleCoefficients(coeffs)
	baseEvals := poly.Evaluate(dom)

	secureEvals := make([]m31.QM31, n)
	for i, v := range baseEvals {
		secureEvals[i] = m31.FromM31(v)
	}

	alpha := m31.QM31{C0: m31.CM31{A: m31.M31(5)}}
	lineEvals, lineDomain := FoldCircleIntoLine(secureEvals, dom, alpha)
	if len(lineEvals) != n/2 {
		t.Fatalf("fold circle into line: got length %d want %d", len(lineEvals), n/2)
	}
	if lineDomain.LogSize() != logSize-1 {
		t.Fatalf("unexpected line domain log size: got %d want %d", lineDomain.LogSize(), logSize-1)
	}

	folded2, lineDomain2 := FoldLine(lineEvals, lineDomain, alpha)
	if len(folded2) != n/4 {
		t.Fatalf("fold line: got length %d want %d", len(folded2), n/4)
	}
	if lineDomain2.LogSize() != logSize-2 {
		t.Fatalf("unexpected second line domain log size: got %d want %d", lineDomain2.LogSize(), logSize-2)
	}
}

func TestLinePolyEvalAtPointMatchesInterpolation(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	logSize := 4
	n := 1 << logSize
	lineCoset := NewCoset(NewCirclePointIndex(3), NewCirclePointIndex(1<<(31-logSize)), logSize)
	domain := NewLineDomain(lineCoset)

	coeffs := make([]m31.QM31, n)
	for i := range coeffs {
		coeffs[i] = m31.FromM31(m31.FromU64(r.Uint64()))
	}
	poly := NewLinePoly(coeffs)

	evals := make([]m31.QM31, n)
	for i := 0; i < n; i++ {
		x := domain.At(BitReverseIndex(i, logSize))
		evals[i] = poly.EvalAtPoint(m31.FromM31(x))
	}

	recovered := InterpolateLine(evals, domain)
	for i := range coeffs {
		if recovered.Coeffs[i] != coeffs[i] {
			t.Fatalf("line poly round trip mismatch at %d", i)
		}
	}
}
