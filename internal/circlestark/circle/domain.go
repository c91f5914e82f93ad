package circle

import "github.com/vybium/circle-stark/internal/circlestark/m31"

// Coset is { initial * step^k : 0 <= k < 2^log_size }, represented by the
// point indices of its initial element and step rather than the points
// themselves, so doubling and conjugation stay exact index arithmetic.
type Coset struct {
	InitialIndex CirclePointIndex
	StepIndex    CirclePointIndex
	LogSize      int
}

// NewCoset builds the coset with the given initial/step indices.
func NewCoset(initialIndex, stepIndex CirclePointIndex, logSize int) Coset {
	return Coset{InitialIndex: initialIndex, StepIndex: stepIndex, LogSize: logSize}
}

// Size returns 2^LogSize.
func (c Coset) Size() int {
	return 1 << c.LogSize
}

// At returns the k-th element of the coset.
func (c Coset) At(k int) CirclePoint[m31.M31] {
	idx := c.InitialIndex.Add(c.StepIndex.Mul(uint32(k)))
	return idx.ToPoint()
}

// IndexAt returns the point index of the k-th element, without converting to
// a point.
func (c Coset) IndexAt(k int) CirclePointIndex {
	return c.InitialIndex.Add(c.StepIndex.Mul(uint32(k)))
}

// Conjugate returns the coset of conjugated elements: negating the initial
// and step index negates every element, since g^-i = conj(g^i).
func (c Coset) Conjugate() Coset {
	return Coset{InitialIndex: c.InitialIndex.Neg(), StepIndex: c.StepIndex.Neg(), LogSize: c.LogSize}
}

// Shift translates the coset by the given index.
func (c Coset) Shift(by CirclePointIndex) Coset {
	return Coset{InitialIndex: c.InitialIndex.Add(by), StepIndex: c.StepIndex, LogSize: c.LogSize}
}

// Double returns the coset obtained by doubling every element: both the
// initial and step indices double.
func (c Coset) Double() Coset {
	if c.LogSize == 0 {
		panic("circle: Coset.Double: log_size must be > 0")
	}
	return Coset{InitialIndex: c.InitialIndex.Mul(2), StepIndex: c.StepIndex.Mul(2), LogSize: c.LogSize - 1}
}

// Split partitions the coset into 2^log_parts interleaved sub-cosets of
// log_size - log_parts each, matching the "halfOdds"/"odds" family.
func (c Coset) Split(logParts int) ([]Coset, error) {
	if logParts > c.LogSize {
		return nil, &Error{Kind: KindSplitTooLarge, Op: "Coset.Split"}
	}
	parts := make([]Coset, 1<<logParts)
	for i := range parts {
		parts[i] = Coset{
			InitialIndex: c.InitialIndex.Add(c.StepIndex.Mul(uint32(i))),
			StepIndex:    c.StepIndex.Mul(uint32(1 << logParts)),
			LogSize:      c.LogSize - logParts,
		}
	}
	return parts, nil
}

// Iter returns every point of the coset in natural (index) order.
func (c Coset) Iter() []CirclePoint[m31.M31] {
	out := make([]CirclePoint[m31.M31], c.Size())
	for k := range out {
		out[k] = c.At(k)
	}
	return out
}

// halfOdds / odds mirror the coset families canonic cosets are built from.
// oddsCoset(logSize) is the coset of the 2^logSize elements
// g^(step/4), g^(step/4 + step), ... with step = 2^(31-logSize).
func oddsCoset(logSize int) Coset {
	stepSize := uint32(1) << (circleGroupLogOrder - logSize)
	initial := stepSize / 4
	return NewCoset(NewCirclePointIndex(int64(initial)), NewCirclePointIndex(int64(stepSize)), logSize)
}

// CanonicCoset is the "odds" coset of size 2^LogSize within the order-2^31
// M31 circle group: a coset is canonic iff initial_index*4 == step_index.
type CanonicCoset struct {
	coset Coset
}

// NewCanonicCoset builds the canonic coset of the given log size. logSize
// must be in (0, 31).
func NewCanonicCoset(logSize int) (CanonicCoset, error) {
	if logSize <= 0 {
		return CanonicCoset{}, &Error{Kind: KindLogSizeZero, Op: "NewCanonicCoset"}
	}
	return CanonicCoset{coset: oddsCoset(logSize)}, nil
}

// LogSize returns the coset's log size.
func (cc CanonicCoset) LogSize() int {
	return cc.coset.LogSize
}

// Coset returns the underlying odds coset.
func (cc CanonicCoset) Coset() Coset {
	return cc.coset
}

// Step returns the point index cc advances by between consecutive elements.
func (cc CanonicCoset) Step() CirclePointIndex {
	return cc.coset.StepIndex
}

// HalfCoset returns the half-size coset CircleDomain is built from: doubled
// step, halved log size, and initial index step/2 (a quarter of the doubled
// step), so the half coset is itself canonic and the domain's points are
// g^(step/2 + step*k).
func (cc CanonicCoset) HalfCoset() Coset {
	initial := NewCirclePointIndex(int64(uint32(cc.coset.StepIndex) / 2))
	return NewCoset(initial, cc.coset.StepIndex.Mul(2), cc.coset.LogSize-1)
}

// CircleDomain returns the domain for this canonic coset: the disjoint union
// of the half coset and its conjugate.
func (cc CanonicCoset) CircleDomain() CircleDomain {
	return NewCircleDomain(cc.HalfCoset())
}

// IsCanonic reports whether a raw coset satisfies initial_index*4 ==
// step_index (mod 2^31).
func IsCanonic(c Coset) bool {
	return c.InitialIndex.Mul(4) == c.StepIndex
}

// CircleDomain is a half-coset together with its conjugate, ordered so the
// first half is the half-coset and the second half is its conjugate.
type CircleDomain struct {
	HalfCoset Coset
}

// NewCircleDomain builds the domain from a half coset.
func NewCircleDomain(halfCoset Coset) CircleDomain {
	return CircleDomain{HalfCoset: halfCoset}
}

// LogSize returns half_coset.log_size + 1.
func (d CircleDomain) LogSize() int {
	return d.HalfCoset.LogSize + 1
}

// Size returns 2^LogSize.
func (d CircleDomain) Size() int {
	return 1 << d.LogSize()
}

// At returns the i-th point: the half-coset's i-th point for i < size/2,
// else the conjugate of the half-coset's (i-size/2)-th point.
func (d CircleDomain) At(i int) CirclePoint[m31.M31] {
	half := d.Size() / 2
	if i < half {
		return d.HalfCoset.At(i)
	}
	return d.HalfCoset.At(i - half).Conjugate()
}

// IsCanonic reports whether the underlying half coset makes this domain
// canonic.
func (d CircleDomain) IsCanonic() bool {
	return IsCanonic(d.HalfCoset)
}

// Iter returns every point of the domain in natural (index) order.
func (d CircleDomain) Iter() []CirclePoint[m31.M31] {
	out := make([]CirclePoint[m31.M31], d.Size())
	for i := range out {
		out[i] = d.At(i)
	}
	return out
}

// BitReverseIndex reverses the low logSize bits of i.
func BitReverseIndex(i, logSize int) int {
	r := 0
	for b := 0; b < logSize; b++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}

// BitReverseInPlace permutes values into bit-reversed order for a domain of
// the given log size. len(values) must equal 2^logSize.
func BitReverseInPlace[T any](values []T, logSize int) {
	n := len(values)
	for i := 0; i < n; i++ {
		j := BitReverseIndex(i, logSize)
		if j > i {
			values[i], values[j] = values[j], values[i]
		}
	}
}

// CosetIndexToCircleDomainIndex converts coset_index, an index k into the
// canonic circle domain's points taken as the coset g^(step/2 + step*k)
// (step = 2^(31-logDomainSize)) in natural k order, into the matching
// CircleDomain storage index: even k (first half, traversed forward) maps to
// k/2; odd k (second half, the conjugate, traversed backward) maps to
// domain_size-1-(k-1)/2.
func CosetIndexToCircleDomainIndex(cosetIndex, logDomainSize int) int {
	if cosetIndex%2 == 0 {
		return cosetIndex / 2
	}
	domainSize := 1 << logDomainSize
	return domainSize - (cosetIndex/2) - 1
}
