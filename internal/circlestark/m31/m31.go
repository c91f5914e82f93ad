// Package m31 implements arithmetic over the Mersenne-31 prime field and its
// degree-2 (CM31) and degree-4 (QM31) extensions, following the Circle
// STARKs construction: M31 is CFFT-friendly because p = 2^31 - 1 leaves the
// circle group x^2+y^2=1 with a convenient order of exactly 2^31.
package m31

import "fmt"

// P is the Mersenne-31 prime, 2^31 - 1.
const P uint32 = (1 << 31) - 1

// M31 is a canonical field element in [0, P).
type M31 uint32

// Zero and One are the additive and multiplicative identities.
var (
	Zero = M31(0)
	One  = M31(1)
)

// Kind enumerates the field package's closed error kinds.
type Kind int

const (
	// KindDivisionByZero reports an attempted inversion of the zero element.
	KindDivisionByZero Kind = iota
	// KindNonBaseField reports a QM31->M31 narrowing of a value that
	// carries an extension-field component.
	KindNonBaseField
)

// Error is the typed error returned by field operations.
type Error struct {
	Kind Kind
	Op   string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDivisionByZero:
		return fmt.Sprintf("m31: division by zero in %s", e.Op)
	case KindNonBaseField:
		return fmt.Sprintf("m31: %s: value is not in the base field", e.Op)
	default:
		return fmt.Sprintf("m31: error in %s", e.Op)
	}
}

// FromU64 reduces an arbitrary 64-bit value into the canonical range by
// folding high bits modulo P.
func FromU64(x uint64) M31 {
	return M31(reduce64(x))
}

// FromInt64 reduces a signed value, correctly handling negative inputs.
func FromInt64(x int64) M31 {
	if x >= 0 {
		return FromU64(uint64(x))
	}
	neg := FromU64(uint64(-x))
	return neg.Neg()
}

func reduce64(x uint64) uint64 {
	x = (x & uint64(P)) + (x >> 31)
	for x >= uint64(P) {
		x -= uint64(P)
	}
	return x
}

// Add returns a+b mod P.
func (a M31) Add(b M31) M31 {
	s := uint64(a) + uint64(b)
	if s >= uint64(P) {
		s -= uint64(P)
	}
	return M31(s)
}

// Sub returns a-b mod P.
func (a M31) Sub(b M31) M31 {
	if a >= b {
		return a - b
	}
	return M31(uint64(P) - uint64(b) + uint64(a))
}

// Neg returns -a mod P.
func (a M31) Neg() M31 {
	if a == 0 {
		return 0
	}
	return M31(P) - a
}

// Mul returns a*b mod P.
func (a M31) Mul(b M31) M31 {
	return M31(reduce64(uint64(a) * uint64(b)))
}

// Double returns 2a mod P.
func (a M31) Double() M31 {
	return a.Add(a)
}

// Square returns a^2 mod P.
func (a M31) Square() M31 {
	return a.Mul(a)
}

// Pow returns a^e mod P via square-and-multiply.
func (a M31) Pow(e uint32) M31 {
	result := One
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a, computed via Fermat's little
// theorem (a^(P-2)). It fails on the zero element.
func (a M31) Inv() (M31, error) {
	if a == 0 {
		return 0, &Error{Kind: KindDivisionByZero, Op: "M31.Inv"}
	}
	return a.Pow(P - 2), nil
}

// IsZero reports whether a is the additive identity.
func (a M31) IsZero() bool {
	return a == 0
}

// Equal reports whether a and b are the same canonical element.
func (a M31) Equal(b M31) bool {
	return a == b
}

// ToBytesLE returns the 4-byte little-endian encoding of the canonical value.
func (a M31) ToBytesLE() [4]byte {
	return [4]byte{byte(a), byte(a >> 8), byte(a >> 16), byte(a >> 24)}
}

// FromBytesLE decodes a 4-byte little-endian encoding. It does not reject
// non-canonical values on its own; callers that need the canonicality check
// (e.g. the wire codec) compare against P explicitly.
func FromBytesLE(b [4]byte) M31 {
	return M31(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

// IsCanonical reports whether the raw 32-bit value is a canonical M31
// representative, i.e. strictly less than P.
func IsCanonical(raw uint32) bool {
	return raw < P
}

func (a M31) String() string {
	return fmt.Sprintf("%d", uint32(a))
}

// BatchInverse inverts every element of in using a single field inversion,
// via the standard prefix/suffix product trick. It fails if any input is
// zero.
func BatchInverse(in []M31) ([]M31, error) {
	n := len(in)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]M31, n)
	acc := One
	for i, v := range in {
		if v.IsZero() {
			return nil, &Error{Kind: KindDivisionByZero, Op: "BatchInverse"}
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}
	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}
	out := make([]M31, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = prefix[i].Mul(accInv)
		accInv = accInv.Mul(in[i])
	}
	return out, nil
}

// BatchInverseChunked behaves like BatchInverse but processes the input in
// fixed-size chunks to bound scratch memory, matching the chunked variant
// named in the specification. The result is identical to BatchInverse.
func BatchInverseChunked(in []M31, chunkSize int) ([]M31, error) {
	if chunkSize <= 0 {
		chunkSize = len(in)
		if chunkSize == 0 {
			return nil, nil
		}
	}
	out := make([]M31, len(in))
	for start := 0; start < len(in); start += chunkSize {
		end := start + chunkSize
		if end > len(in) {
			end = len(in)
		}
		chunk, err := BatchInverse(in[start:end])
		if err != nil {
			return nil, err
		}
		copy(out[start:end], chunk)
	}
	return out, nil
}
