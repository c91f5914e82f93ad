package m31

import (
	"math/rand"
	"testing"
)

func randM31(r *rand.Rand) M31 {
	return FromU64(r.Uint64())
}

func randCM31(r *rand.Rand) CM31 {
	return CM31{A: randM31(r), B: randM31(r)}
}

func randQM31(r *rand.Rand) QM31 {
	return QM31{C0: randCM31(r), C1: randCM31(r)}
}

func TestM31FieldLaws(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 256; i++ {
		a, b, c := randM31(r), randM31(r), randM31(r)

		t.Run("add commutes", func(t *testing.T) {
			if a.Add(b) != b.Add(a) {
				t.Fatal("addition not commutative")
			}
		})
		t.Run("add associates", func(t *testing.T) {
			if a.Add(b).Add(c) != a.Add(b.Add(c)) {
				t.Fatal("addition not associative")
			}
		})
		t.Run("mul commutes", func(t *testing.T) {
			if a.Mul(b) != b.Mul(a) {
				t.Fatal("multiplication not commutative")
			}
		})
		t.Run("distributes", func(t *testing.T) {
			lhs := a.Mul(b.Add(c))
			rhs := a.Mul(b).Add(a.Mul(c))
			if lhs != rhs {
				t.Fatal("multiplication does not distribute over addition")
			}
		})
		t.Run("inverse", func(t *testing.T) {
			if a.IsZero() {
				return
			}
			inv, err := a.Inv()
			if err != nil {
				t.Fatalf("Inv: %v", err)
			}
			if a.Mul(inv) != One {
				t.Fatal("a * a^-1 != 1")
			}
		})
	}
}

func TestM31InvZero(t *testing.T) {
	if _, err := M31(0).Inv(); err == nil {
		t.Fatal("expected error inverting zero")
	}
}

func TestM31BytesRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 64; i++ {
		a := randM31(r)
		if got := FromBytesLE(a.ToBytesLE()); got != a {
			t.Fatalf("round trip mismatch: %v != %v", got, a)
		}
	}
}

func TestBatchInverse(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	vals := make([]M31, 37)
	for i := range vals {
		for {
			v := randM31(r)
			if !v.IsZero() {
				vals[i] = v
				break
			}
		}
	}
	inv, err := BatchInverse(vals)
	if err != nil {
		t.Fatalf("BatchInverse: %v", err)
	}
	for i, v := range vals {
		if v.Mul(inv[i]) != One {
			t.Fatalf("index %d: v*inv != 1", i)
		}
	}
}

func TestBatchInverseChunked(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	vals := make([]M31, 100)
	for i := range vals {
		for {
			v := randM31(r)
			if !v.IsZero() {
				vals[i] = v
				break
			}
		}
	}
	want, err := BatchInverse(vals)
	if err != nil {
		t.Fatalf("BatchInverse: %v", err)
	}
	got, err := BatchInverseChunked(vals, 7)
	if err != nil {
		t.Fatalf("BatchInverseChunked: %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("chunked mismatch at %d", i)
		}
	}
}

func TestBatchInverseZeroFails(t *testing.T) {
	if _, err := BatchInverse([]M31{One, Zero}); err == nil {
		t.Fatal("expected error for zero element")
	}
}

func TestQM31FieldLaws(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 256; i++ {
		a, b, c := randQM31(r), randQM31(r), randQM31(r)

		if a.Add(b) != b.Add(a) {
			t.Fatal("QM31 addition not commutative")
		}
		if a.Mul(b) != b.Mul(a) {
			t.Fatal("QM31 multiplication not commutative")
		}
		if a.Add(b).Add(c) != a.Add(b.Add(c)) {
			t.Fatal("QM31 addition not associative")
		}
		if a.Mul(b).Mul(c) != a.Mul(b.Mul(c)) {
			t.Fatal("QM31 multiplication not associative")
		}
		lhs := a.Mul(b.Add(c))
		rhs := a.Mul(b).Add(a.Mul(c))
		if lhs != rhs {
			t.Fatal("QM31 multiplication does not distribute")
		}
		if !a.IsZero() {
			inv, err := a.Inv()
			if err != nil {
				t.Fatalf("Inv: %v", err)
			}
			if a.Mul(inv) != QM31One {
				t.Fatal("a * a^-1 != 1 in QM31")
			}
		}
	}
}

func TestQM31ArrayRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	for i := 0; i < 32; i++ {
		q := randQM31(r)
		arr := q.ToM31Array()
		if got := FromM31Array(arr); got != q {
			t.Fatalf("array round trip mismatch")
		}
	}
}

func TestFromPartialEvals(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 32; i++ {
		arr := [4]M31{randM31(r), randM31(r), randM31(r), randM31(r)}
		q := FromM31Array(arr)
		reconstructed := FromPartialEvals(FromM31(arr[0]), FromM31(arr[1]), FromM31(arr[2]), FromM31(arr[3]))
		if reconstructed != q {
			t.Fatalf("FromPartialEvals mismatch: got %v want %v", reconstructed, q)
		}
	}
}

func TestQM31ToM31Narrowing(t *testing.T) {
	a := FromM31(M31(42))
	got, err := a.ToM31()
	if err != nil {
		t.Fatalf("ToM31: %v", err)
	}
	if got != M31(42) {
		t.Fatalf("got %v want 42", got)
	}
	notBase := QM31{C0: CM31{A: One, B: One}}
	if _, err := notBase.ToM31(); err == nil {
		t.Fatal("expected NonBaseField error")
	}
}
