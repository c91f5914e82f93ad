package channel

import (
	"testing"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

func mixSequence(c *Channel) {
	c.MixU32s([]uint32{1, 2, 3})
	c.MixU64(0xdeadbeefcafe)
	c.MixFelts([]m31.QM31{m31.FromM31(m31.M31(7)), m31.QM31One})
	var root [32]byte
	root[0] = 0x42
	c.MixRoot(root)
}

func TestChannelDeterminismAcrossInstances(t *testing.T) {
	a := New(Blake2sHash{})
	b := New(Blake2sHash{})
	mixSequence(a)
	mixSequence(b)

	feltA := a.DrawSecureFelt()
	feltB := b.DrawSecureFelt()
	if feltA != feltB {
		t.Fatalf("draws diverged: %v vs %v", feltA, feltB)
	}

	qA := a.DrawQueries(8, 10)
	qB := b.DrawQueries(8, 10)
	for i := range qA {
		if qA[i] != qB[i] {
			t.Fatalf("query %d diverged: %d vs %d", i, qA[i], qB[i])
		}
	}
}

func TestMixingOrderMatters(t *testing.T) {
	a := New(Blake2sHash{})
	b := New(Blake2sHash{})
	a.MixU64(1)
	a.MixU64(2)
	b.MixU64(2)
	b.MixU64(1)
	if a.DrawSecureFelt() == b.DrawSecureFelt() {
		t.Fatal("expected different mix order to produce different draws")
	}
}

func TestDrawQueriesWithinRange(t *testing.T) {
	c := New(Blake2sHash{})
	mixSequence(c)
	logDomainSize := 6
	n := 1 << logDomainSize
	queries := c.DrawQueries(200, logDomainSize)
	for _, q := range queries {
		if q < 0 || q >= n {
			t.Fatalf("query %d out of range [0,%d)", q, n)
		}
	}
}

func TestDrawSecureFeltCoordinatesCanonical(t *testing.T) {
	c := New(Blake2sHash{})
	mixSequence(c)
	for i := 0; i < 64; i++ {
		felt := c.DrawSecureFelt()
		for _, coord := range felt.ToM31Array() {
			if uint32(coord) >= m31.P {
				t.Fatalf("draw %d produced non-canonical coordinate %d", i, coord)
			}
		}
	}
}

func TestPowContract(t *testing.T) {
	c := New(Blake2sHash{})
	mixSequence(c)
	const powBits = 8

	digestBefore := c.Digest()
	nonce, err := c.Grind(powBits)
	if err != nil {
		t.Fatalf("Grind: %v", err)
	}

	verifier := New(Blake2sHash{})
	mixSequence(verifier)
	if !verifier.VerifyPowNonce(powBits, nonce) {
		t.Fatalf("verifier rejected grind-found nonce %d", nonce)
	}
	if c.Digest() == digestBefore {
		t.Fatal("Grind's MixU64 did not advance the digest")
	}
}

func TestVerifyPowNonceDoesNotAdvanceDigest(t *testing.T) {
	c := New(Blake2sHash{})
	mixSequence(c)
	before := c.Digest()
	c.VerifyPowNonce(4, 12345)
	c.VerifyPowNonce(4, 99999)
	if c.Digest() != before {
		t.Fatal("VerifyPowNonce must not mutate the digest")
	}
}

func TestSha3HasherAlsoDeterministic(t *testing.T) {
	a := New(Sha3Hash{})
	b := New(Sha3Hash{})
	mixSequence(a)
	mixSequence(b)
	if a.DrawSecureFelt() != b.DrawSecureFelt() {
		t.Fatal("sha3-backed channel draws diverged across instances")
	}
}
