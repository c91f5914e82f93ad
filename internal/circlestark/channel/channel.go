package channel

import (
	"encoding/binary"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// Channel is the Fiat-Shamir transcript. It holds a running digest that
// every mix advances, plus a draw counter that lets repeated draws against
// the same digest produce distinct outputs without perturbing the digest
// itself (so mixing and drawing compose exactly the way the specification's
// determinism requirement demands: identical mix sequences yield identical
// draw sequences, independent of hasher choice).
type Channel struct {
	hash    Hasher
	digest  [32]byte
	counter uint64
}

// New builds a channel over the given hasher, with a zero initial digest.
func New(hash Hasher) *Channel {
	return &Channel{hash: hash}
}

// mix absorbs data into the digest and resets the draw counter, since a new
// mix always starts a fresh sequence of possible draws.
func (c *Channel) mix(data []byte) {
	buf := make([]byte, 0, len(c.digest)+len(data))
	buf = append(buf, c.digest[:]...)
	buf = append(buf, data...)
	c.digest = c.hash.Hash(buf)
	c.counter = 0
}

// MixU32s absorbs a sequence of u32s in little-endian order.
func (c *Channel) MixU32s(vals []uint32) {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	c.mix(buf)
}

// MixU64 absorbs a single little-endian u64.
func (c *Channel) MixU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	c.mix(buf[:])
}

// MixFelts absorbs a sequence of QM31 values, each as its four M31
// coordinates in little-endian order.
func (c *Channel) MixFelts(vals []m31.QM31) {
	buf := make([]byte, 0, 16*len(vals))
	for _, v := range vals {
		for _, coord := range v.ToM31Array() {
			b := coord.ToBytesLE()
			buf = append(buf, b[:]...)
		}
	}
	c.mix(buf)
}

// MixRoot absorbs a Merkle commitment hash.
func (c *Channel) MixRoot(h [32]byte) {
	c.mix(h[:])
}

// nextBlock hashes digest||counter, increments counter, and returns 32
// pseudorandom bytes. It never mutates the digest itself.
func (c *Channel) nextBlock() [32]byte {
	var buf [40]byte
	copy(buf[:32], c.digest[:])
	binary.LittleEndian.PutUint64(buf[32:], c.counter)
	c.counter++
	return c.hash.Hash(buf[:])
}

// drawU32s fills out with pseudorandom u32s drawn from successive blocks.
func (c *Channel) drawU32s(out []uint32) {
	i := 0
	for i < len(out) {
		block := c.nextBlock()
		for off := 0; off+4 <= len(block) && i < len(out); off += 4 {
			out[i] = binary.LittleEndian.Uint32(block[off : off+4])
			i++
		}
	}
}

// drawM31 draws one canonical M31 by rejection sampling: the top bit of a
// drawn u32 is discarded (leaving a uniform value in [0, 2^31)), and the one
// non-canonical residue (P itself) is rejected and redrawn. This never
// returns an out-of-range canonical coordinate.
func (c *Channel) drawM31() m31.M31 {
	for {
		var word [1]uint32
		c.drawU32s(word[:])
		x := word[0] & 0x7fffffff
		if x < m31.P {
			return m31.M31(x)
		}
	}
}

// DrawSecureFelt samples a uniformly random QM31 element by independently
// rejection-sampling its four base-field coordinates.
func (c *Channel) DrawSecureFelt() m31.QM31 {
	var coords [4]m31.M31
	for i := range coords {
		coords[i] = c.drawM31()
	}
	return m31.FromM31Array(coords)
}

// DrawQueries draws count positions in [0, 2^logDomainSize). Since the
// range is a power of two, no rejection is needed: each draw masks a fresh
// u32 to the low logDomainSize bits.
func (c *Channel) DrawQueries(count, logDomainSize int) []int {
	out := make([]int, count)
	if logDomainSize == 0 {
		return out
	}
	words := make([]uint32, count)
	c.drawU32s(words)
	mask := uint32(1)<<uint(logDomainSize) - 1
	for i, w := range words {
		out[i] = int(w & mask)
	}
	return out
}

// VerifyPowNonce reports whether hash(digest || nonce) has powBits leading
// zero bits. It does not advance the digest or the draw counter.
func (c *Channel) VerifyPowNonce(powBits uint32, nonce uint64) bool {
	var buf [40]byte
	copy(buf[:32], c.digest[:])
	binary.LittleEndian.PutUint64(buf[32:], nonce)
	digest := c.hash.Hash(buf[:])
	return leadingZeroBits(digest[:]) >= powBits
}

func leadingZeroBits(b []byte) uint32 {
	var n uint32
	for _, by := range b {
		if by == 0 {
			n += 8
			continue
		}
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if by&mask != 0 {
				return n
			}
			n++
		}
		return n
	}
	return n
}

// defaultGrindCap bounds the nonce search so a misconfigured pow_bits value
// cannot grind forever; this is a resource bound, not an acceptance
// condition (the verifier never observes KindGrindFailed).
const defaultGrindCap = 1 << 32

// Grind searches for the smallest nonce such that VerifyPowNonce(powBits,
// nonce) holds, then mixes it into the channel. It does not consume the
// channel's draw counter beyond the final MixU64.
func (c *Channel) Grind(powBits uint32) (uint64, error) {
	for nonce := uint64(0); nonce < defaultGrindCap; nonce++ {
		if c.VerifyPowNonce(powBits, nonce) {
			c.MixU64(nonce)
			return nonce, nil
		}
	}
	return 0, &Error{Kind: KindGrindFailed, Op: "Grind"}
}

// Digest returns a copy of the current digest, for tests and diagnostics.
func (c *Channel) Digest() [32]byte {
	return c.digest
}
