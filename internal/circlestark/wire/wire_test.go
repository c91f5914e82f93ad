package wire

import (
	"bytes"
	"testing"

	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
	"github.com/vybium/circle-stark/internal/circlestark/pcs"
)

func sampleProof(t *testing.T) (pcs.Config, *pcs.Proof) {
	t.Helper()
	config := pcs.Config{PowBits: 0, Fri: fri.Config{LogBlowupFactor: 1, LogLastLayerDegreeBound: 0, NQueries: 3}}
	col := pcs.ProverColumn{LogSize: 2, Coeffs: circle.NewCircleCoefficients([]m31.M31{1, 2, 3, 4})}
	columns := component.TreeVec[[]pcs.ProverColumn]{Trees: [][]pcs.ProverColumn{{col}}}
	sampledPoints := component.TreeVec[[][]circle.CirclePoint[m31.QM31]]{
		Trees: [][][]circle.CirclePoint[m31.QM31]{{{circle.SecureFieldCircleGen}}},
	}

	ch := channel.New(channel.Blake2sHash{})
	prover, err := pcs.Commit(ch, merkle.Blake2sHasher{}, config, columns)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	proof, err := prover.ProveValues(ch, sampledPoints)
	if err != nil {
		t.Fatalf("ProveValues: %v", err)
	}
	return config, proof
}

func TestJSONBinaryRoundTripAgree(t *testing.T) {
	config, proof := sampleProof(t)
	w := FromProof(config, proof)

	jsonBytes, err := EncodeJSON(w)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	decodedFromJSON, err := DecodeJSON(jsonBytes)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	reencodedJSON, err := EncodeJSON(decodedFromJSON)
	if err != nil {
		t.Fatalf("EncodeJSON (reencode): %v", err)
	}
	if !bytes.Equal(jsonBytes, reencodedJSON) {
		t.Fatalf("JSON round trip not byte-equal")
	}

	binBytes := EncodeBinary(w)
	decodedFromBinary, err := DecodeBinary(binBytes)
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	reencodedFromBinaryJSON, err := EncodeJSON(decodedFromBinary)
	if err != nil {
		t.Fatalf("EncodeJSON (from binary): %v", err)
	}
	if !bytes.Equal(jsonBytes, reencodedFromBinaryJSON) {
		t.Fatalf("JSON encoding of a binary-decoded proof diverged from the original JSON encoding")
	}

	reencodedBinary := EncodeBinary(decodedFromBinary)
	if !bytes.Equal(binBytes, reencodedBinary) {
		t.Fatalf("binary round trip not byte-equal")
	}
}

func TestToProofRoundTrip(t *testing.T) {
	config, proof := sampleProof(t)
	w := FromProof(config, proof)

	gotConfig, gotProof, err := w.ToProof()
	if err != nil {
		t.Fatalf("ToProof: %v", err)
	}
	if gotConfig != config {
		t.Fatalf("config mismatch: got %+v, want %+v", gotConfig, config)
	}
	if gotProof.Nonce != proof.Nonce {
		t.Fatalf("nonce mismatch: got %d, want %d", gotProof.Nonce, proof.Nonce)
	}
	if len(gotProof.TreeRoots) != len(proof.TreeRoots) {
		t.Fatalf("tree root count mismatch")
	}
}

func TestDecodeBinaryRejectsBadMagic(t *testing.T) {
	_, err := DecodeBinary([]byte("NOTAMAGIC" + "12345678"))
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindUnsupportedBinaryVersion {
		t.Fatalf("expected KindUnsupportedBinaryVersion, got %v", err)
	}
}

func TestDecodeBinaryRejectsTruncation(t *testing.T) {
	config, proof := sampleProof(t)
	full := EncodeBinary(FromProof(config, proof))
	_, err := DecodeBinary(full[:len(full)-1])
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindInvalidBinaryProof {
		t.Fatalf("expected KindInvalidBinaryProof, got %v", err)
	}
}

func TestToProofRejectsNonCanonicalM31(t *testing.T) {
	config, proof := sampleProof(t)
	w := FromProof(config, proof)
	w.FriProof.LastLayerPoly[0][0] = m31.P // non-canonical: equals the modulus

	_, _, err := w.ToProof()
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindNonCanonicalM31 {
		t.Fatalf("expected KindNonCanonicalM31, got %v", err)
	}
}

func TestHexRoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xab, 0xff}
	s := encodeHex(data)
	got, err := decodeHex(s)
	if err != nil {
		t.Fatalf("decodeHex: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("hex round trip mismatch: got %x, want %x", got, data)
	}
}

func TestDecodeHexRejectsOddLength(t *testing.T) {
	_, err := decodeHex("abc")
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindInvalidHexLength {
		t.Fatalf("expected KindInvalidHexLength, got %v", err)
	}
}

func TestDecodeHexRejectsNonHexDigit(t *testing.T) {
	_, err := decodeHex("zz")
	ce, ok := err.(*Error)
	if !ok || ce.Kind != KindInvalidHexDigit {
		t.Fatalf("expected KindInvalidHexDigit, got %v", err)
	}
}

func TestHashWireJSONRoundTrip(t *testing.T) {
	var h HashWire
	h[0] = 0x42
	h[31] = 0x99
	data, err := h.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var got HashWire
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got != h {
		t.Fatalf("hash round trip mismatch: got %x, want %x", got, h)
	}
}
