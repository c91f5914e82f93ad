package wire

import "encoding/json"

// EncodeJSON renders a ProofWire as the canonical JSON layout (§4.10): a
// field-for-field dump with little-endian canonical integers for M31/QM31
// coordinates.
func EncodeJSON(w ProofWire) ([]byte, error) {
	return json.Marshal(w)
}

// DecodeJSON parses a JSON-encoded ProofWire. Field decoding catches
// malformed JSON; ToProof catches semantic violations (non-canonical
// coordinates, out-of-range counts).
func DecodeJSON(data []byte) (ProofWire, error) {
	var w ProofWire
	if err := json.Unmarshal(data, &w); err != nil {
		return ProofWire{}, &Error{Kind: KindInvalidBinaryProof, Op: "DecodeJSON", Msg: err.Error()}
	}
	return w, nil
}

// MarshalJSON renders h as a lowercase hex string, matching how 32-byte
// hashes are embedded in interop artifacts.
func (h HashWire) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeHex(h[:]))
}

// UnmarshalJSON parses a lowercase or uppercase hex string into h.
func (h *HashWire) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := decodeHex(s)
	if err != nil {
		return err
	}
	if len(decoded) != len(h) {
		return &Error{Kind: KindInvalidHexLength, Op: "HashWire.UnmarshalJSON", Msg: "hash must decode to 32 bytes"}
	}
	copy(h[:], decoded)
	return nil
}
