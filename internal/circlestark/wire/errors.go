// Package wire implements the deterministic JSON and binary codecs for
// ProofWire: the two transports a proof can cross between implementations
// through, required to produce byte-identical re-encodings of one another.
package wire

import "fmt"

// Kind enumerates this package's closed error kinds.
type Kind int

const (
	// KindNonCanonicalM31 reports a decoded M31 coordinate at or beyond the
	// field modulus.
	KindNonCanonicalM31 Kind = iota
	// KindValueOutOfRange reports a decoded count (e.g. n_queries) that
	// does not fit the target platform's native size.
	KindValueOutOfRange
	// KindInvalidHexLength reports a hex string of odd length.
	KindInvalidHexLength
	// KindInvalidHexDigit reports a hex string containing a non-hex byte.
	KindInvalidHexDigit
	// KindInvalidBinaryProof reports a binary buffer that truncates before
	// a length-prefixed vector or fixed-size field is fully read, or that
	// carries trailing bytes after the last field; DecodeJSON also uses it
	// for JSON input that fails to parse.
	KindInvalidBinaryProof
	// KindUnsupportedBinaryVersion reports a binary buffer whose magic
	// does not match the one version this codec supports.
	KindUnsupportedBinaryVersion
)

// Error is the typed error returned by wire codec operations.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("wire: %s: %s", e.Op, e.Msg)
	}
	switch e.Kind {
	case KindNonCanonicalM31:
		return fmt.Sprintf("wire: %s: non-canonical M31 coordinate", e.Op)
	case KindValueOutOfRange:
		return fmt.Sprintf("wire: %s: value out of range", e.Op)
	case KindInvalidHexLength:
		return fmt.Sprintf("wire: %s: odd-length hex string", e.Op)
	case KindInvalidHexDigit:
		return fmt.Sprintf("wire: %s: non-hex digit", e.Op)
	case KindInvalidBinaryProof:
		return fmt.Sprintf("wire: %s: truncated binary proof", e.Op)
	case KindUnsupportedBinaryVersion:
		return fmt.Sprintf("wire: %s: unsupported binary magic/version", e.Op)
	default:
		return fmt.Sprintf("wire: error in %s", e.Op)
	}
}
