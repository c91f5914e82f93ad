// Package interop implements the cross-implementation proof exchange
// artifact: a thin JSON envelope around a wire.ProofWire, carrying the
// metadata a reader needs to confirm it is looking at the format and
// configuration it expects before trusting the embedded proof bytes.
package interop

import "fmt"

// Kind enumerates this package's closed error kinds.
type Kind int

const (
	// KindSchemaVersionMismatch reports an artifact whose schema_version
	// does not match the one this reader supports.
	KindSchemaVersionMismatch Kind = iota
	// KindExchangeModeMismatch reports an artifact whose exchange_mode is
	// not "proof_exchange_json_wire_v1".
	KindExchangeModeMismatch
	// KindInvalidArtifact reports malformed artifact or statement JSON, or a
	// statement or proof that fails to encode into an artifact.
	KindInvalidArtifact
)

// Error is the typed error returned by interop artifact operations.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("interop: %s: %s", e.Op, e.Msg)
	}
	switch e.Kind {
	case KindSchemaVersionMismatch:
		return fmt.Sprintf("interop: %s: schema_version mismatch", e.Op)
	case KindExchangeModeMismatch:
		return fmt.Sprintf("interop: %s: exchange_mode mismatch", e.Op)
	case KindInvalidArtifact:
		return fmt.Sprintf("interop: %s: invalid artifact", e.Op)
	default:
		return fmt.Sprintf("interop: error in %s", e.Op)
	}
}
