package interop

import (
	"encoding/json"

	"github.com/vybium/circle-stark/internal/circlestark/pcs"
	"github.com/vybium/circle-stark/internal/circlestark/wire"
)

// SchemaVersion is the one artifact schema this reader accepts.
const SchemaVersion = 1

// ExchangeMode identifies the wire encoding an artifact's proof_bytes_hex
// is expected to decode as: the JSON wire layout, never the binary one.
const ExchangeMode = "proof_exchange_json_wire_v1"

// Artifact is the cross-implementation proof exchange envelope (§6): proof
// bytes plus enough metadata for a reader to reject a mismatched producer
// before it ever looks at the proof itself.
type Artifact struct {
	SchemaVersion     int             `json:"schema_version"`
	UpstreamCommit    string          `json:"upstream_commit"`
	ExchangeMode      string          `json:"exchange_mode"`
	PCSConfig         wire.ConfigWire `json:"pcs_config"`
	ExampleIdentifier string          `json:"example_identifier"`
	Statement         json.RawMessage `json:"statement"`
	ProofBytesHex     string          `json:"proof_bytes_hex"`
}

// configToArtifactWire mirrors wire's private configToWire helper, duplicated here only at
// the field level since wire.ConfigWire's constructor is unexported; New
// builds it directly from pcs.Config instead of reaching into wire
// internals.
func configToArtifactWire(c pcs.Config) wire.ConfigWire {
	return wire.ConfigWire{
		PowBits: c.PowBits,
		FriConfig: wire.FriConfigWire{
			LogBlowupFactor:         c.Fri.LogBlowupFactor,
			LogLastLayerDegreeBound: c.Fri.LogLastLayerDegreeBound,
			NQueries:                uint64(c.Fri.NQueries),
		},
	}
}

// New builds an Artifact around a proof and the statement it attests to.
// statement is marshaled as-is; callers pass whatever concrete statement
// type their component uses (e.g. component.Statement).
func New(upstreamCommit string, config pcs.Config, exampleIdentifier string, statement any, proof *pcs.Proof) (*Artifact, error) {
	statementJSON, err := json.Marshal(statement)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArtifact, Op: "New", Msg: err.Error()}
	}
	proofJSON, err := wire.EncodeJSON(wire.FromProof(config, proof))
	if err != nil {
		return nil, &Error{Kind: KindInvalidArtifact, Op: "New", Msg: err.Error()}
	}
	return &Artifact{
		SchemaVersion:     SchemaVersion,
		UpstreamCommit:    upstreamCommit,
		ExchangeMode:      ExchangeMode,
		PCSConfig:         configToArtifactWire(config),
		ExampleIdentifier: exampleIdentifier,
		Statement:         statementJSON,
		ProofBytesHex:     wire.EncodeHex(proofJSON),
	}, nil
}

// Encode renders the artifact as JSON.
func (a *Artifact) Encode() ([]byte, error) {
	return json.Marshal(a)
}

// Decode parses and validates an artifact, rejecting a schema_version or
// exchange_mode a reader does not understand before any proof bytes are
// touched.
func Decode(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &Error{Kind: KindInvalidArtifact, Op: "Decode", Msg: err.Error()}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the artifact's metadata without touching proof_bytes_hex.
func (a *Artifact) Validate() error {
	if a.SchemaVersion != SchemaVersion {
		return &Error{Kind: KindSchemaVersionMismatch, Op: "Validate"}
	}
	if a.ExchangeMode != ExchangeMode {
		return &Error{Kind: KindExchangeModeMismatch, Op: "Validate"}
	}
	return nil
}

// DecodeStatement unmarshals the artifact's statement block into v.
func (a *Artifact) DecodeStatement(v any) error {
	if err := json.Unmarshal(a.Statement, v); err != nil {
		return &Error{Kind: KindInvalidArtifact, Op: "DecodeStatement", Msg: err.Error()}
	}
	return nil
}

// Proof decodes proof_bytes_hex back into a pcs.Config and pcs.Proof,
// rejecting malformed hex or a wire-level violation (non-canonical
// coordinates, out-of-range counts) the same way wire.ProofWire.ToProof
// does.
func (a *Artifact) Proof() (pcs.Config, *pcs.Proof, error) {
	raw, err := wire.DecodeHex(a.ProofBytesHex)
	if err != nil {
		return pcs.Config{}, nil, err
	}
	w, err := wire.DecodeJSON(raw)
	if err != nil {
		return pcs.Config{}, nil, err
	}
	return w.ToProof()
}
