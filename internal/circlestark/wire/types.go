package wire

import (
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
	"github.com/vybium/circle-stark/internal/circlestark/pcs"
)

// HashWire is a 32-byte Merkle hash, hex-encoded when embedded in an
// interop artifact and raw when embedded in the binary layout.
type HashWire [32]byte

// QM31Wire is a QM31 value as its four canonical little-endian M31
// coordinates, in (c0.a, c0.b, c1.a, c1.b) order.
type QM31Wire [4]uint32

func qm31ToWire(v m31.QM31) QM31Wire {
	arr := v.ToM31Array()
	return QM31Wire{uint32(arr[0]), uint32(arr[1]), uint32(arr[2]), uint32(arr[3])}
}

func qm31FromWire(w QM31Wire, op string) (m31.QM31, error) {
	var arr [4]m31.M31
	for i, v := range w {
		if v >= m31.P {
			return m31.QM31{}, &Error{Kind: KindNonCanonicalM31, Op: op}
		}
		arr[i] = m31.M31(v)
	}
	return m31.FromM31Array(arr), nil
}

func m31ToWire(v m31.M31) uint32 { return uint32(v) }

func m31FromWire(v uint32, op string) (m31.M31, error) {
	if v >= m31.P {
		return 0, &Error{Kind: KindNonCanonicalM31, Op: op}
	}
	return m31.M31(v), nil
}

// FriConfigWire mirrors fri.Config.
type FriConfigWire struct {
	LogBlowupFactor         uint32 `json:"log_blowup_factor"`
	LogLastLayerDegreeBound uint32 `json:"log_last_layer_degree_bound"`
	NQueries                uint64 `json:"n_queries"`
}

// ConfigWire mirrors pcs.Config.
type ConfigWire struct {
	PowBits   uint32        `json:"pow_bits"`
	FriConfig FriConfigWire `json:"fri_config"`
}

func configToWire(c pcs.Config) ConfigWire {
	return ConfigWire{
		PowBits: c.PowBits,
		FriConfig: FriConfigWire{
			LogBlowupFactor:         c.Fri.LogBlowupFactor,
			LogLastLayerDegreeBound: c.Fri.LogLastLayerDegreeBound,
			NQueries:                uint64(c.Fri.NQueries),
		},
	}
}

func configFromWire(w ConfigWire, op string) (pcs.Config, error) {
	if w.FriConfig.NQueries > uint64(^uint(0)>>1) {
		return pcs.Config{}, &Error{Kind: KindValueOutOfRange, Op: op, Msg: "n_queries exceeds platform int range"}
	}
	return pcs.Config{
		PowBits: w.PowBits,
		Fri: fri.Config{
			LogBlowupFactor:         w.FriConfig.LogBlowupFactor,
			LogLastLayerDegreeBound: w.FriConfig.LogLastLayerDegreeBound,
			NQueries:                int(w.FriConfig.NQueries),
		},
	}, nil
}

// DecommitmentWire mirrors merkle.Decommitment.
type DecommitmentWire struct {
	HashWitness []HashWire `json:"hash_witness"`
}

func decommitmentToWire(d merkle.Decommitment) DecommitmentWire {
	out := make([]HashWire, len(d.HashWitness))
	for i, h := range d.HashWitness {
		out[i] = HashWire(h)
	}
	return DecommitmentWire{HashWitness: out}
}

func decommitmentFromWire(w DecommitmentWire) merkle.Decommitment {
	out := make([]merkle.Hash, len(w.HashWitness))
	for i, h := range w.HashWitness {
		out[i] = merkle.Hash(h)
	}
	return merkle.Decommitment{HashWitness: out}
}

// FriLayerWire mirrors fri.LayerProof: a root commitment, its Merkle
// decommitment, and the secure-field witness values the verifier could
// not otherwise reconstruct from query answers.
type FriLayerWire struct {
	Commitment   HashWire         `json:"commitment"`
	Decommitment DecommitmentWire `json:"decommitment"`
	FriWitness   []QM31Wire       `json:"fri_witness"`
}

func layerProofToWire(lp fri.LayerProof) FriLayerWire {
	witness := make([]QM31Wire, len(lp.WitnessValues))
	for i, v := range lp.WitnessValues {
		witness[i] = qm31ToWire(v)
	}
	return FriLayerWire{
		Commitment:   HashWire(lp.Root),
		Decommitment: decommitmentToWire(lp.Decommitment),
		FriWitness:   witness,
	}
}

func layerProofFromWire(w FriLayerWire, op string) (fri.LayerProof, error) {
	witness := make([]m31.QM31, len(w.FriWitness))
	for i, v := range w.FriWitness {
		val, err := qm31FromWire(v, op)
		if err != nil {
			return fri.LayerProof{}, err
		}
		witness[i] = val
	}
	return fri.LayerProof{
		Root:          merkle.Hash(w.Commitment),
		Decommitment:  decommitmentFromWire(w.Decommitment),
		WitnessValues: witness,
	}, nil
}

// FriProofWire mirrors fri.Proof.
type FriProofWire struct {
	FirstLayer    FriLayerWire   `json:"first_layer"`
	InnerLayers   []FriLayerWire `json:"inner_layers"`
	LastLayerPoly []QM31Wire     `json:"last_layer_poly"`
}

func friProofToWire(p *fri.Proof) FriProofWire {
	inner := make([]FriLayerWire, len(p.InnerLayers))
	for i, l := range p.InnerLayers {
		inner[i] = layerProofToWire(l)
	}
	last := make([]QM31Wire, len(p.LastLayerPoly.Coeffs))
	for i, c := range p.LastLayerPoly.Coeffs {
		last[i] = qm31ToWire(c)
	}
	return FriProofWire{
		FirstLayer:    layerProofToWire(p.FirstLayer),
		InnerLayers:   inner,
		LastLayerPoly: last,
	}
}

func friProofFromWire(w FriProofWire) (*fri.Proof, error) {
	first, err := layerProofFromWire(w.FirstLayer, "FriProof.FirstLayer")
	if err != nil {
		return nil, err
	}
	inner := make([]fri.LayerProof, len(w.InnerLayers))
	for i, l := range w.InnerLayers {
		lp, err := layerProofFromWire(l, "FriProof.InnerLayers")
		if err != nil {
			return nil, err
		}
		inner[i] = lp
	}
	last := make([]m31.QM31, len(w.LastLayerPoly))
	for i, c := range w.LastLayerPoly {
		v, err := qm31FromWire(c, "FriProof.LastLayerPoly")
		if err != nil {
			return nil, err
		}
		last[i] = v
	}
	return &fri.Proof{
		FirstLayer:    first,
		InnerLayers:   inner,
		LastLayerPoly: circle.NewLinePoly(last),
	}, nil
}

// ProofWire is the wire form of a pcs.Proof: field-for-field, matching both
// the JSON and binary transports' shared layout.
type ProofWire struct {
	Config        ConfigWire         `json:"config"`
	Commitments   []HashWire         `json:"commitments"`
	SampledValues [][][]QM31Wire     `json:"sampled_values"`
	Decommitments []DecommitmentWire `json:"decommitments"`
	QueriedValues [][][]uint32       `json:"queried_values"`
	ProofOfWork   uint64             `json:"proof_of_work"`
	FriProof      FriProofWire       `json:"fri_proof"`
}

// FromProof flattens a pcs.Proof and its pcs.Config into wire form.
func FromProof(config pcs.Config, proof *pcs.Proof) ProofWire {
	commitments := make([]HashWire, len(proof.TreeRoots))
	for i, r := range proof.TreeRoots {
		commitments[i] = HashWire(r)
	}

	sampled := make([][][]QM31Wire, len(proof.OodValues.Trees))
	for t, tree := range proof.OodValues.Trees {
		sampled[t] = make([][]QM31Wire, len(tree))
		for c, col := range tree {
			sampled[t][c] = make([]QM31Wire, len(col))
			for k, v := range col {
				sampled[t][c][k] = qm31ToWire(v)
			}
		}
	}

	decommitments := make([]DecommitmentWire, len(proof.Decommitments))
	for i, d := range proof.Decommitments {
		decommitments[i] = decommitmentToWire(d)
	}

	queried := make([][][]uint32, len(proof.QueriedValues))
	for t, tree := range proof.QueriedValues {
		queried[t] = make([][]uint32, len(tree))
		for c, col := range tree {
			queried[t][c] = make([]uint32, len(col))
			for r, v := range col {
				queried[t][c][r] = m31ToWire(v)
			}
		}
	}

	return ProofWire{
		Config:        configToWire(config),
		Commitments:   commitments,
		SampledValues: sampled,
		Decommitments: decommitments,
		QueriedValues: queried,
		ProofOfWork:   proof.Nonce,
		FriProof:      friProofToWire(proof.Fri),
	}
}

// ToProof reconstructs a pcs.Config and pcs.Proof from wire form, rejecting
// any non-canonical M31/QM31 coordinate or out-of-range count.
func (w ProofWire) ToProof() (pcs.Config, *pcs.Proof, error) {
	config, err := configFromWire(w.Config, "ProofWire.Config")
	if err != nil {
		return pcs.Config{}, nil, err
	}

	roots := make([]merkle.Hash, len(w.Commitments))
	for i, h := range w.Commitments {
		roots[i] = merkle.Hash(h)
	}

	sampled := component.TreeVec[[][]m31.QM31]{Trees: make([][][]m31.QM31, len(w.SampledValues))}
	for t, tree := range w.SampledValues {
		sampled.Trees[t] = make([][]m31.QM31, len(tree))
		for c, col := range tree {
			sampled.Trees[t][c] = make([]m31.QM31, len(col))
			for k, v := range col {
				val, err := qm31FromWire(v, "ProofWire.SampledValues")
				if err != nil {
					return pcs.Config{}, nil, err
				}
				sampled.Trees[t][c][k] = val
			}
		}
	}

	decommitments := make([]merkle.Decommitment, len(w.Decommitments))
	for i, d := range w.Decommitments {
		decommitments[i] = decommitmentFromWire(d)
	}

	queried := make([][][]m31.M31, len(w.QueriedValues))
	for t, tree := range w.QueriedValues {
		queried[t] = make([][]m31.M31, len(tree))
		for c, col := range tree {
			queried[t][c] = make([]m31.M31, len(col))
			for r, v := range col {
				val, err := m31FromWire(v, "ProofWire.QueriedValues")
				if err != nil {
					return pcs.Config{}, nil, err
				}
				queried[t][c][r] = val
			}
		}
	}

	friProof, err := friProofFromWire(w.FriProof)
	if err != nil {
		return pcs.Config{}, nil, err
	}

	return config, &pcs.Proof{
		TreeRoots:     roots,
		OodValues:     sampled,
		QueriedValues: queried,
		Decommitments: decommitments,
		Nonce:         w.ProofOfWork,
		Fri:           friProof,
	}, nil
}
