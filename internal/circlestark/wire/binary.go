package wire

import (
	"bytes"
	"encoding/binary"
)

// binaryMagic identifies the one binary layout this codec supports.
const binaryMagic = "STWOPRW1"

// binWriter appends little-endian fields and length-prefixed vectors to a
// growing byte buffer.
type binWriter struct {
	buf bytes.Buffer
}

func (w *binWriter) u32(v uint32) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *binWriter) u64(v uint64) { _ = binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *binWriter) raw(b []byte) { w.buf.Write(b) }

func (w *binWriter) hash(h HashWire) { w.raw(h[:]) }

func (w *binWriter) qm31(v QM31Wire) {
	for _, c := range v {
		w.u32(c)
	}
}

func (w *binWriter) qm31Vec(vs []QM31Wire) {
	w.u32(uint32(len(vs)))
	for _, v := range vs {
		w.qm31(v)
	}
}

func (w *binWriter) decommitment(d DecommitmentWire) {
	w.u32(uint32(len(d.HashWitness)))
	for _, h := range d.HashWitness {
		w.hash(h)
	}
}

func (w *binWriter) layer(l FriLayerWire) {
	w.hash(l.Commitment)
	w.decommitment(l.Decommitment)
	w.qm31Vec(l.FriWitness)
}

// EncodeBinary renders a ProofWire as the compact binary layout (§4.10):
// 8-byte magic, then ProofWire's fields in declaration order, with u32
// little-endian length prefixes on every vector.
func EncodeBinary(w ProofWire) []byte {
	out := &binWriter{}
	out.raw([]byte(binaryMagic))

	out.u32(w.Config.PowBits)
	out.u32(w.Config.FriConfig.LogBlowupFactor)
	out.u32(w.Config.FriConfig.LogLastLayerDegreeBound)
	out.u64(w.Config.FriConfig.NQueries)

	out.u32(uint32(len(w.Commitments)))
	for _, h := range w.Commitments {
		out.hash(h)
	}

	out.u32(uint32(len(w.SampledValues)))
	for _, tree := range w.SampledValues {
		out.u32(uint32(len(tree)))
		for _, col := range tree {
			out.qm31Vec(col)
		}
	}

	out.u32(uint32(len(w.Decommitments)))
	for _, d := range w.Decommitments {
		out.decommitment(d)
	}

	out.u32(uint32(len(w.QueriedValues)))
	for _, tree := range w.QueriedValues {
		out.u32(uint32(len(tree)))
		for _, col := range tree {
			out.u32(uint32(len(col)))
			for _, v := range col {
				out.u32(v)
			}
		}
	}

	out.u64(w.ProofOfWork)

	out.layer(w.FriProof.FirstLayer)
	out.u32(uint32(len(w.FriProof.InnerLayers)))
	for _, l := range w.FriProof.InnerLayers {
		out.layer(l)
	}
	out.qm31Vec(w.FriProof.LastLayerPoly)

	return out.buf.Bytes()
}

// binReader consumes a byte buffer left-to-right, failing with
// KindInvalidBinaryProof on truncation.
type binReader struct {
	data []byte
	pos  int
}

func (r *binReader) need(n int, op string) error {
	if r.pos+n > len(r.data) {
		return &Error{Kind: KindInvalidBinaryProof, Op: op, Msg: "truncated before end of field"}
	}
	return nil
}

func (r *binReader) u32(op string) (uint32, error) {
	if err := r.need(4, op); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *binReader) u64(op string) (uint64, error) {
	if err := r.need(8, op); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *binReader) raw(n int, op string) ([]byte, error) {
	if err := r.need(n, op); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *binReader) hash(op string) (HashWire, error) {
	b, err := r.raw(32, op)
	if err != nil {
		return HashWire{}, err
	}
	var h HashWire
	copy(h[:], b)
	return h, nil
}

func (r *binReader) qm31(op string) (QM31Wire, error) {
	var v QM31Wire
	for i := range v {
		c, err := r.u32(op)
		if err != nil {
			return QM31Wire{}, err
		}
		v[i] = c
	}
	return v, nil
}

func (r *binReader) qm31Vec(op string) ([]QM31Wire, error) {
	n, err := r.u32(op)
	if err != nil {
		return nil, err
	}
	out := make([]QM31Wire, n)
	for i := range out {
		v, err := r.qm31(op)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *binReader) decommitment(op string) (DecommitmentWire, error) {
	n, err := r.u32(op)
	if err != nil {
		return DecommitmentWire{}, err
	}
	out := make([]HashWire, n)
	for i := range out {
		h, err := r.hash(op)
		if err != nil {
			return DecommitmentWire{}, err
		}
		out[i] = h
	}
	return DecommitmentWire{HashWitness: out}, nil
}

func (r *binReader) layer(op string) (FriLayerWire, error) {
	commitment, err := r.hash(op)
	if err != nil {
		return FriLayerWire{}, err
	}
	decommitment, err := r.decommitment(op)
	if err != nil {
		return FriLayerWire{}, err
	}
	witness, err := r.qm31Vec(op)
	if err != nil {
		return FriLayerWire{}, err
	}
	return FriLayerWire{Commitment: commitment, Decommitment: decommitment, FriWitness: witness}, nil
}

// DecodeBinary parses the compact binary layout, rejecting a magic/version
// mismatch and any truncation before the buffer is fully consumed.
func DecodeBinary(data []byte) (ProofWire, error) {
	if len(data) < len(binaryMagic) || string(data[:len(binaryMagic)]) != binaryMagic {
		return ProofWire{}, &Error{Kind: KindUnsupportedBinaryVersion, Op: "DecodeBinary"}
	}
	r := &binReader{data: data, pos: len(binaryMagic)}

	var w ProofWire
	var err error
	if w.Config.PowBits, err = r.u32("ProofWire.Config.PowBits"); err != nil {
		return ProofWire{}, err
	}
	if w.Config.FriConfig.LogBlowupFactor, err = r.u32("ProofWire.Config.FriConfig.LogBlowupFactor"); err != nil {
		return ProofWire{}, err
	}
	if w.Config.FriConfig.LogLastLayerDegreeBound, err = r.u32("ProofWire.Config.FriConfig.LogLastLayerDegreeBound"); err != nil {
		return ProofWire{}, err
	}
	if w.Config.FriConfig.NQueries, err = r.u64("ProofWire.Config.FriConfig.NQueries"); err != nil {
		return ProofWire{}, err
	}

	nCommitments, err := r.u32("ProofWire.Commitments")
	if err != nil {
		return ProofWire{}, err
	}
	w.Commitments = make([]HashWire, nCommitments)
	for i := range w.Commitments {
		if w.Commitments[i], err = r.hash("ProofWire.Commitments"); err != nil {
			return ProofWire{}, err
		}
	}

	nTrees, err := r.u32("ProofWire.SampledValues")
	if err != nil {
		return ProofWire{}, err
	}
	w.SampledValues = make([][][]QM31Wire, nTrees)
	for t := range w.SampledValues {
		nCols, err := r.u32("ProofWire.SampledValues")
		if err != nil {
			return ProofWire{}, err
		}
		w.SampledValues[t] = make([][]QM31Wire, nCols)
		for c := range w.SampledValues[t] {
			if w.SampledValues[t][c], err = r.qm31Vec("ProofWire.SampledValues"); err != nil {
				return ProofWire{}, err
			}
		}
	}

	nDecommitments, err := r.u32("ProofWire.Decommitments")
	if err != nil {
		return ProofWire{}, err
	}
	w.Decommitments = make([]DecommitmentWire, nDecommitments)
	for i := range w.Decommitments {
		if w.Decommitments[i], err = r.decommitment("ProofWire.Decommitments"); err != nil {
			return ProofWire{}, err
		}
	}

	nQueriedTrees, err := r.u32("ProofWire.QueriedValues")
	if err != nil {
		return ProofWire{}, err
	}
	w.QueriedValues = make([][][]uint32, nQueriedTrees)
	for t := range w.QueriedValues {
		nCols, err := r.u32("ProofWire.QueriedValues")
		if err != nil {
			return ProofWire{}, err
		}
		w.QueriedValues[t] = make([][]uint32, nCols)
		for c := range w.QueriedValues[t] {
			nRows, err := r.u32("ProofWire.QueriedValues")
			if err != nil {
				return ProofWire{}, err
			}
			w.QueriedValues[t][c] = make([]uint32, nRows)
			for row := range w.QueriedValues[t][c] {
				if w.QueriedValues[t][c][row], err = r.u32("ProofWire.QueriedValues"); err != nil {
					return ProofWire{}, err
				}
			}
		}
	}

	if w.ProofOfWork, err = r.u64("ProofWire.ProofOfWork"); err != nil {
		return ProofWire{}, err
	}

	if w.FriProof.FirstLayer, err = r.layer("ProofWire.FriProof.FirstLayer"); err != nil {
		return ProofWire{}, err
	}
	nInner, err := r.u32("ProofWire.FriProof.InnerLayers")
	if err != nil {
		return ProofWire{}, err
	}
	w.FriProof.InnerLayers = make([]FriLayerWire, nInner)
	for i := range w.FriProof.InnerLayers {
		if w.FriProof.InnerLayers[i], err = r.layer("ProofWire.FriProof.InnerLayers"); err != nil {
			return ProofWire{}, err
		}
	}
	if w.FriProof.LastLayerPoly, err = r.qm31Vec("ProofWire.FriProof.LastLayerPoly"); err != nil {
		return ProofWire{}, err
	}

	if r.pos != len(r.data) {
		return ProofWire{}, &Error{Kind: KindInvalidBinaryProof, Op: "DecodeBinary", Msg: "trailing bytes after last field"}
	}
	return w, nil
}
