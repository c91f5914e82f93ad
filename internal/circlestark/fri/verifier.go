package fri

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
)

// Verifier replays the FRI prover's channel mixings from a Proof, then
// checks query decommitments against the resulting commitments.
type Verifier struct {
	config Config
	hasher merkle.Hasher
	proof  *Proof

	domain      circle.CircleDomain
	alpha0      m31.QM31
	innerAlphas []m31.QM31
	// lineDomains[i] is the domain the i-th inner layer's evaluation column
	// lives on, matching the prover's curDomain before that layer's fold.
	lineDomains     []circle.LineDomain
	lastLayerDomain circle.LineDomain
}

// twoInvQM31 returns 1/2 in M31 lifted into QM31, used by the fold formulas below exactly as in
// circle.FoldCircleIntoLine and circle.FoldLine.
func twoInvQM31() m31.QM31 {
	inv, err := m31.One.Double().Inv()
	if err != nil {
		panic(err)
	}
	return m31.FromM31(inv)
}

// CommitVerifier replays the FRI commit-phase channel mixings against proof and
// checks the proof's shape: the inner layer count implied by domain's size
// and config, and the last layer's coefficient count.
func CommitVerifier(ch *channel.Channel, hasher merkle.Hasher, config Config, proof *Proof, domain circle.CircleDomain) (*Verifier, error) {
	if !circle.IsCanonic(domain.HalfCoset) {
		return nil, &Error{Kind: KindNotCanonicDomain, Op: "Commit"}
	}

	// Deep-clone on ingest: the verifier retains proof past this call
	// (Decommit reads it later), and must not alias the caller's buffer.
	proof = proof.DeepClone()

	ch.MixRoot(proof.FirstLayer.Root)
	alpha0 := ch.DrawSecureFelt()

	circleLogSize := domain.LogSize()
	expectedInner := config.NumInnerLayers(circleLogSize)
	if expectedInner != len(proof.InnerLayers) {
		return nil, &Error{Kind: KindInvalidNumFriLayers, Op: "Commit"}
	}

	innerAlphas := make([]m31.QM31, expectedInner)
	lineDomains := make([]circle.LineDomain, expectedInner)
	curDomain := circle.NewLineDomain(domain.HalfCoset)
	for i, layer := range proof.InnerLayers {
		lineDomains[i] = curDomain
		ch.MixRoot(layer.Root)
		innerAlphas[i] = ch.DrawSecureFelt()
		curDomain = curDomain.Double()
	}

	degreeBound := 1 << config.LogLastLayerDegreeBound
	if len(proof.LastLayerPoly.Coeffs) > degreeBound {
		return nil, &Error{Kind: KindLastLayerDegreeInvalid, Op: "Commit"}
	}
	ch.MixFelts(proof.LastLayerPoly.Coeffs)

	return &Verifier{
		config:          config,
		hasher:          hasher,
		proof:           proof,
		domain:          domain,
		alpha0:          alpha0,
		innerAlphas:     innerAlphas,
		lineDomains:     lineDomains,
		lastLayerDomain: curDomain,
	}, nil
}

// Decommit takes the lifted query positions (sorted, deduplicated — drawn
// by the caller from the same channel position the prover drew from, since
// a PCS-level caller shares these positions across every committed tree)
// and firstLayerAnswers (the reconstructed secure-field values at those
// positions, per §4.7's quotient accumulation). It checks every layer's
// Merkle decommitment plus the final fold's equality against the committed
// last-layer polynomial.
func (v *Verifier) Decommit(queries []int, firstLayerAnswers []m31.QM31) error {
	circleLogSize := v.domain.LogSize()
	if len(firstLayerAnswers) != len(queries) {
		return &Error{Kind: KindShapeMismatch, Op: "Decommit", Msg: "first layer answer count does not match query count"}
	}

	twoInv := twoInvQM31()

	expanded, err := subsetExpand(queries, circle.CircleToLineFoldStep, v.domain.Size())
	if err != nil {
		return err
	}
	values, err := reconstructSubsetValues(expanded, queries, firstLayerAnswers, v.proof.FirstLayer.WitnessValues)
	if err != nil {
		return err
	}
	if err := merkle.Verify(v.hasher, v.proof.FirstLayer.Root, circleLogSize, expanded, coordinateColumns(values), v.proof.FirstLayer.Decommitment); err != nil {
		return &Error{Kind: KindInnerLayerCommitmentInvalid, Op: "Decommit", Msg: "first layer: " + err.Error()}
	}

	curVals := foldCircleSubset(values, expanded, queries, v.domain, circleLogSize, v.alpha0, twoInv)
	curQueries := nextQueries(queries, circle.CircleToLineFoldStep)

	for i, layer := range v.proof.InnerLayers {
		lineDomain := v.lineDomains[i]
		logSize := lineDomain.LogSize()
		expanded, err = subsetExpand(curQueries, circle.FoldStep, 1<<uint(logSize))
		if err != nil {
			return err
		}
		vals, err := reconstructSubsetValues(expanded, curQueries, curVals, layer.WitnessValues)
		if err != nil {
			return err
		}
		if err := merkle.Verify(v.hasher, layer.Root, logSize, expanded, coordinateColumns(vals), layer.Decommitment); err != nil {
			return &Error{Kind: KindInnerLayerCommitmentInvalid, Op: "Decommit", Msg: "inner layer: " + err.Error()}
		}
		curVals = foldLineSubset(vals, expanded, curQueries, lineDomain, logSize, v.innerAlphas[i], twoInv)
		curQueries = nextQueries(curQueries, circle.FoldStep)
	}

	for i, q := range curQueries {
		x := v.lastLayerDomain.At(circle.BitReverseIndex(q, v.lastLayerDomain.LogSize()))
		want := v.proof.LastLayerPoly.EvalAtPoint(m31.FromM31(x))
		if curVals[i] != want {
			return &Error{Kind: KindLastLayerEvaluationsInvalid, Op: "Decommit"}
		}
	}
	return nil
}

// foldCircleSubset folds expanded circle-domain values (as reconstructed by
// reconstructSubsetValues) into one value per entry of queries>>1, mirroring
// circle.FoldCircleIntoLine's per-pair formula restricted to queried pairs.
func foldCircleSubset(values []m31.QM31, expanded, queries []int, domain circle.CircleDomain, logSize int, alpha, twoInv m31.QM31) []m31.QM31 {
	posIndex := make(map[int]int, len(expanded))
	for i, p := range expanded {
		posIndex[p] = i
	}
	out := make([]m31.QM31, 0, len(queries))
	seen := make(map[int]bool)
	for _, q := range queries {
		m := q >> 1
		if seen[m] {
			continue
		}
		seen[m] = true
		f0 := values[posIndex[2*m]]
		f1 := values[posIndex[2*m+1]]
		p0 := domain.At(circle.BitReverseIndex(2*m, logSize))
		yInv, err := p0.Y.Inv()
		if err != nil {
			panic(err)
		}
		fe := f0.Add(f1).Mul(twoInv)
		fo := f0.Sub(f1).MulM31(yInv).Mul(twoInv)
		out = append(out, fe.Add(alpha.Mul(fo)))
	}
	return out
}

// foldLineSubset is foldCircleSubset's line-domain counterpart, mirroring
// circle.FoldLine.
func foldLineSubset(values []m31.QM31, expanded, queries []int, domain circle.LineDomain, logSize int, alpha, twoInv m31.QM31) []m31.QM31 {
	posIndex := make(map[int]int, len(expanded))
	for i, p := range expanded {
		posIndex[p] = i
	}
	out := make([]m31.QM31, 0, len(queries))
	seen := make(map[int]bool)
	for _, q := range queries {
		m := q >> 1
		if seen[m] {
			continue
		}
		seen[m] = true
		f0 := values[posIndex[2*m]]
		f1 := values[posIndex[2*m+1]]
		x := domain.At(circle.BitReverseIndex(2*m, logSize))
		xInv, err := x.Inv()
		if err != nil {
			panic(err)
		}
		fe := f0.Add(f1).Mul(twoInv)
		fo := f0.Sub(f1).MulM31(xInv).Mul(twoInv)
		out = append(out, fe.Add(alpha.Mul(fo)))
	}
	return out
}
