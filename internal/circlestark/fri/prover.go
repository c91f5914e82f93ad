package fri

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
)

// Proof is the transcript a FRI prover emits: one circle-domain layer proof,
// zero or more line-domain inner layer proofs, and the last-layer
// polynomial itself.
type Proof struct {
	FirstLayer    LayerProof
	InnerLayers   []LayerProof
	LastLayerPoly circle.LinePoly
}

// DeepClone copies every layer and the last-layer polynomial's coefficient
// slice into freshly allocated storage. A verifier must call this on
// ingest: retaining the caller's proof by reference would let a later
// mutation of the caller's buffer change an already-verified outcome.
func (p *Proof) DeepClone() *Proof {
	inner := make([]LayerProof, len(p.InnerLayers))
	for i, l := range p.InnerLayers {
		inner[i] = l.DeepClone()
	}
	return &Proof{
		FirstLayer:    p.FirstLayer.DeepClone(),
		InnerLayers:   inner,
		LastLayerPoly: circle.NewLinePoly(append([]m31.QM31(nil), p.LastLayerPoly.Coeffs...)),
	}
}

type innerLayer struct {
	domain circle.LineDomain
	evals  []m31.QM31
	tree   *merkle.Tree
}

// Prover runs the FRI commit phase eagerly (on construction) and retains
// every committed layer so Decommit can answer queries afterwards.
type Prover struct {
	config Config
	hasher merkle.Hasher

	firstLayerDomain circle.CircleDomain
	firstLayerEvals  []m31.QM31
	firstLayerTree   *merkle.Tree

	inner []innerLayer

	lastLayerDomain circle.LineDomain
	lastLayerPoly   circle.LinePoly
}

// Commit runs the FRI prover's commit phase: it commits the first
// (circle-domain) layer, folds circle into line, commits and folds each
// inner line layer until the domain shrinks to config's last-layer size,
// then interpolates and mixes the last-layer polynomial.
func Commit(ch *channel.Channel, hasher merkle.Hasher, config Config, domain circle.CircleDomain, column []m31.QM31) (*Prover, error) {
	if !circle.IsCanonic(domain.HalfCoset) {
		return nil, &Error{Kind: KindNotCanonicDomain, Op: "Commit"}
	}
	if len(column) != domain.Size() {
		return nil, &Error{Kind: KindShapeMismatch, Op: "Commit", Msg: "column length does not match domain size"}
	}

	firstTree, err := merkle.Commit(hasher, coordinateColumns(column))
	if err != nil {
		return nil, err
	}
	ch.MixRoot(firstTree.Root())
	alpha := ch.DrawSecureFelt()

	curEvals, curDomain := circle.FoldCircleIntoLine(column, domain, alpha)

	lastLayerDomainSize := config.LastLayerDomainSize()
	var layers []innerLayer
	for len(curEvals) > lastLayerDomainSize {
		tree, err := merkle.Commit(hasher, coordinateColumns(curEvals))
		if err != nil {
			return nil, err
		}
		ch.MixRoot(tree.Root())
		layers = append(layers, innerLayer{domain: curDomain, evals: curEvals, tree: tree})
		layerAlpha := ch.DrawSecureFelt()
		curEvals, curDomain = circle.FoldLine(curEvals, curDomain, layerAlpha)
	}
	if len(curEvals) != lastLayerDomainSize {
		return nil, &Error{Kind: KindInvalidLastLayerSize, Op: "Commit"}
	}

	lastLayerPoly := circle.InterpolateLine(curEvals, curDomain)
	degreeBound := 1 << config.LogLastLayerDegreeBound
	for _, c := range lastLayerPoly.Coeffs[degreeBound:] {
		if c != m31.QM31Zero {
			return nil, &Error{Kind: KindInvalidLastLayerDegree, Op: "Commit"}
		}
	}
	lastLayerPoly.Coeffs = append([]m31.QM31(nil), lastLayerPoly.Coeffs[:degreeBound]...)
	ch.MixFelts(lastLayerPoly.Coeffs)

	return &Prover{
		config:           config,
		hasher:           hasher,
		firstLayerDomain: domain,
		firstLayerEvals:  column,
		firstLayerTree:   firstTree,
		inner:            layers,
		lastLayerDomain:  curDomain,
		lastLayerPoly:    lastLayerPoly,
	}, nil
}

// Decommit draws query positions from ch and produces the decommitment
// proof for every committed layer. It also returns the sorted, deduplicated
// lifted query positions, since a PCS-level caller needs the same positions
// to decommit its other committed trees.
func (p *Prover) Decommit(ch *channel.Channel) (*Proof, []int, error) {
	firstLogSize := p.firstLayerDomain.LogSize()
	unsorted := ch.DrawQueries(p.config.NQueries, firstLogSize)
	liftedQueries := sortedUnique(unsorted)
	queries := liftedQueries

	firstProof, _, err := layerDecommit(p.firstLayerTree, p.firstLayerEvals, queries, circle.CircleToLineFoldStep)
	if err != nil {
		return nil, nil, err
	}
	queries = nextQueries(queries, circle.CircleToLineFoldStep)

	innerProofs := make([]LayerProof, len(p.inner))
	for i, layer := range p.inner {
		proof, _, err := layerDecommit(layer.tree, layer.evals, queries, circle.FoldStep)
		if err != nil {
			return nil, nil, err
		}
		innerProofs[i] = proof
		queries = nextQueries(queries, circle.FoldStep)
	}

	return &Proof{
		FirstLayer:    firstProof,
		InnerLayers:   innerProofs,
		LastLayerPoly: p.lastLayerPoly,
	}, liftedQueries, nil
}
