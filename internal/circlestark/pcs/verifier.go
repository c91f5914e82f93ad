package pcs

import (
	"sort"
	"strconv"

	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
)

// Verifier replays a Prover's channel mixings against a Proof and a
// declared column shape (the per-tree, per-column trace log sizes a
// verifier must already know from the statement being checked, since that
// shape is never itself part of the proof).
type Verifier struct {
	hasher  merkle.Hasher
	config  Config
	shape   component.TreeVec[[]int]
	domain  circle.CircleDomain
	roots   []merkle.Hash
	treeIdx []int // original tree index of roots[i]
}

// CommitVerifier validates shape (every non-empty tree's columns share one log
// size, and every non-empty tree shares that log size with every other),
// reads proof.TreeRoots into the declared tree slots, and mixes each root
// into ch in tree order.
func CommitVerifier(ch *channel.Channel, hasher merkle.Hasher, config Config, shape component.TreeVec[[]int], proof *Proof) (*Verifier, error) {
	config.MixInto(ch)

	sharedLogSize := -1
	var treeIdx []int
	for t, cols := range shape.Trees {
		if len(cols) == 0 {
			continue
		}
		logSize := cols[0]
		for _, l := range cols {
			if l != logSize {
				return nil, &Error{Kind: KindShapeMismatch, Op: "Commit", Msg: "columns within one tree must share a log size"}
			}
		}
		if sharedLogSize == -1 {
			sharedLogSize = logSize
		} else if sharedLogSize != logSize {
			return nil, &Error{Kind: KindShapeMismatch, Op: "Commit", Msg: "every non-empty tree must share one commitment log size"}
		}
		treeIdx = append(treeIdx, t)
	}
	if len(treeIdx) == 0 {
		return nil, &Error{Kind: KindEmptyTrees, Op: "Commit"}
	}
	if len(proof.TreeRoots) != len(treeIdx) {
		return nil, &Error{Kind: KindInvalidStructure, Op: "Commit", Msg: "tree root count does not match declared shape"}
	}
	for _, r := range proof.TreeRoots {
		ch.MixRoot(r)
	}

	extendedLogSize := sharedLogSize + int(config.Fri.LogBlowupFactor)
	canonic, err := circle.NewCanonicCoset(extendedLogSize)
	if err != nil {
		return nil, err
	}

	// Deep-clone the roots this Verifier retains past Commit returning:
	// proof.TreeRoots must not alias a buffer the caller could later mutate.
	roots := append([]merkle.Hash(nil), proof.TreeRoots...)

	return &Verifier{
		hasher:  hasher,
		config:  config,
		shape:   shape,
		domain:  canonic.CircleDomain(),
		roots:   roots,
		treeIdx: treeIdx,
	}, nil
}

// Verify checks proof against sampledPoints: the out-of-domain values mix
// into ch exactly as the prover mixed them, the PoW nonce is checked, FRI
// query positions are drawn once and shared across every tree's Merkle
// decommitment and the quotient reconstruction, and the reconstructed
// quotient answers are handed to fri.Verifier.Decommit.
func (v *Verifier) Verify(ch *channel.Channel, proof *Proof, sampledPoints component.TreeVec[[][]circle.CirclePoint[m31.QM31]]) error {
	if err := v.checkShape(sampledPoints, proof); err != nil {
		return err
	}

	for _, tree := range proof.OodValues.Trees {
		for _, col := range tree {
			ch.MixFelts(col)
		}
	}

	flat := flattenSamples(sampledPoints)
	if len(flat) == 0 {
		return &Error{Kind: KindEmptySampledSet, Op: "Verify"}
	}

	alpha0 := ch.DrawSecureFelt()
	randomCoeffs := make([]m31.QM31, len(flat))
	power := alpha0
	for i := range randomCoeffs {
		randomCoeffs[i] = power
		power = power.Mul(alpha0)
	}

	values := make([]m31.QM31, len(flat))
	points := make([]circle.CirclePoint[m31.QM31], len(flat))
	idx := 0
	for t, perColumn := range sampledPoints.Trees {
		for c, pts := range perColumn {
			for k, p := range pts {
				values[idx] = proof.OodValues.Trees[t][c][k]
				points[idx] = p
				idx++
			}
		}
	}

	friVerifier, err := fri.CommitVerifier(ch, merkle.Blake2sHasher{}, v.config.Fri, proof.Fri, v.domain)
	if err != nil {
		return err
	}
	if !ch.VerifyPowNonce(v.config.PowBits, proof.Nonce) {
		return &Error{Kind: KindProofOfWork, Op: "Verify"}
	}
	ch.MixU64(proof.Nonce)

	logSize := v.domain.LogSize()
	queries := sortedUniqueInts(ch.DrawQueries(v.config.Fri.NQueries, logSize))

	for i, root := range v.roots {
		if err := merkle.Verify(v.hasher, root, logSize, queries, proof.QueriedValues[i], proof.Decommitments[i]); err != nil {
			return &Error{Kind: KindInvalidStructure, Op: "Verify", Msg: "tree " + strconv.Itoa(v.treeIdx[i]) + ": " + err.Error()}
		}
	}

	globalColumn := make([][]m31.M31, len(flat))
	for i, e := range flat {
		for ti, orig := range v.treeIdx {
			if orig == e.treeIdx {
				globalColumn[i] = proof.QueriedValues[ti][e.colIdx]
			}
		}
	}
	columnIdx := make([]int, len(flat))
	for i := range columnIdx {
		columnIdx[i] = i
	}
	batches := component.GroupSamplesByPoint(points, columnIdx, values, randomCoeffs)

	answers, err := reconstructQuotientAnswers(batches, globalColumn, v.domain, queries)
	if err != nil {
		return err
	}

	return friVerifier.Decommit(queries, answers)
}

func (v *Verifier) checkShape(sampledPoints component.TreeVec[[][]circle.CirclePoint[m31.QM31]], proof *Proof) error {
	if len(sampledPoints.Trees) != len(v.shape.Trees) {
		return &Error{Kind: KindShapeMismatch, Op: "Verify", Msg: "sampled tree count does not match declared shape"}
	}
	for t, cols := range v.shape.Trees {
		if len(sampledPoints.Trees[t]) != len(cols) {
			return &Error{Kind: KindShapeMismatch, Op: "Verify", Msg: "sampled column count does not match declared shape"}
		}
	}
	for t, cols := range proof.OodValues.Trees {
		for c, vals := range cols {
			if len(vals) != len(sampledPoints.Trees[t][c]) {
				return &Error{Kind: KindInvalidStructure, Op: "Verify", Msg: "ood value count does not match sampled point count"}
			}
		}
	}
	return nil
}

// reconstructQuotientAnswers evaluates the same batched quotient formula
// accumulateQuotients uses, but only at the queried rows, using the
// queried column values the Merkle decommitment already checked rather
// than a full evaluation column.
func reconstructQuotientAnswers(batches []component.ColumnSampleBatch, columnsByGlobalIndex [][]m31.M31, domain circle.CircleDomain, queries []int) ([]m31.QM31, error) {
	out := make([]m31.QM31, len(queries))
	for qi, row := range queries {
		p := domain.At(circle.BitReverseIndex(row, domain.LogSize()))
		domainY := m31.FromM31(p.Y)
		dx := m31.CM31{A: p.X}
		dy := m31.CM31{A: p.Y}

		var acc m31.QM31
		for _, batch := range batches {
			var num m31.QM31
			for _, entry := range batch.Samples {
				coeffs, err := complexConjugateLineCoeffs(batch.Point, entry.Value, entry.RandomCoeff)
				if err != nil {
					return nil, err
				}
				line := coeffs.A.Mul(domainY).Add(coeffs.B)
				num = num.Add(coeffs.C.MulM31(columnsByGlobalIndex[entry.ColumnIndex][qi]).Sub(line))
			}
			prx, pix := batch.Point.X.C0, batch.Point.X.C1
			pry, piy := batch.Point.Y.C0, batch.Point.Y.C1
			d := prx.Sub(dx).Mul(piy).Sub(pry.Sub(dy).Mul(pix))
			dInv, err := m31.QM31{C0: d}.Inv()
			if err != nil {
				return nil, &Error{Kind: KindDegenerateLine, Op: "reconstructQuotientAnswers"}
			}
			acc = acc.Add(num.Mul(dInv))
		}
		out[qi] = acc
	}
	return out, nil
}

func sortedUniqueInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	n := 0
	for i, p := range out {
		if i == 0 || p != out[n-1] {
			out[n] = p
			n++
		}
	}
	return out[:n]
}
