package pcs

import (
	"github.com/vybium/circle-stark/internal/circlestark/channel"
	"github.com/vybium/circle-stark/internal/circlestark/circle"
	"github.com/vybium/circle-stark/internal/circlestark/component"
	"github.com/vybium/circle-stark/internal/circlestark/fri"
	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
)

// ProverColumn is one committed column's input: its natural trace log
// size and the stored coefficients the prover keeps around for both the
// extended-domain evaluation and the out-of-domain openings.
type ProverColumn struct {
	LogSize int
	Coeffs  circle.CircleCoefficients
}

// committedTree holds a tree index's evaluated, committed state. A tree
// with no columns is skipped entirely: no domain, no Merkle tree, no root
// mixed into the channel.
type committedTree struct {
	logSize int
	domain  circle.CircleDomain
	coeffs  []circle.CircleCoefficients
	evals   [][]m31.M31
	tree    *merkle.Tree
}

func (t *committedTree) empty() bool { return t.tree == nil }

// Prover commits a TreeVec of columns, then answers sampled openings with
// batched quotients and a FRI proof over their accumulation.
//
// Every non-empty tree's columns must share one log size, and every
// non-empty tree across the whole TreeVec must share that same log size
// too: this generalizes the lifted Merkle tree's single-log-size-per-tree
// simplification one level further, to a single log size per commitment,
// keeping the quotient accumulation a single pass over one domain instead
// of needing per-tree periodicity lifting.
type Prover struct {
	hasher merkle.Hasher
	config Config
	trees  []committedTree
}

// Commit evaluates every column onto its blown-up extended domain, builds
// one lifted Merkle tree per non-empty committed tree, and mixes each root
// into ch in tree order.
func Commit(ch *channel.Channel, hasher merkle.Hasher, config Config, columns component.TreeVec[[]ProverColumn]) (*Prover, error) {
	config.MixInto(ch)

	trees := make([]committedTree, len(columns.Trees))
	sharedLogSize := -1
	for i, cols := range columns.Trees {
		if len(cols) == 0 {
			continue
		}
		logSize := cols[0].LogSize
		for _, c := range cols {
			if c.LogSize != logSize {
				return nil, &Error{Kind: KindShapeMismatch, Op: "Commit", Msg: "columns within one tree must share a log size"}
			}
		}
		if sharedLogSize == -1 {
			sharedLogSize = logSize
		} else if sharedLogSize != logSize {
			return nil, &Error{Kind: KindShapeMismatch, Op: "Commit", Msg: "every non-empty tree must share one commitment log size"}
		}

		extendedLogSize := logSize + int(config.Fri.LogBlowupFactor)
		canonic, err := circle.NewCanonicCoset(extendedLogSize)
		if err != nil {
			return nil, err
		}
		domain := canonic.CircleDomain()

		coeffs := make([]circle.CircleCoefficients, len(cols))
		evalCols := make([][]m31.M31, len(cols))
		for c, col := range cols {
			coeffs[c] = col.Coeffs
			evalCols[c] = col.Coeffs.Evaluate(domain)
		}
		tree, err := merkle.Commit(hasher, evalCols)
		if err != nil {
			return nil, err
		}
		ch.MixRoot(tree.Root())

		trees[i] = committedTree{logSize: extendedLogSize, domain: domain, coeffs: coeffs, evals: evalCols, tree: tree}
	}
	return &Prover{hasher: hasher, config: config, trees: trees}, nil
}

// sampledEntry is a flattened (tree, column) reference alongside a sampled
// point, carried through batching so the quotient stage can map a
// ColumnSampleBatch's global column index back to its evaluation column.
type sampledEntry struct {
	treeIdx, colIdx int
	point           circle.CirclePoint[m31.QM31]
}

func flattenSamples(sampledPoints component.TreeVec[[][]circle.CirclePoint[m31.QM31]]) []sampledEntry {
	var out []sampledEntry
	for t, perColumn := range sampledPoints.Trees {
		for c, points := range perColumn {
			for _, p := range points {
				out = append(out, sampledEntry{treeIdx: t, colIdx: c, point: p})
			}
		}
	}
	return out
}

// Proof is the PCS proof: the committed roots (one per non-empty tree, in
// tree order), the claimed out-of-domain values matching the caller's
// sampledPoints shape, the per-tree query decommitments, the grinding
// nonce, and the FRI proof over the quotient accumulation.
type Proof struct {
	TreeRoots     []merkle.Hash
	OodValues     component.TreeVec[[][]m31.QM31]
	QueriedValues [][][]m31.M31
	Decommitments []merkle.Decommitment
	Nonce         uint64
	Fri           *fri.Proof
}

// ProveValues evaluates every sampled point against its column's stored
// coefficients, mixes the claimed values and a PoW nonce into the channel,
// builds the batched quotient column, and produces its FRI proof plus a
// Merkle decommitment of every committed tree at the FRI query positions.
func (p *Prover) ProveValues(ch *channel.Channel, sampledPoints component.TreeVec[[][]circle.CirclePoint[m31.QM31]]) (*Proof, error) {
	nonEmpty := 0
	var domain circle.CircleDomain
	for _, t := range p.trees {
		if !t.empty() {
			nonEmpty++
			domain = t.domain
		}
	}
	if nonEmpty == 0 {
		return nil, &Error{Kind: KindEmptyTrees, Op: "ProveValues"}
	}

	flat := flattenSamples(sampledPoints)
	if len(flat) == 0 {
		return nil, &Error{Kind: KindEmptySampledSet, Op: "ProveValues"}
	}

	oodValues := component.Map(sampledPoints, func(perColumn [][]circle.CirclePoint[m31.QM31]) [][]m31.QM31 {
		out := make([][]m31.QM31, len(perColumn))
		for c := range perColumn {
			out[c] = make([]m31.QM31, len(perColumn[c]))
		}
		return out
	})
	values := make([]m31.QM31, len(flat))
	for i, e := range flat {
		values[i] = p.trees[e.treeIdx].coeffs[e.colIdx].EvalAtSecurePoint(e.point)
	}
	// Re-walk in the same order to fill the per-(tree,column) slot, since
	// flattenSamples and the shape walk above both iterate tree-major,
	// column-major, point-major.
	idx := 0
	for t, perColumn := range sampledPoints.Trees {
		for c, points := range perColumn {
			for k := range points {
				oodValues.Trees[t][c][k] = values[idx]
				idx++
			}
		}
	}
	for _, tree := range oodValues.Trees {
		for _, col := range tree {
			ch.MixFelts(col)
		}
	}

	alpha0 := ch.DrawSecureFelt()
	randomCoeffs := make([]m31.QM31, len(flat))
	power := alpha0
	for i := range randomCoeffs {
		randomCoeffs[i] = power
		power = power.Mul(alpha0)
	}

	globalColumn := make([][]m31.M31, len(flat))
	points := make([]circle.CirclePoint[m31.QM31], len(flat))
	for i, e := range flat {
		globalColumn[i] = p.trees[e.treeIdx].evals[e.colIdx]
		points[i] = e.point
	}
	columnIdx := make([]int, len(flat))
	for i := range columnIdx {
		columnIdx[i] = i
	}
	batches := component.GroupSamplesByPoint(points, columnIdx, values, randomCoeffs)

	quotient, err := accumulateQuotients(batches, globalColumn, domain)
	if err != nil {
		return nil, err
	}

	friProver, err := fri.Commit(ch, merkle.Blake2sHasher{}, p.config.Fri, domain, quotient)
	if err != nil {
		return nil, err
	}
	nonce, err := ch.Grind(p.config.PowBits)
	if err != nil {
		return nil, err
	}
	friProof, queries, err := friProver.Decommit(ch)
	if err != nil {
		return nil, err
	}

	roots := make([]merkle.Hash, 0, nonEmpty)
	queriedValues := make([][][]m31.M31, 0, nonEmpty)
	decommitments := make([]merkle.Decommitment, 0, nonEmpty)
	for _, t := range p.trees {
		if t.empty() {
			continue
		}
		roots = append(roots, t.tree.Root())
		queriedValues = append(queriedValues, t.tree.QueriedValues(queries))
		decommitments = append(decommitments, t.tree.Decommit(queries))
	}

	return &Proof{
		TreeRoots:     roots,
		OodValues:     oodValues,
		QueriedValues: queriedValues,
		Decommitments: decommitments,
		Nonce:         nonce,
		Fri:           friProof,
	}, nil
}
