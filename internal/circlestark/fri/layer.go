package fri

import (
	"math/bits"
	"sort"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
	"github.com/vybium/circle-stark/internal/circlestark/merkle"
)

// sortedUnique returns positions deduplicated and sorted ascending.
func sortedUnique(positions []int) []int {
	out := append([]int(nil), positions...)
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

// subsetExpand groups sortedQueries by their key q>>foldStep and returns
// every position in each subset's span [key<<foldStep, key<<foldStep +
// 2^foldStep), sorted ascending with no duplicate subsets.
func subsetExpand(sortedQueries []int, foldStep, colLen int) ([]int, error) {
	if foldStep >= bits.UintSize {
		return nil, &Error{Kind: KindFoldStepTooLarge, Op: "subsetExpand"}
	}
	width := 1 << foldStep
	seenKey := make(map[int]bool)
	var keys []int
	for _, q := range sortedQueries {
		if q < 0 || q >= colLen {
			return nil, &Error{Kind: KindQueryOutOfRange, Op: "subsetExpand"}
		}
		k := q >> uint(foldStep)
		if !seenKey[k] {
			seenKey[k] = true
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	out := make([]int, 0, len(keys)*width)
	for _, k := range keys {
		start := k << uint(foldStep)
		for p := start; p < start+width; p++ {
			if p >= colLen {
				return nil, &Error{Kind: KindQueryOutOfRange, Op: "subsetExpand"}
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// LayerProof is one committed FRI layer's query decommitment: the Merkle
// hash witness plus the secure-field values at subset positions the
// verifier could not otherwise reconstruct from its query answers.
type LayerProof struct {
	Root          merkle.Hash
	Decommitment  merkle.Decommitment
	WitnessValues []m31.QM31
}

// DeepClone copies every slice l owns, so a verifier retaining l is immune
// to the caller mutating its original proof buffer afterwards.
func (l LayerProof) DeepClone() LayerProof {
	return LayerProof{
		Root:          l.Root,
		Decommitment:  l.Decommitment.DeepClone(),
		WitnessValues: append([]m31.QM31(nil), l.WitnessValues...),
	}
}

// coordinateColumns splits a secure-field column into its four base-field
// coordinate columns, the representation the lifted Merkle tree commits to.
func coordinateColumns(evals []m31.QM31) [][]m31.M31 {
	cols := make([][]m31.M31, 4)
	for c := range cols {
		cols[c] = make([]m31.M31, len(evals))
	}
	for i, v := range evals {
		arr := v.ToM31Array()
		for c := 0; c < 4; c++ {
			cols[c][i] = arr[c]
		}
	}
	return cols
}

// layerDecommit builds the LayerProof for a committed layer's evaluation
// column at the given sorted, deduplicated queries and fold step, and
// returns the expanded subset positions it decommitted (the caller uses
// these to isolate the layer's own query answers).
func layerDecommit(tree *merkle.Tree, evals []m31.QM31, sortedQueries []int, foldStep int) (LayerProof, []int, error) {
	expanded, err := subsetExpand(sortedQueries, foldStep, len(evals))
	if err != nil {
		return LayerProof{}, nil, err
	}
	queried := make(map[int]bool, len(sortedQueries))
	for _, q := range sortedQueries {
		queried[q] = true
	}
	var witness []m31.QM31
	for _, p := range expanded {
		if !queried[p] {
			witness = append(witness, evals[p])
		}
	}
	decommitment := tree.Decommit(expanded)
	return LayerProof{Root: tree.Root(), Decommitment: decommitment, WitnessValues: witness}, expanded, nil
}

// reconstructSubsetValues merges a layer's known query answers (keyed by
// sortedQueries, in order) with its witness values (filling the remaining
// expanded positions in order) to recover every value at expanded.
func reconstructSubsetValues(expanded, sortedQueries []int, answers, witness []m31.QM31) ([]m31.QM31, error) {
	queryVal := make(map[int]m31.QM31, len(sortedQueries))
	for i, q := range sortedQueries {
		queryVal[q] = answers[i]
	}
	out := make([]m31.QM31, len(expanded))
	wi := 0
	for i, p := range expanded {
		if v, ok := queryVal[p]; ok {
			out[i] = v
			continue
		}
		if wi >= len(witness) {
			return nil, &Error{Kind: KindShapeMismatch, Op: "reconstructSubsetValues", Msg: "witness too short"}
		}
		out[i] = witness[wi]
		wi++
	}
	if wi != len(witness) {
		return nil, &Error{Kind: KindShapeMismatch, Op: "reconstructSubsetValues", Msg: "witness too long"}
	}
	return out, nil
}

// nextQueries folds sortedQueries by foldStep and deduplicates.
func nextQueries(sortedQueries []int, foldStep int) []int {
	out := make([]int, len(sortedQueries))
	for i, q := range sortedQueries {
		out[i] = q >> uint(foldStep)
	}
	return sortedUnique(out)
}
