package merkle

import (
	"fmt"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

// Decommitment supplies the sibling hashes a verifier cannot recompute from
// queried values alone, in the order Tree.Decommit visits them (bottom-up,
// left to right within each layer).
type Decommitment struct {
	HashWitness []Hash
}

// DeepClone copies HashWitness into a freshly allocated slice, so a
// verifier that retains d cannot be affected by the caller later mutating
// its original buffer.
func (d Decommitment) DeepClone() Decommitment {
	return Decommitment{HashWitness: append([]Hash(nil), d.HashWitness...)}
}

// Tree is a lifted Merkle tree: its leaves are rows across one or more
// columns that all share LogSize. Layers[0] holds the 2^LogSize leaf
// hashes; Layers[k] holds the parents at depth k; Layers[LogSize] is the
// one-element root layer.
type Tree struct {
	hasher  Hasher
	logSize int
	columns [][]m31.M31
	layers  [][]Hash
}

// Commit builds a lifted Merkle tree over columns, all of which must share
// a common power-of-two length.
func Commit(hasher Hasher, columns [][]m31.M31) (*Tree, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("merkle: Commit: at least one column is required")
	}
	n := len(columns[0])
	logSize := 0
	for 1<<logSize < n {
		logSize++
	}
	if 1<<logSize != n || n == 0 {
		return nil, fmt.Errorf("merkle: Commit: column length %d is not a power of two", n)
	}
	for _, c := range columns {
		if len(c) != n {
			return nil, fmt.Errorf("merkle: Commit: column length mismatch: %d vs %d", len(c), n)
		}
	}

	leaves := make([]Hash, n)
	for row := 0; row < n; row++ {
		state := hasher.NewLeafState()
		for _, col := range columns {
			state.UpdateLeaf(col[row])
		}
		leaves[row] = state.Finalize()
	}

	layers := make([][]Hash, 0, logSize+1)
	layers = append(layers, leaves)
	cur := leaves
	for len(cur) > 1 {
		next := make([]Hash, len(cur)/2)
		for i := range next {
			next[i] = hasher.HashChildren(cur[2*i], cur[2*i+1])
		}
		layers = append(layers, next)
		cur = next
	}

	return &Tree{hasher: hasher, logSize: logSize, columns: columns, layers: layers}, nil
}

// Root returns the committed root hash.
func (t *Tree) Root() Hash {
	return t.layers[len(t.layers)-1][0]
}

// LogSize returns the tree's shared column log-size.
func (t *Tree) LogSize() int {
	return t.logSize
}

// QueriedValues returns, for every column, the values at positions (sorted,
// strictly increasing, each in [0, 2^LogSize)).
func (t *Tree) QueriedValues(positions []int) [][]m31.M31 {
	out := make([][]m31.M31, len(t.columns))
	for c, col := range t.columns {
		vals := make([]m31.M31, len(positions))
		for i, p := range positions {
			vals[i] = col[p]
		}
		out[c] = vals
	}
	return out
}

// Decommit produces the sibling witness for positions (sorted, strictly
// increasing, each in [0, 2^LogSize)): every sibling hash the verifier
// cannot derive from the queried leaves and other witness hashes, visited
// bottom-up, left to right.
func (t *Tree) Decommit(positions []int) Decommitment {
	cur := append([]int(nil), positions...)
	curHashes := make([]Hash, len(cur))
	for i, p := range cur {
		curHashes[i] = t.layers[0][p]
	}

	var witness []Hash
	for layer := 0; layer < t.logSize; layer++ {
		var nextPositions []int
		var nextHashes []Hash
		i := 0
		for i < len(cur) {
			pos := cur[i]
			sibling := pos ^ 1
			var left, right Hash
			if i+1 < len(cur) && cur[i+1] == sibling {
				left, right = orderedPair(pos, curHashes[i], curHashes[i+1])
				i += 2
			} else {
				siblingHash := t.layers[layer][sibling]
				witness = append(witness, siblingHash)
				left, right = orderedPair(pos, curHashes[i], siblingHash)
				i++
			}
			nextPositions = append(nextPositions, pos>>1)
			nextHashes = append(nextHashes, t.hasher.HashChildren(left, right))
		}
		cur, curHashes = nextPositions, nextHashes
	}
	return Decommitment{HashWitness: witness}
}

// orderedPair places h at the side matching pos's parity: even positions
// are left children, odd positions are right children.
func orderedPair(pos int, h, sibling Hash) (left, right Hash) {
	if pos%2 == 0 {
		return h, sibling
	}
	return sibling, h
}

// Verify checks a lifted Merkle decommitment against root: positions must
// be sorted (non-decreasing); queriedValuesByColumn holds, per column, one
// value per entry of positions (adjacent duplicate positions collapse, but
// every column must agree on the value at each duplicate).
func Verify(hasher Hasher, root Hash, logSize int, positions []int, queriedValuesByColumn [][]m31.M31, decommitment Decommitment) error {
	for _, col := range queriedValuesByColumn {
		if len(col) < len(positions) {
			return &Error{Kind: KindWitnessTooShort, Op: "Verify", Msg: "column has fewer values than positions"}
		}
		if len(col) > len(positions) {
			return &Error{Kind: KindWitnessTooLong, Op: "Verify", Msg: "column has unconsumed trailing values"}
		}
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] != positions[i-1] {
			continue
		}
		for _, col := range queriedValuesByColumn {
			if col[i] != col[i-1] {
				return &Error{Kind: KindRootMismatch, Op: "Verify", Msg: "columns disagree on duplicate-position value"}
			}
		}
	}

	uniquePositions := make([]int, 0, len(positions))
	dedupCols := make([][]m31.M31, len(queriedValuesByColumn))
	for c := range dedupCols {
		dedupCols[c] = make([]m31.M31, 0, len(positions))
	}
	for i, p := range positions {
		if i > 0 && p == positions[i-1] {
			continue
		}
		uniquePositions = append(uniquePositions, p)
		for c, col := range queriedValuesByColumn {
			dedupCols[c] = append(dedupCols[c], col[i])
		}
	}

	leafHashes := make([]Hash, len(uniquePositions))
	for i := range uniquePositions {
		state := hasher.NewLeafState()
		for _, col := range dedupCols {
			state.UpdateLeaf(col[i])
		}
		leafHashes[i] = state.Finalize()
	}

	cur := uniquePositions
	curHashes := leafHashes
	witness := decommitment.HashWitness
	widx := 0
	for layer := 0; layer < logSize; layer++ {
		var nextPositions []int
		var nextHashes []Hash
		i := 0
		for i < len(cur) {
			pos := cur[i]
			sibling := pos ^ 1
			var left, right Hash
			if i+1 < len(cur) && cur[i+1] == sibling {
				left, right = orderedPair(pos, curHashes[i], curHashes[i+1])
				i += 2
			} else {
				if widx >= len(witness) {
					return &Error{Kind: KindWitnessTooShort, Op: "Verify"}
				}
				left, right = orderedPair(pos, curHashes[i], witness[widx])
				widx++
				i++
			}
			nextPositions = append(nextPositions, pos>>1)
			nextHashes = append(nextHashes, hasher.HashChildren(left, right))
		}
		cur, curHashes = nextPositions, nextHashes
	}

	if widx != len(witness) {
		return &Error{Kind: KindWitnessTooLong, Op: "Verify"}
	}
	if len(curHashes) != 1 || curHashes[0] != root {
		return &Error{Kind: KindRootMismatch, Op: "Verify"}
	}
	return nil
}
