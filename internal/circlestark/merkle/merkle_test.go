package merkle

import (
	"math/rand"
	"testing"

	"github.com/vybium/circle-stark/internal/circlestark/m31"
)

func randomColumns(r *rand.Rand, numCols, n int) [][]m31.M31 {
	cols := make([][]m31.M31, numCols)
	for c := range cols {
		col := make([]m31.M31, n)
		for i := range col {
			col[i] = m31.FromU64(r.Uint64())
		}
		cols[c] = col
	}
	return cols
}

func TestCommitDecommitVerifyRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, logSize := range []int{1, 2, 5, 8} {
		n := 1 << logSize
		cols := randomColumns(r, 3, n)
		tree, err := Commit(Blake2sHasher{}, cols)
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		positions := []int{0, 1, n / 2, n - 1}
		if n == 1 {
			positions = []int{0}
		}
		queried := tree.QueriedValues(positions)
		dec := tree.Decommit(positions)
		if err := Verify(Blake2sHasher{}, tree.Root(), logSize, positions, queried, dec); err != nil {
			t.Fatalf("log_size=%d: Verify failed: %v", logSize, err)
		}
	}
}

func TestVerifyRejectsFlippedQueriedValue(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	n := 16
	cols := randomColumns(r, 2, n)
	tree, err := Commit(Blake2sHasher{}, cols)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	positions := []int{3, 9}
	queried := tree.QueriedValues(positions)
	dec := tree.Decommit(positions)
	queried[0][0] = queried[0][0].Add(m31.One)
	if err := Verify(Blake2sHasher{}, tree.Root(), tree.LogSize(), positions, queried, dec); err == nil {
		t.Fatal("expected verification failure on flipped queried value")
	}
}

func TestVerifyRejectsFlippedWitnessByte(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	n := 16
	cols := randomColumns(r, 2, n)
	tree, err := Commit(Blake2sHasher{}, cols)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	positions := []int{3, 9}
	queried := tree.QueriedValues(positions)
	dec := tree.Decommit(positions)
	if len(dec.HashWitness) == 0 {
		t.Fatal("expected a non-empty witness for this query pattern")
	}
	dec.HashWitness[0][0] ^= 0xFF
	if err := Verify(Blake2sHasher{}, tree.Root(), tree.LogSize(), positions, queried, dec); err == nil {
		t.Fatal("expected verification failure on flipped witness byte")
	}
}

func TestVerifyRejectsWrongRoot(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	n := 8
	cols := randomColumns(r, 1, n)
	tree, err := Commit(Blake2sHasher{}, cols)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	positions := []int{2}
	queried := tree.QueriedValues(positions)
	dec := tree.Decommit(positions)
	badRoot := tree.Root()
	badRoot[0] ^= 1
	if err := Verify(Blake2sHasher{}, badRoot, tree.LogSize(), positions, queried, dec); err == nil {
		t.Fatal("expected RootMismatch for a tampered root")
	}
}

func TestDuplicateAdjacentPositionsMustAgree(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	n := 8
	cols := randomColumns(r, 2, n)
	tree, err := Commit(Blake2sHasher{}, cols)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	positions := []int{2, 2, 5}
	queried := tree.QueriedValues([]int{2, 5})
	expanded := make([][]m31.M31, len(queried))
	for c, col := range queried {
		expanded[c] = []m31.M31{col[0], col[0], col[1]}
	}
	dec := tree.Decommit([]int{2, 5})
	if err := Verify(Blake2sHasher{}, tree.Root(), tree.LogSize(), positions, expanded, dec); err != nil {
		t.Fatalf("expected agreeing duplicate to verify: %v", err)
	}
	expanded[0][1] = expanded[0][1].Add(m31.One)
	if err := Verify(Blake2sHasher{}, tree.Root(), tree.LogSize(), positions, expanded, dec); err == nil {
		t.Fatal("expected disagreement on duplicate position to fail")
	}
}

func TestSha3HasherRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	n := 32
	cols := randomColumns(r, 2, n)
	tree, err := Commit(Sha3Hasher{}, cols)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	positions := []int{1, 2, 3, 17}
	queried := tree.QueriedValues(positions)
	dec := tree.Decommit(positions)
	if err := Verify(Sha3Hasher{}, tree.Root(), tree.LogSize(), positions, queried, dec); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}
