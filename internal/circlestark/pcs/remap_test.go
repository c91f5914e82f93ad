package pcs

import "testing"

// TestPreprocessedRemapScenarioD reproduces the two concrete remap cases
// named for the lifting_log_size=8/pp_max_log_size=6 query set (lifting
// above the preprocessed size) and the same positions with the sizes
// swapped (lifting below the preprocessed size).
func TestPreprocessedRemapScenarioD(t *testing.T) {
	positions := []int{3, 7, 11, 15}

	above := PreprocessedRemapAll(positions, 8, 6)
	wantAbove := []int{1, 1, 3, 3}
	for i := range wantAbove {
		if above[i] != wantAbove[i] {
			t.Fatalf("lifting>pp: remap(%d) = %d, want %d", positions[i], above[i], wantAbove[i])
		}
	}

	below := PreprocessedRemapAll(positions, 6, 8)
	wantBelow := []int{9, 25, 41, 57}
	for i := range wantBelow {
		if below[i] != wantBelow[i] {
			t.Fatalf("lifting<pp: remap(%d) = %d, want %d", positions[i], below[i], wantBelow[i])
		}
	}
}

func TestPreprocessedRemapEmptyWhenNoPreprocessedTree(t *testing.T) {
	if got := PreprocessedRemapAll([]int{1, 2, 3}, 8, 0); got != nil {
		t.Fatalf("expected nil remap set when pp_max_log_size=0, got %v", got)
	}
}
