package optimus

import "testing"

// fourClusterData builds 8 observations in 4 clusters of 2, where clusters
// 0 and 1 share a low-count regime and clusters 2 and 3 share distinct
// higher regimes.
func fourClusterData(t *testing.T) (*DataMatrix, []int) {
	t.Helper()
	rows := [][]float64{
		{2, 1}, {3, 2},
		{2, 2}, {3, 1},
		{12, 9}, {11, 10},
		{30, 25}, {29, 24},
	}
	data, err := NewDataMatrix(rows, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels := []int{0, 0, 1, 1, 2, 2, 3, 3}
	return data, labels
}

func TestMergeClustersZeroIterations(t *testing.T) {
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seq.Steps) != 1 {
		t.Fatalf("steps: got %d, want 1", len(seq.Steps))
	}
	step := seq.Steps[0]
	if step.Groups != 4 {
		t.Errorf("groups: got %d, want 4", step.Groups)
	}
	for i, l := range labels {
		if step.Labels[i] != l {
			t.Fatalf("input clustering must be unchanged: got %v", step.Labels)
		}
	}
	if !step.Valid {
		t.Error("initial step should score as valid")
	}
}

func TestMergeClustersMonotoneGroupDecrease(t *testing.T) {
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	cfg.Iterations = 3
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seq.Steps) != 4 {
		t.Fatalf("steps: got %d, want 4", len(seq.Steps))
	}
	for tIdx, step := range seq.Steps {
		want := 4 - tIdx
		if step.Groups != want {
			t.Errorf("step %d: got %d groups, want %d", tIdx, step.Groups, want)
		}
		if got := groupCount(step.Labels); got != want {
			t.Errorf("step %d labels: got %d distinct, want %d", tIdx, got, want)
		}
	}
}

func TestMergeClustersStopsAtOneGroup(t *testing.T) {
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	cfg.Iterations = 50 // far beyond group_count - 1
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seq.Steps) != 4 {
		t.Fatalf("steps: got %d, want 4 (stop at one group, no error)", len(seq.Steps))
	}
	last := seq.Steps[len(seq.Steps)-1]
	if last.Groups != 1 {
		t.Errorf("final groups: got %d, want 1", last.Groups)
	}
}

func TestMergeClustersPicksMostSimilarPairFirst(t *testing.T) {
	// Clusters 0 and 1 are statistically identical; collapsing them should
	// cost the least.
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	cfg.Iterations = 1
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	step := seq.Steps[1]
	if step.MergedPair != [2]int{0, 1} {
		t.Errorf("merged pair: got %v, want [0 1]", step.MergedPair)
	}
}

func TestMergeClustersGreedyStepOptimality(t *testing.T) {
	// The committed merge must score no worse than every other candidate
	// pair at that step, recomputed independently.
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	cfg.Iterations = 1
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	committed := seq.Steps[1].SumAIC

	levels := distinctLevels(labels)
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			trial := relabelPair(labels, levels[i], levels[j], mergeLabelBase+99)
			_, row, err := FitClustering(data, trial, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if row.Valid && row.SumAIC < committed-1e-9 {
				t.Errorf("pair (%d,%d) scores %g, better than committed %g",
					levels[i], levels[j], row.SumAIC, committed)
			}
		}
	}
}

func TestMergeClustersReservedLabels(t *testing.T) {
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	cfg.Iterations = 2
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[int]bool{0: true, 1: true, 2: true, 3: true}
	for _, step := range seq.Steps[1:] {
		if step.NewLabel < mergeLabelBase {
			t.Errorf("merge label %d below reserved base", step.NewLabel)
		}
		if seen[step.NewLabel] {
			t.Errorf("merge label %d reused", step.NewLabel)
		}
		seen[step.NewLabel] = true
		if !seen[step.MergedPair[0]] || !seen[step.MergedPair[1]] {
			t.Errorf("merged pair %v references an unknown label", step.MergedPair)
		}
	}
}

func TestMergeClustersProvenance(t *testing.T) {
	data, labels := fourClusterData(t)

	cfg := DefaultConfig()
	cfg.Family = FamilyPoisson
	seq, err := MergeClusters(data, labels, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.Family != FamilyPoisson || seq.Trials != 1 {
		t.Errorf("provenance: got family=%q trials=%d", seq.Family, seq.Trials)
	}
}
