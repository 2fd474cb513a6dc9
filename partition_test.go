package optimus

import (
	"strings"
	"testing"
)

// fourLeafLinkage merges 0+1, then 2+3, then the two pairs.
func fourLeafLinkage() [][4]float64 {
	return [][4]float64{
		{0, 1, 0.5, 2},
		{2, 3, 0.6, 2},
		{4, 5, 1.0, 4},
	}
}

func TestCutLinkageLevels(t *testing.T) {
	linkage := fourLeafLinkage()

	tests := []struct {
		groups int
		want   []int
	}{
		{1, []int{0, 0, 0, 0}},
		{2, []int{0, 0, 1, 1}},
		{4, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		labels, err := CutLinkage(linkage, 4, tt.groups)
		if err != nil {
			t.Fatalf("groups=%d: unexpected error: %v", tt.groups, err)
		}
		if groupCount(labels) != tt.groups {
			t.Errorf("groups=%d: got %d distinct labels", tt.groups, groupCount(labels))
		}
		for i := range tt.want {
			if labels[i] != tt.want[i] {
				t.Errorf("groups=%d: labels = %v, want %v", tt.groups, labels, tt.want)
				break
			}
		}
	}
}

func TestCutLinkageThreeGroups(t *testing.T) {
	// Undoing the last two merges leaves {0,1} merged and 2, 3 alone.
	labels, err := CutLinkage(fourLeafLinkage(), 4, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != labels[1] {
		t.Errorf("observations 0 and 1 should share a group: %v", labels)
	}
	if labels[2] == labels[3] || labels[2] == labels[0] || labels[3] == labels[0] {
		t.Errorf("observations 2 and 3 should be singletons: %v", labels)
	}
}

func TestCutLinkageValidation(t *testing.T) {
	linkage := fourLeafLinkage()

	if _, err := CutLinkage(linkage, 4, 5); err == nil {
		t.Error("expected error for cut level exceeding observation count")
	}
	if _, err := CutLinkage(linkage, 4, 0); err == nil {
		t.Error("expected error for cut level below 1")
	}
	if _, err := CutLinkage(linkage[:2], 4, 2); err == nil {
		t.Error("expected error for truncated linkage")
	}
	bad := fourLeafLinkage()
	bad[0][1] = 9 // references a cluster that cannot exist yet
	if _, err := CutLinkage(bad, 4, 2); err == nil {
		t.Error("expected error for out-of-range cluster reference")
	}
}

func TestEnumerateAutoDetect(t *testing.T) {
	cfg := DefaultConfig()
	applyDefaults(&cfg)
	cfg.CutLevels = []int{2}

	cands, mode, err := enumerate(ClusteringInput{Linkage: fourLeafLinkage()}, 4, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeHierarchy {
		t.Errorf("mode: got %q, want %q", mode, ModeHierarchy)
	}
	if len(cands) != 1 || cands[0].groups != 2 {
		t.Errorf("candidates: got %+v", cands)
	}

	_, mode, err = enumerate(ClusteringInput{Labels: [][]int{{0, 0, 1, 1}}}, 4, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeList {
		t.Errorf("mode: got %q, want %q", mode, ModeList)
	}
}

func TestEnumerateAmbiguousInput(t *testing.T) {
	cfg := DefaultConfig()
	applyDefaults(&cfg)

	if _, _, err := enumerate(ClusteringInput{}, 4, cfg); err == nil {
		t.Error("expected error when neither input field is set")
	}
	both := ClusteringInput{Linkage: fourLeafLinkage(), Labels: [][]int{{0, 0, 1, 1}}}
	if _, _, err := enumerate(both, 4, cfg); err == nil {
		t.Error("expected error when both input fields are set")
	}
	// An explicit mode resolves the ambiguity.
	cfg.Mode = ModeList
	if _, _, err := enumerate(both, 4, cfg); err != nil {
		t.Errorf("unexpected error with explicit mode: %v", err)
	}
}

func TestEnumerateListValidation(t *testing.T) {
	cfg := DefaultConfig()
	applyDefaults(&cfg)

	if _, _, err := enumerate(ClusteringInput{Labels: [][]int{}}, 4, cfg); err == nil {
		t.Error("expected error for empty clustering list")
	}
	short := ClusteringInput{Labels: [][]int{{0, 1}}}
	_, _, err := enumerate(short, 4, cfg)
	if err == nil {
		t.Fatal("expected error for label vector length mismatch")
	}
	if !strings.Contains(err.Error(), "2 labels for 4 observations") {
		t.Errorf("error should identify the offending vector: %v", err)
	}
}

func TestEnumerateListDerivesGroupCounts(t *testing.T) {
	cfg := DefaultConfig()
	applyDefaults(&cfg)

	input := ClusteringInput{Labels: [][]int{
		{5, 5, 5, 5},
		{0, 0, 7, 7},
		{1, 2, 3, 4},
	}}
	cands, _, err := enumerate(input, 4, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantGroups := []int{1, 2, 4}
	for i, g := range wantGroups {
		if cands[i].groups != g {
			t.Errorf("candidate %d: got %d groups, want %d", i, cands[i].groups, g)
		}
	}
}

func TestEnumerateOverrideValidation(t *testing.T) {
	cfg := DefaultConfig()
	applyDefaults(&cfg)
	cfg.CutLevels = []int{2, 9}

	// Without the override, a bad cut level fails the whole enumeration.
	if _, _, err := enumerate(ClusteringInput{Linkage: fourLeafLinkage()}, 4, cfg); err == nil {
		t.Fatal("expected error for cut level 9 on 4 observations")
	}

	cfg.OverrideValidation = true
	cands, _, err := enumerate(ClusteringInput{Linkage: fourLeafLinkage()}, 4, cfg)
	if err != nil {
		t.Fatalf("unexpected error with override: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(cands))
	}
	if cands[0].err != nil {
		t.Errorf("valid level should have no error: %v", cands[0].err)
	}
	if cands[1].err == nil {
		t.Error("invalid level should carry its error")
	}
}
