package optimus

import "fmt"

// ClusteringInput supplies the candidate partitions to score: either a
// cuttable hierarchy or an explicit list of label vectors. Exactly one field
// must be set unless Config.Mode forces an interpretation.
type ClusteringInput struct {
	// Linkage is a scipy-format binary merge tree over the observations:
	// each row is [left, right, distance, size] and merged cluster IDs
	// start at the number of observations.
	Linkage [][4]float64

	// Labels is an explicit list of complete clusterings; every vector must
	// have one label per observation.
	Labels [][]int
}

// candidate is one enumerated clustering awaiting scoring.
type candidate struct {
	labels []int
	groups int
	err    error // set when a cut level failed under OverrideValidation
}

// CutLinkage cuts a scipy-format linkage over n observations into exactly
// groups clusters by undoing its last groups-1 merges. Labels are assigned
// by first occurrence, so the result has labels 0..groups-1.
func CutLinkage(linkage [][4]float64, n, groups int) ([]int, error) {
	if groups < 1 {
		return nil, fmt.Errorf("optimus: cut level must be >= 1, got %d", groups)
	}
	if groups > n {
		return nil, fmt.Errorf("optimus: cut level %d exceeds observation count %d", groups, n)
	}
	if len(linkage) != n-1 {
		return nil, fmt.Errorf("optimus: linkage has %d merges for %d observations, want %d", len(linkage), n, n-1)
	}

	uf := newUnionFind(n)
	for t := 0; t < n-groups; t++ {
		left := int(linkage[t][0])
		right := int(linkage[t][1])
		if left < 0 || left >= n+t || right < 0 || right >= n+t {
			return nil, fmt.Errorf("optimus: linkage row %d references cluster out of range", t)
		}
		uf.merge(left, right, n+t)
	}

	labels := make([]int, n)
	next := 0
	byRoot := make(map[int]int, groups)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		l, ok := byRoot[root]
		if !ok {
			l = next
			byRoot[root] = l
			next++
		}
		labels[i] = l
	}
	if next != groups {
		return nil, fmt.Errorf("optimus: linkage cut produced %d groups, want %d (malformed hierarchy)", next, groups)
	}
	return labels, nil
}

// enumerate produces the candidate clusterings for input under cfg,
// returning them with the resolved mode. Validation failures abort unless
// cfg.OverrideValidation turns them into per-candidate invalid entries.
func enumerate(input ClusteringInput, n int, cfg Config) ([]candidate, Mode, error) {
	mode := cfg.Mode
	if mode == ModeAuto {
		switch {
		case input.Linkage != nil && input.Labels != nil:
			return nil, mode, fmt.Errorf("optimus: ClusteringInput sets both Linkage and Labels; set Config.Mode to choose")
		case input.Linkage != nil:
			mode = ModeHierarchy
		case input.Labels != nil:
			mode = ModeList
		default:
			return nil, mode, fmt.Errorf("optimus: ClusteringInput sets neither Linkage nor Labels")
		}
	}

	switch mode {
	case ModeHierarchy:
		cands, err := enumerateHierarchy(input.Linkage, n, cfg)
		return cands, mode, err
	default:
		cands, err := enumerateList(input.Labels, n)
		return cands, mode, err
	}
}

func enumerateHierarchy(linkage [][4]float64, n int, cfg Config) ([]candidate, error) {
	if linkage == nil {
		return nil, fmt.Errorf("optimus: hierarchy mode requires ClusteringInput.Linkage")
	}
	if len(cfg.CutLevels) == 0 {
		return nil, fmt.Errorf("optimus: CutLevels must not be empty in hierarchy mode")
	}

	cands := make([]candidate, 0, len(cfg.CutLevels))
	for _, g := range cfg.CutLevels {
		labels, err := CutLinkage(linkage, n, g)
		if err != nil {
			if !cfg.OverrideValidation {
				return nil, err
			}
			cands = append(cands, candidate{groups: g, err: err})
			continue
		}
		cands = append(cands, candidate{labels: labels, groups: g})
	}
	return cands, nil
}

func enumerateList(labels [][]int, n int) ([]candidate, error) {
	if labels == nil {
		return nil, fmt.Errorf("optimus: list mode requires ClusteringInput.Labels")
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("optimus: clustering list must not be empty")
	}

	cands := make([]candidate, 0, len(labels))
	for i, l := range labels {
		if len(l) != n {
			return nil, fmt.Errorf("optimus: clustering %d has %d labels for %d observations", i, len(l), n)
		}
		cands = append(cands, candidate{labels: l, groups: groupCount(l)})
	}
	return cands, nil
}
