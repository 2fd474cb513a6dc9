package optimus

// MergeStep is one snapshot in a greedy merge sequence.
type MergeStep struct {
	// Labels is the clustering after this step's merge (the unchanged
	// input for step 0).
	Labels []int
	Groups int

	// SumAIC is the full sum-of-AIC for Labels.
	SumAIC float64
	Valid  bool

	// MergedPair holds the two labels collapsed to produce this step;
	// both are zero for the initial step.
	MergedPair [2]int
	// NewLabel is the merged cluster's label, drawn from the reserved
	// merge namespace; zero for the initial step.
	NewLabel int
}

// MergeSequence records the clustering after each committed greedy merge.
// Steps[0] is the scored input clustering; Steps[t] is the clustering after
// t merges.
type MergeSequence struct {
	Steps []MergeStep

	Family Family
	Trials int
}

// MergeClusters greedily agglomerates the given clustering: each iteration
// scores every pairwise merge of the current clusters and commits the one
// with the smallest sum-of-AIC increase. Ties go to the first pair in
// canonical order (labels ascending, pairs lexicographic). It runs
// cfg.Iterations merges, stopping early when one cluster remains or no
// candidate pair produces a valid score.
func MergeClusters(data *DataMatrix, labels []int, cfg Config) (*MergeSequence, error) {
	if err := prepare(data, &cfg); err != nil {
		return nil, err
	}
	if len(labels) != data.Rows() {
		return nil, lengthMismatch(len(labels), data.Rows())
	}
	fitter, err := fitterFor(cfg.Family, cfg.Trials)
	if err != nil {
		return nil, err
	}

	current := make([]int, len(labels))
	copy(current, labels)

	initial := scoreLabels(data, current, fitter, cfg.Workers)
	seq := &MergeSequence{
		Steps: []MergeStep{{
			Labels: current,
			Groups: initial.Groups,
			SumAIC: initial.SumAIC,
			Valid:  initial.Valid,
		}},
		Family: cfg.Family,
		Trials: cfg.Trials,
	}

	labeler := newMergeLabeler(current)

	for iter := 0; iter < cfg.Iterations; iter++ {
		levels := distinctLevels(current)
		if len(levels) <= 1 {
			break
		}

		pairs := make([][2]int, 0, len(levels)*(len(levels)-1)/2)
		for i := 0; i < len(levels); i++ {
			for j := i + 1; j < len(levels); j++ {
				pairs = append(pairs, [2]int{levels[i], levels[j]})
			}
		}

		trialLabel := labeler.alloc()
		trials := scorePairsParallel(data, current, pairs, trialLabel, fitter, cfg.Workers)

		best := -1
		for i, tr := range trials {
			if !tr.row.Valid {
				continue
			}
			if best < 0 || tr.row.SumAIC < trials[best].row.SumAIC {
				best = i
			}
		}
		if best < 0 {
			// Every candidate merge failed to score; nothing to commit.
			break
		}

		committed := trials[best]
		current = committed.row.Labels
		seq.Steps = append(seq.Steps, MergeStep{
			Labels:     current,
			Groups:     committed.row.Groups,
			SumAIC:     committed.row.SumAIC,
			Valid:      committed.row.Valid,
			MergedPair: [2]int{committed.a, committed.b},
			NewLabel:   trialLabel,
		})
	}

	return seq, nil
}
