package optimus

import (
	"fmt"
	"math"
	"sort"
)

// CharacteristicEntry describes how diagnostic one variable is of cluster
// membership.
type CharacteristicEntry struct {
	Variable string
	Column   int

	// Level is the cluster label the coefficient belongs to (per-cluster
	// tables only).
	Level int

	// Coefficient is the treatment-coded effect for Level on the link
	// scale; the reference level reports the model intercept.
	Coefficient float64
	StdErr      float64

	// DeltaAIC is AIC_null - AIC_clustering for this variable; positive
	// means cluster membership improves the variable's fit.
	DeltaAIC float64
}

// CharacteristicTable lists variables ranked by how strongly they
// discriminate between clusters: per cluster level (ranked by absolute
// coefficient) or globally (ranked by delta-AIC).
type CharacteristicTable struct {
	Type string

	// PerCluster maps each cluster label to its ranked variable list.
	// Nil for global tables.
	PerCluster map[int][]CharacteristicEntry

	// Global is the flat ranked variable list. Nil for per-cluster tables.
	Global []CharacteristicEntry

	// FailedColumns lists variables omitted because their fit failed under
	// either the clustering or the null model.
	FailedColumns []int

	Family Family
	Trials int
}

// Characteristic ranks the variables of data by how diagnostic they are of
// the given clustering. Per-cluster tables rank by absolute coefficient
// magnitude within each cluster level; global tables rank by delta-AIC
// against the single-group null model.
func Characteristic(data *DataMatrix, labels []int, cfg Config) (*CharacteristicTable, error) {
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

	d := newGroupDesign(labels)
	if d.k < 2 {
		return nil, fmt.Errorf("optimus: characteristic extraction needs at least 2 groups, got %d", d.k)
	}

	fits := fitColumnsParallel(data, d, fitter, cfg.Workers)
	nullDesign := newGroupDesign(nullClustering(data.Rows()))
	nullFits := fitColumnsParallel(data, nullDesign, fitter, cfg.Workers)

	table := &CharacteristicTable{
		Type:   cfg.CharacteristicType,
		Family: cfg.Family,
		Trials: cfg.Trials,
	}

	deltas := make([]float64, data.Cols())
	for j := 0; j < data.Cols(); j++ {
		if !fits[j].OK() || !nullFits[j].OK() {
			table.FailedColumns = append(table.FailedColumns, j)
			deltas[j] = math.NaN()
			continue
		}
		deltas[j] = DeltaAIC(nullFits[j].Fit, fits[j].Fit)
	}
	failed := make(map[int]bool, len(table.FailedColumns))
	for _, j := range table.FailedColumns {
		failed[j] = true
	}

	if cfg.CharacteristicType == Global {
		table.Global = globalRanking(data, deltas, failed)
		return table, nil
	}
	table.PerCluster = perClusterRanking(data, d, fits, deltas, failed)
	return table, nil
}

// globalRanking ranks all fitted variables by delta-AIC descending.
func globalRanking(data *DataMatrix, deltas []float64, failed map[int]bool) []CharacteristicEntry {
	entries := make([]CharacteristicEntry, 0, data.Cols())
	for j := 0; j < data.Cols(); j++ {
		if failed[j] {
			continue
		}
		entries = append(entries, CharacteristicEntry{
			Variable: data.Name(j),
			Column:   j,
			DeltaAIC: deltas[j],
		})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].DeltaAIC > entries[b].DeltaAIC
	})
	return entries
}

// perClusterRanking builds one ranked list per cluster level from a single
// fit per variable. Non-reference levels use their treatment-coded
// coefficient; the reference level uses the intercept.
func perClusterRanking(data *DataMatrix, d *groupDesign, fits []ColumnFit, deltas []float64, failed map[int]bool) map[int][]CharacteristicEntry {
	perCluster := make(map[int][]CharacteristicEntry, d.k)
	for pos, level := range d.levels {
		entries := make([]CharacteristicEntry, 0, data.Cols())
		for j := 0; j < data.Cols(); j++ {
			if failed[j] {
				continue
			}
			fit := fits[j].Fit
			coef, se := fit.Intercept, fit.InterceptSE
			if pos > 0 {
				coef, se = fit.Coefficients[pos-1], fit.StandardErrors[pos-1]
			}
			entries = append(entries, CharacteristicEntry{
				Variable:    data.Name(j),
				Column:      j,
				Level:       level,
				Coefficient: coef,
				StdErr:      se,
				DeltaAIC:    deltas[j],
			})
		}
		sort.SliceStable(entries, func(a, b int) bool {
			ca := math.Abs(entries[a].Coefficient)
			cb := math.Abs(entries[b].Coefficient)
			// NaN coefficients (ordinal reference level) sort last.
			if math.IsNaN(ca) {
				return false
			}
			if math.IsNaN(cb) {
				return true
			}
			return ca > cb
		})
		perCluster[level] = entries
	}
	return perCluster
}
