package optimus

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// AicRow is the scored result for one candidate clustering. Rows appear in
// the order candidates were generated, never sorted by score.
type AicRow struct {
	// Groups is the number of distinct labels in the clustering.
	Groups int

	// SumAIC is the sum of per-variable AIC values; lower is better.
	// NaN when the row is invalid.
	SumAIC float64

	// Valid is false when the candidate could not be built or any column
	// failed to fit; an invalid row is incomparable rather than favored.
	Valid bool

	// FailedColumns lists the indices of columns whose fits failed.
	FailedColumns []int

	// Labels is the candidate's label vector.
	Labels []int

	// Reason describes why the candidate itself could not be built
	// (override-mode cut failures); empty for scored rows.
	Reason string
}

// sumAIC aggregates per-column fits into a sum-of-AIC row for labels.
// Any failed column poisons the sum explicitly: the row is flagged invalid
// and the failing columns recorded, never silently zeroed.
func sumAIC(labels []int, groups int, fits []ColumnFit) AicRow {
	aics := make([]float64, 0, len(fits))
	var failed []int
	for _, cf := range fits {
		if !cf.OK() || math.IsNaN(cf.Fit.AIC) {
			failed = append(failed, cf.Column)
			continue
		}
		aics = append(aics, cf.Fit.AIC)
	}

	row := AicRow{
		Groups:        groups,
		Labels:        labels,
		FailedColumns: failed,
	}
	if len(failed) > 0 {
		row.SumAIC = math.NaN()
		return row
	}
	row.SumAIC = floats.Sum(aics)
	row.Valid = true
	return row
}

// DeltaAIC returns AIC_null - AIC_fit for one variable: how much the
// clustering improves on the single-group baseline. Positive means the
// clustering fits that variable better.
func DeltaAIC(nullFit, fit *FitResult) float64 {
	return nullFit.AIC - fit.AIC
}
