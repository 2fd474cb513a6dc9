package optimus

import "fmt"

// FitResult holds one fitted per-variable model for a clustering. The
// predictor is treatment coded: a clustering with k groups yields an
// intercept (reference level, smallest label) plus k-1 offset coefficients.
type FitResult struct {
	// Levels are the non-reference cluster labels, aligned with
	// Coefficients and StandardErrors.
	Levels []int

	// Intercept is the reference-level estimate on the link scale.
	// The ordinal family has no intercept and reports NaN.
	Intercept   float64
	InterceptSE float64

	// Coefficients are the treatment-coded offsets for the non-reference
	// levels, on the link scale.
	Coefficients   []float64
	StandardErrors []float64

	LogLik float64
	// Params is the number of estimated parameters, including any
	// dispersion or cutpoint parameters.
	Params int
	AIC    float64

	// Converged reports whether the underlying optimization reached its
	// tolerance. Best-effort estimates returned at the iteration cap keep
	// it false.
	Converged bool

	// Sigma2 is the Gaussian residual variance (maximum-likelihood
	// estimate); zero for other families.
	Sigma2 float64
	// Theta is the negative-binomial dispersion; zero for other families.
	Theta float64
	// Cutpoints are the ordinal cumulative-logit thresholds; nil for other
	// families.
	Cutpoints []float64
}

// ColumnFit is the typed outcome of fitting one data column: either a valid
// FitResult or the error that prevented one. A failed column degrades only
// its own contribution, never the whole batch.
type ColumnFit struct {
	Column int
	Fit    *FitResult
	Err    error
}

// OK reports whether the column produced a usable fit.
func (c ColumnFit) OK() bool { return c.Err == nil && c.Fit != nil }

// columnFitter fits one response column against a clustering design.
// One implementation per family; adding a family means adding one fitter.
type columnFitter interface {
	fit(d *groupDesign, y []float64) (*FitResult, error)
}

// fitterFor maps a family tag to its fitter implementation.
func fitterFor(family Family, trials int) (columnFitter, error) {
	switch family {
	case FamilyGaussian:
		return gaussianFitter{}, nil
	case FamilyPoisson:
		return poissonFitter{}, nil
	case FamilyNegativeBinomial:
		return negbinFitter{}, nil
	case FamilyBinomial:
		return binomialFitter{trials: trials}, nil
	case FamilyOrdinal:
		return ordinalFitter{}, nil
	default:
		return nil, fmt.Errorf("optimus: invalid Family %q", family)
	}
}

// fitColumn wraps one fit into a ColumnFit, attaching the column index to
// any failure.
func fitColumn(f columnFitter, d *groupDesign, j int, y []float64) ColumnFit {
	fit, err := f.fit(d, y)
	if err != nil {
		return ColumnFit{Column: j, Err: fmt.Errorf("column %d: %w", j, err)}
	}
	return ColumnFit{Column: j, Fit: fit}
}

// splitResult unpacks an IRLS solution into the exported coefficient layout.
func splitResult(d *groupDesign, r *glmResult, seScale float64) (intercept, interceptSE float64, coefs, ses []float64) {
	intercept = r.beta[0]
	interceptSE = r.seBase[0] * seScale
	coefs = make([]float64, d.k-1)
	ses = make([]float64, d.k-1)
	for a := 1; a < d.k; a++ {
		coefs[a-1] = r.beta[a]
		ses[a-1] = r.seBase[a] * seScale
	}
	return intercept, interceptSE, coefs, ses
}
