package optimus

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const ordinalProbFloor = 1e-12

// ordinalFitter fits a proportional-odds cumulative-logit model. The
// response is coerced to ordered categories by sorting its unique values
// ascending. There is no intercept; the model estimates k-1 group effects
// and J-1 cutpoints for J observed categories, maximized numerically.
type ordinalFitter struct{}

func (ordinalFitter) fit(d *groupDesign, y []float64) (*FitResult, error) {
	cats, nCats := ordinalCategories(y)
	if nCats < 2 {
		return nil, fmt.Errorf("optimus: ordinal response needs at least 2 distinct values, got %d", nCats)
	}

	nBeta := d.k - 1
	nZeta := nCats - 1
	dim := nBeta + nZeta

	// Optimize over an unconstrained parametrization: the first cutpoint
	// plus log-differences, which keeps the cutpoints ordered.
	x0 := make([]float64, dim)
	zeta0 := startCutpoints(cats, nCats)
	x0[nBeta] = zeta0[0]
	for j := 1; j < nZeta; j++ {
		x0[nBeta+j] = math.Log(zeta0[j] - zeta0[j-1])
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			return ordinalNegLogLik(d, cats, p[:nBeta], expandCutpoints(p[nBeta:]))
		},
	}
	settings := &optimize.Settings{MajorIterations: 2000}
	res, err := optimize.Minimize(problem, x0, settings, nil)
	if res == nil || math.IsNaN(res.F) {
		return nil, fmt.Errorf("optimus: ordinal likelihood maximization failed")
	}

	beta := make([]float64, nBeta)
	copy(beta, res.X[:nBeta])
	zeta := expandCutpoints(res.X[nBeta:])
	nll := res.F

	ses := ordinalStandardErrors(d, cats, beta, zeta)

	params := nBeta + nZeta
	return &FitResult{
		Levels:         d.levels[1:],
		Intercept:      math.NaN(),
		InterceptSE:    math.NaN(),
		Coefficients:   beta,
		StandardErrors: ses,
		LogLik:         -nll,
		Params:         params,
		AIC:            2*nll + 2*float64(params),
		Converged:      err == nil,
		Cutpoints:      zeta,
	}, nil
}

// ordinalCategories maps the response onto 0-based ordered category indices,
// ordering categories by ascending numeric value.
func ordinalCategories(y []float64) ([]int, int) {
	uniq := make([]float64, 0, 8)
	seen := make(map[float64]struct{}, 8)
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
	}
	sort.Float64s(uniq)
	rank := make(map[float64]int, len(uniq))
	for j, v := range uniq {
		rank[v] = j
	}
	cats := make([]int, len(y))
	for i, v := range y {
		cats[i] = rank[v]
	}
	return cats, len(uniq)
}

// startCutpoints derives initial cutpoints from the empirical cumulative
// category proportions on the logit scale.
func startCutpoints(cats []int, nCats int) []float64 {
	counts := make([]int, nCats)
	for _, c := range cats {
		counts[c]++
	}
	n := float64(len(cats))
	zeta := make([]float64, nCats-1)
	cum := 0.0
	for j := 0; j < nCats-1; j++ {
		cum += float64(counts[j])
		q := math.Min(math.Max(cum/n, 1e-3), 1-1e-3)
		zeta[j] = math.Log(q / (1 - q))
	}
	// Cumulative logits are non-decreasing; enforce strict ordering for the
	// log-difference parametrization.
	for j := 1; j < len(zeta); j++ {
		if zeta[j] <= zeta[j-1] {
			zeta[j] = zeta[j-1] + 1e-3
		}
	}
	return zeta
}

// expandCutpoints converts (zeta1, log-diffs...) back to ordered cutpoints.
func expandCutpoints(p []float64) []float64 {
	zeta := make([]float64, len(p))
	zeta[0] = p[0]
	for j := 1; j < len(p); j++ {
		zeta[j] = zeta[j-1] + math.Exp(p[j])
	}
	return zeta
}

// ordinalNegLogLik is the negative cumulative-logit log-likelihood for group
// effects beta (non-reference levels) and ordered cutpoints zeta.
func ordinalNegLogLik(d *groupDesign, cats []int, beta, zeta []float64) float64 {
	nll := 0.0
	for i, c := range cats {
		eta := 0.0
		if j := d.index[i]; j > 0 {
			eta = beta[j-1]
		}
		var lo, hi float64
		if c == 0 {
			lo = 0
		} else {
			lo = logistic(zeta[c-1] - eta)
		}
		if c == len(zeta) {
			hi = 1
		} else {
			hi = logistic(zeta[c] - eta)
		}
		p := hi - lo
		if p < ordinalProbFloor {
			p = ordinalProbFloor
		}
		nll -= math.Log(p)
	}
	return nll
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ordinalStandardErrors computes group-effect standard errors from a
// central-difference Hessian of the negative log-likelihood in the natural
// (beta, zeta) parametrization. An indefinite or singular Hessian yields NaN
// errors rather than a failed fit.
func ordinalStandardErrors(d *groupDesign, cats []int, beta, zeta []float64) []float64 {
	nBeta := len(beta)
	dim := nBeta + len(zeta)
	betaSE := nanSlice(nBeta)

	psi := make([]float64, dim)
	copy(psi, beta)
	copy(psi[nBeta:], zeta)

	f := func(p []float64) float64 {
		return ordinalNegLogLik(d, cats, p[:nBeta], p[nBeta:])
	}

	const h = 1e-5
	hess := mat.NewDense(dim, dim, nil)
	for a := 0; a < dim; a++ {
		for b := a; b < dim; b++ {
			v := centralSecond(f, psi, a, b, h)
			hess.Set(a, b, v)
			hess.Set(b, a, v)
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(hess); err != nil {
		return betaSE
	}
	for a := 0; a < nBeta; a++ {
		betaSE[a] = math.Sqrt(inv.At(a, a))
	}
	return betaSE
}

// centralSecond estimates one second partial derivative of f at p.
func centralSecond(f func([]float64) float64, p []float64, a, b int, h float64) float64 {
	q := make([]float64, len(p))
	eval := func(da, db float64) float64 {
		copy(q, p)
		q[a] += da
		q[b] += db
		return f(q)
	}
	if a == b {
		return (eval(h, 0) - 2*f(p) + eval(-h, 0)) / (h * h)
	}
	return (eval(h, h) - eval(h, -h) - eval(-h, h) + eval(-h, -h)) / (4 * h * h)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
