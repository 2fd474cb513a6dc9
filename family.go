package optimus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// gaussianFitter fits an ordinary linear model. The AIC uses the
// maximum-likelihood residual variance (RSS/n) and counts the variance as an
// estimated parameter; standard errors use the unbiased RSS/(n-k).
type gaussianFitter struct{}

func (gaussianFitter) fit(d *groupDesign, y []float64) (*FitResult, error) {
	x := d.matrix()
	r, err := irls(x, y, nil, identityFamily())
	if err != nil {
		return nil, err
	}

	rss := 0.0
	for i, m := range r.fitted {
		e := y[i] - m
		rss += e * e
	}
	n := float64(d.n)
	sigma2 := rss / n
	if sigma2 < muEps {
		// A perfectly fitted (zero-variance) response would send the
		// log-likelihood to +Inf; floor the variance for a finite score.
		sigma2 = muEps
	}
	ll := -0.5 * n * (math.Log(2*math.Pi*sigma2) + 1)
	params := d.k + 1

	seScale := math.NaN()
	if d.n > d.k {
		seScale = math.Sqrt(rss / float64(d.n-d.k))
	}
	intercept, interceptSE, coefs, ses := splitResult(d, r, seScale)

	return &FitResult{
		Levels:         d.levels[1:],
		Intercept:      intercept,
		InterceptSE:    interceptSE,
		Coefficients:   coefs,
		StandardErrors: ses,
		LogLik:         ll,
		Params:         params,
		AIC:            -2*ll + 2*float64(params),
		Converged:      r.converged,
		Sigma2:         sigma2,
	}, nil
}

// poissonFitter fits a log-link count model.
type poissonFitter struct{}

func (poissonFitter) fit(d *groupDesign, y []float64) (*FitResult, error) {
	for i, v := range y {
		if v < 0 {
			return nil, fmt.Errorf("optimus: poisson response must be non-negative, got %g at observation %d", v, i)
		}
	}

	x := d.matrix()
	r, err := irls(x, y, nil, logLinkFamily(func(mu float64) float64 { return mu }))
	if err != nil {
		return nil, err
	}

	ll := poissonLogLik(y, r.fitted)
	if math.IsNaN(ll) {
		return nil, fmt.Errorf("optimus: poisson log-likelihood is undefined")
	}
	intercept, interceptSE, coefs, ses := splitResult(d, r, 1)

	return &FitResult{
		Levels:         d.levels[1:],
		Intercept:      intercept,
		InterceptSE:    interceptSE,
		Coefficients:   coefs,
		StandardErrors: ses,
		LogLik:         ll,
		Params:         d.k,
		AIC:            -2*ll + 2*float64(d.k),
		Converged:      r.converged,
	}, nil
}

// poissonLogLik sums y*log(mu) - mu - log(y!) over observations.
func poissonLogLik(y, mu []float64) float64 {
	terms := make([]float64, len(y))
	for i := range y {
		lg, _ := math.Lgamma(y[i] + 1)
		terms[i] = y[i]*math.Log(mu[i]) - mu[i] - lg
	}
	return floats.Sum(terms)
}

// binomialFitter fits a binomial model on success counts out of a fixed
// number of trials per observation. With one trial (presence/absence) it
// uses a complementary log-log link; with more it uses a logit link on the
// success proportion, weighting each observation by its trial count.
type binomialFitter struct {
	trials int
}

func (f binomialFitter) fit(d *groupDesign, y []float64) (*FitResult, error) {
	kTrials := float64(f.trials)
	props := make([]float64, len(y))
	weights := make([]float64, len(y))
	for i, v := range y {
		if v < 0 || v > kTrials {
			return nil, fmt.Errorf("optimus: binomial response must be in [0, %d], got %g at observation %d", f.trials, v, i)
		}
		props[i] = v / kTrials
		weights[i] = kTrials
	}

	fam := cloglogFamily()
	if f.trials > 1 {
		fam = logitFamily()
	}

	x := d.matrix()
	r, err := irls(x, props, weights, fam)
	if err != nil {
		return nil, err
	}

	ll := binomialLogLik(y, r.fitted, kTrials)
	if math.IsNaN(ll) {
		return nil, fmt.Errorf("optimus: binomial log-likelihood is undefined")
	}
	intercept, interceptSE, coefs, ses := splitResult(d, r, 1)

	return &FitResult{
		Levels:         d.levels[1:],
		Intercept:      intercept,
		InterceptSE:    interceptSE,
		Coefficients:   coefs,
		StandardErrors: ses,
		LogLik:         ll,
		Params:         d.k,
		AIC:            -2*ll + 2*float64(d.k),
		Converged:      r.converged,
	}, nil
}

// binomialLogLik sums log C(K, s) + s*log(mu) + (K-s)*log(1-mu) over
// observations, with s the success count and mu the fitted probability.
func binomialLogLik(y, mu []float64, kTrials float64) float64 {
	terms := make([]float64, len(y))
	for i := range y {
		s := y[i]
		m := clampUnit(mu[i])
		lgK, _ := math.Lgamma(kTrials + 1)
		lgS, _ := math.Lgamma(s + 1)
		lgR, _ := math.Lgamma(kTrials - s + 1)
		terms[i] = lgK - lgS - lgR + s*math.Log(m) + (kTrials-s)*math.Log(1-m)
	}
	return floats.Sum(terms)
}
