package optimus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	negbinMaxAlt  = 25
	negbinTol     = 1e-8
	negbinThetaLo = 1e-4
	negbinThetaHi = 1e7
)

// negbinFitter fits a log-link negative-binomial count model with an
// estimated dispersion theta. Coefficients are estimated by IRLS with the
// NB variance mu + mu²/theta, alternated with a profile maximization of the
// likelihood over log(theta) until both stabilize.
type negbinFitter struct{}

func (negbinFitter) fit(d *groupDesign, y []float64) (*FitResult, error) {
	for i, v := range y {
		if v < 0 {
			return nil, fmt.Errorf("optimus: negative-binomial response must be non-negative, got %g at observation %d", v, i)
		}
	}

	theta := momentTheta(y)
	x := d.matrix()

	var r *glmResult
	var err error
	converged := false
	for alt := 0; alt < negbinMaxAlt; alt++ {
		th := theta
		r, err = irls(x, y, nil, logLinkFamily(func(mu float64) float64 {
			return mu + mu*mu/th
		}))
		if err != nil {
			return nil, err
		}

		next, profOK := profileTheta(y, r.fitted, theta)
		done := math.Abs(math.Log(next)-math.Log(theta)) < negbinTol
		theta = next
		if done {
			converged = r.converged && profOK
			break
		}
	}

	ll := negbinLogLik(y, r.fitted, theta)
	if math.IsNaN(ll) {
		return nil, fmt.Errorf("optimus: negative-binomial log-likelihood is undefined")
	}
	params := d.k + 1 // theta is an estimated parameter
	intercept, interceptSE, coefs, ses := splitResult(d, r, 1)

	return &FitResult{
		Levels:         d.levels[1:],
		Intercept:      intercept,
		InterceptSE:    interceptSE,
		Coefficients:   coefs,
		StandardErrors: ses,
		LogLik:         ll,
		Params:         params,
		AIC:            -2*ll + 2*float64(params),
		Converged:      converged,
		Theta:          theta,
	}, nil
}

// momentTheta is the method-of-moments starting value m²/(v-m). An
// underdispersed response (v <= m) starts near the Poisson limit.
func momentTheta(y []float64) float64 {
	m := stat.Mean(y, nil)
	v := stat.Variance(y, nil)
	if v <= m || m <= 0 {
		return 100
	}
	return clampTheta(m * m / (v - m))
}

func clampTheta(theta float64) float64 {
	return math.Min(math.Max(theta, negbinThetaLo), negbinThetaHi)
}

// profileTheta maximizes the NB log-likelihood over log(theta) with the
// fitted means held fixed. The gradient uses the digamma-based score. On
// optimizer failure the incoming theta is kept (best effort).
func profileTheta(y, mu []float64, theta float64) (float64, bool) {
	problem := optimize.Problem{
		Func: func(t []float64) float64 {
			return -negbinLogLik(y, mu, clampTheta(math.Exp(t[0])))
		},
		Grad: func(grad, t []float64) {
			th := clampTheta(math.Exp(t[0]))
			score := 0.0
			for i := range y {
				score += mathext.Digamma(th+y[i]) - mathext.Digamma(th) +
					math.Log(th) + 1 - math.Log(th+mu[i]) - (th+y[i])/(th+mu[i])
			}
			grad[0] = -th * score
		},
	}

	settings := &optimize.Settings{MajorIterations: 200}
	res, err := optimize.Minimize(problem, []float64{math.Log(theta)}, settings, nil)
	if res == nil || math.IsNaN(res.X[0]) || math.IsInf(res.X[0], 0) {
		return theta, false
	}
	return clampTheta(math.Exp(res.X[0])), err == nil
}

// negbinLogLik sums the NB log-likelihood with dispersion theta.
func negbinLogLik(y, mu []float64, theta float64) float64 {
	terms := make([]float64, len(y))
	for i := range y {
		m := math.Max(mu[i], muEps)
		lgNum, _ := math.Lgamma(theta + y[i])
		lgTheta, _ := math.Lgamma(theta)
		lgY, _ := math.Lgamma(y[i] + 1)
		t := lgNum - lgTheta - lgY + theta*math.Log(theta/(theta+m))
		if y[i] > 0 {
			t += y[i] * math.Log(m/(theta+m))
		}
		terms[i] = t
	}
	return floats.Sum(terms)
}
