package optimus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	irlsMaxIter = 40
	irlsTol     = 1e-9

	// muEps keeps fitted means strictly inside their valid range so that
	// degenerate clusters (all-zero counts, perfectly separated binary
	// outcomes) yield a finite best-effort fit instead of a failure.
	muEps = 1e-10
)

// glmFamily describes the link and variance structure one IRLS fit needs.
type glmFamily struct {
	link     func(mu float64) float64
	linkInv  func(eta float64) float64
	dMuDEta  func(eta float64) float64
	variance func(mu float64) float64
	clampMu  func(mu float64) float64
	muStart  func(y float64) float64
}

// glmResult holds the raw output of one IRLS fit. seBase is the unscaled
// standard error (unit dispersion); Gaussian fits scale it by the residual
// standard deviation.
type glmResult struct {
	beta      []float64
	seBase    []float64
	fitted    []float64
	converged bool
}

// irls fits a generalized linear model by iteratively reweighted least
// squares. x is the n×k design, y the response and priorW optional prior
// weights (nil means unit weights). Reaching the iteration cap returns the
// current estimates with converged=false; only a singular or non-finite
// system is an error.
func irls(x *mat.Dense, y, priorW []float64, fam glmFamily) (*glmResult, error) {
	n, k := x.Dims()

	eta := make([]float64, n)
	mu := make([]float64, n)
	for i := 0; i < n; i++ {
		m := fam.clampMu(fam.muStart(y[i]))
		mu[i] = m
		eta[i] = fam.link(m)
	}

	beta := make([]float64, k)
	betaOld := make([]float64, k)
	full := make([]float64, k*k)
	rhs := make([]float64, k)
	betaVec := mat.NewVecDense(k, nil)

	var ch mat.Cholesky
	converged := false

	for iter := 0; iter < irlsMaxIter; iter++ {
		for i := range full {
			full[i] = 0
		}
		for i := range rhs {
			rhs[i] = 0
		}

		for i := 0; i < n; i++ {
			d := fam.dMuDEta(eta[i])
			if d < muEps {
				d = muEps
			}
			v := fam.variance(mu[i])
			if v < muEps {
				v = muEps
			}
			w := d * d / v
			if priorW != nil {
				w *= priorW[i]
			}
			z := eta[i] + (y[i]-mu[i])/d

			row := x.RawRowView(i)
			for a := 0; a < k; a++ {
				ra := row[a]
				if ra == 0 {
					continue
				}
				wa := w * ra
				rhs[a] += wa * z
				for b := a; b < k; b++ {
					if rb := row[b]; rb != 0 {
						full[a*k+b] += wa * rb
					}
				}
			}
		}
		// Mirror the accumulated upper triangle.
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				full[b*k+a] = full[a*k+b]
			}
		}

		xtwx := mat.NewSymDense(k, full)
		if ok := ch.Factorize(xtwx); !ok {
			return nil, fmt.Errorf("optimus: singular weighted design (empty or degenerate cluster)")
		}
		if err := ch.SolveVecTo(betaVec, mat.NewVecDense(k, rhs)); err != nil {
			return nil, fmt.Errorf("optimus: IRLS solve failed: %w", err)
		}

		copy(betaOld, beta)
		for a := 0; a < k; a++ {
			beta[a] = betaVec.AtVec(a)
			if math.IsNaN(beta[a]) || math.IsInf(beta[a], 0) {
				return nil, fmt.Errorf("optimus: IRLS produced a non-finite coefficient")
			}
		}

		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			e := 0.0
			for a := 0; a < k; a++ {
				e += row[a] * beta[a]
			}
			eta[i] = e
			mu[i] = fam.clampMu(fam.linkInv(e))
		}

		if iter > 0 {
			scale := 1 + floats.Norm(beta, math.Inf(1))
			if floats.Distance(beta, betaOld, math.Inf(1)) < irlsTol*scale {
				converged = true
				break
			}
		}
	}

	var cov mat.SymDense
	if err := ch.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("optimus: coefficient covariance is not invertible: %w", err)
	}
	seBase := make([]float64, k)
	for a := 0; a < k; a++ {
		seBase[a] = math.Sqrt(cov.At(a, a))
	}

	return &glmResult{
		beta:      beta,
		seBase:    seBase,
		fitted:    mu,
		converged: converged,
	}, nil
}

// identityFamily is the Gaussian link/variance structure; IRLS reduces to a
// single ordinary least squares solve.
func identityFamily() glmFamily {
	return glmFamily{
		link:     func(mu float64) float64 { return mu },
		linkInv:  func(eta float64) float64 { return eta },
		dMuDEta:  func(eta float64) float64 { return 1 },
		variance: func(mu float64) float64 { return 1 },
		clampMu:  func(mu float64) float64 { return mu },
		muStart:  func(y float64) float64 { return y },
	}
}

// logLinkFamily returns a log-link family with the given variance function,
// shared by the Poisson and negative-binomial fits.
func logLinkFamily(variance func(mu float64) float64) glmFamily {
	return glmFamily{
		link:     math.Log,
		linkInv:  math.Exp,
		dMuDEta:  math.Exp, // dmu/deta = mu for the log link
		variance: variance,
		clampMu: func(mu float64) float64 {
			return math.Max(mu, muEps)
		},
		muStart: func(y float64) float64 { return y + 0.1 },
	}
}

// logitFamily is the binomial logit link on success proportions.
func logitFamily() glmFamily {
	return glmFamily{
		link: func(mu float64) float64 {
			return math.Log(mu / (1 - mu))
		},
		linkInv: func(eta float64) float64 {
			return 1 / (1 + math.Exp(-eta))
		},
		dMuDEta: func(eta float64) float64 {
			p := 1 / (1 + math.Exp(-eta))
			return p * (1 - p)
		},
		variance: func(mu float64) float64 { return mu * (1 - mu) },
		clampMu:  clampUnit,
		muStart:  binomialMuStart,
	}
}

// cloglogFamily is the binomial complementary log-log link, used for
// presence/absence responses.
func cloglogFamily() glmFamily {
	return glmFamily{
		link: func(mu float64) float64 {
			return math.Log(-math.Log(1 - mu))
		},
		linkInv: func(eta float64) float64 {
			return clampUnit(1 - math.Exp(-math.Exp(eta)))
		},
		dMuDEta: func(eta float64) float64 {
			return math.Exp(eta - math.Exp(eta))
		},
		variance: func(mu float64) float64 { return mu * (1 - mu) },
		clampMu:  clampUnit,
		muStart:  binomialMuStart,
	}
}

// clampUnit keeps a probability strictly inside (0, 1).
func clampUnit(mu float64) float64 {
	if mu < muEps {
		return muEps
	}
	if mu > 1-muEps {
		return 1 - muEps
	}
	return mu
}

// binomialMuStart shrinks an observed proportion toward 1/2, the glm
// convention for binomial starting values.
func binomialMuStart(y float64) float64 {
	return (y + 0.5) / 2
}
