package optimus

import (
	"math"
	"testing"
)

func TestNegbinSingleGroupMean(t *testing.T) {
	// For a log-link NB model with one group, the fitted mean is the
	// sample mean regardless of theta.
	d := newGroupDesign(nullClustering(8))
	y := []float64{0, 1, 2, 5, 9, 0, 3, 12}

	fit, err := negbinFitter{}.fit(d, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approxEqual(t, "intercept", fit.Intercept, math.Log(4), 1e-4)
	if fit.Theta <= 0 {
		t.Errorf("theta: got %g, want > 0", fit.Theta)
	}
	if fit.Params != 2 {
		t.Errorf("Params: got %d, want 2 (intercept + theta)", fit.Params)
	}
	if math.IsNaN(fit.AIC) || math.IsInf(fit.AIC, 0) {
		t.Errorf("AIC not finite: %g", fit.AIC)
	}
}

func TestNegbinOverdispersedBeatsPoisson(t *testing.T) {
	// Strongly overdispersed counts in both groups: the NB extra
	// dispersion parameter should pay for itself in AIC.
	d := newGroupDesign([]int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1})
	y := []float64{0, 0, 1, 7, 15, 1, 2, 30, 0, 5, 41, 3}

	nb, err := negbinFitter{}.fit(d, y)
	if err != nil {
		t.Fatalf("unexpected NB error: %v", err)
	}
	pois, err := poissonFitter{}.fit(d, y)
	if err != nil {
		t.Fatalf("unexpected Poisson error: %v", err)
	}

	if nb.AIC >= pois.AIC {
		t.Errorf("NB AIC %g should beat Poisson AIC %g on overdispersed data", nb.AIC, pois.AIC)
	}
	if nb.Params != pois.Params+1 {
		t.Errorf("NB should estimate one extra parameter: %d vs %d", nb.Params, pois.Params)
	}
}

func TestNegbinUnderdispersedStaysFinite(t *testing.T) {
	// Equidispersed data pushes theta toward the Poisson limit; the fit
	// must remain finite and close to the Poisson coefficients.
	d := newGroupDesign([]int{0, 0, 0, 1, 1, 1})
	y := []float64{3, 3, 3, 9, 9, 9}

	fit, err := negbinFitter{}.fit(d, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approxEqual(t, "intercept", fit.Intercept, math.Log(3), 1e-3)
	approxEqual(t, "coefficient", fit.Coefficients[0], math.Log(3), 1e-3)
	if fit.Theta > negbinThetaHi {
		t.Errorf("theta exceeded clamp: %g", fit.Theta)
	}
}

func TestNegbinRejectsNegativeResponse(t *testing.T) {
	d := newGroupDesign([]int{0, 1})
	if _, err := (negbinFitter{}).fit(d, []float64{-1, 2}); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestMomentTheta(t *testing.T) {
	// mean 4, sample variance 5.6 -> theta = 16/1.6 = 10.
	got := momentTheta([]float64{1, 3, 5, 7, 2, 6})
	approxEqual(t, "moment theta", got, 10, 1e-9)

	// Underdispersed data falls back to the near-Poisson start.
	if th := momentTheta([]float64{4, 4, 4, 4}); th != 100 {
		t.Errorf("underdispersed start: got %g, want 100", th)
	}
}
